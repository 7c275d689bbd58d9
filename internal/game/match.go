package game

import (
	"math/rand"
	"strings"

	"github.com/google/uuid"
	"github.com/ultma/ultma-server-go/internal/game/rules"
)

// ArenaState tracks turn rotation. It is nil until the match enters the
// arena for the first time and is kept afterwards so re-entries continue
// the round count.
type ArenaState struct {
	TurnIndex int `json:"currentTurnIndex"`
	Round     int `json:"arenaRound"`
}

// Player is a participant in a match.
type Player struct {
	ID               string              `json:"id"`
	Name             string              `json:"name"`
	LifeEnergy       int                 `json:"lifeEnergy"`
	MagicShield      int                 `json:"magicShield"`
	Mana             int                 `json:"mana"`
	Eliminated       bool                `json:"eliminated"`
	KnownSpells      []string            `json:"knownSpells"`
	Potions          []rules.PotionColor `json:"potions"`
	ActiveDefenses   []string            `json:"activeDefenses"`
	Glyphs           []rules.Glyph       `json:"glyphs"`
	ArenaPosition    *int                `json:"arenaPosition,omitempty"`
	ActionsRemaining int                 `json:"actionsRemaining"`
}

// NewPlayer creates a player with the starting resources.
func NewPlayer(name string) *Player {
	return &Player{
		ID:             uuid.NewString(),
		Name:           strings.TrimSpace(name),
		LifeEnergy:     rules.StartingLife,
		MagicShield:    rules.StartingShield,
		Mana:           rules.StartingMana,
		KnownSpells:    append([]string(nil), rules.BaseSpells...),
		Potions:        make([]rules.PotionColor, 0),
		ActiveDefenses: make([]string, 0),
		Glyphs:         make([]rules.Glyph, 0),
	}
}

// Knows reports whether the player has learned spell.
func (p *Player) Knows(spell string) bool {
	return containsString(p.KnownSpells, spell)
}

// HasDefense reports whether spell is among the player's active defenses.
func (p *Player) HasDefense(spell string) bool {
	return containsString(p.ActiveDefenses, spell)
}

// learn adds spell to the known set and reports whether it was new.
func (p *Player) learn(spell string) bool {
	if p.Knows(spell) {
		return false
	}
	p.KnownSpells = append(p.KnownSpells, spell)
	return true
}

// takeDamage applies damage to the shield if any remains, otherwise to life.
// Damage does not spill from shield into life.
func (p *Player) takeDamage(amount int) {
	if amount <= 0 {
		return
	}
	if p.MagicShield > 0 {
		p.MagicShield = max(0, p.MagicShield-amount)
		return
	}
	p.LifeEnergy = max(0, p.LifeEnergy-amount)
}

// checkElimination marks the player eliminated once life reaches zero and
// reports whether that happened just now.
func (p *Player) checkElimination() bool {
	if p.Eliminated || p.LifeEnergy > 0 {
		return false
	}
	p.LifeEnergy = 0
	p.Eliminated = true
	p.ActionsRemaining = 0
	return true
}

// Match is one game session.
type Match struct {
	ID               string                 `json:"matchId"`
	Players          []*Player              `json:"players"`
	Phase            rules.Phase            `json:"phase"`
	Arena            *ArenaState            `json:"arena,omitempty"`
	WordDictionary   rules.WordDictionary   `json:"wordDictionary"`
	PotionDictionary rules.PotionDictionary `json:"potionDictionary"`
	UsedGlyphs       []rules.Glyph          `json:"usedGlyphTypes"`

	events []rules.Event
}

// NewMatch creates an empty match with freshly drawn dictionaries.
func NewMatch(rng *rand.Rand) *Match {
	return &Match{
		ID:               uuid.NewString(),
		Players:          make([]*Player, 0),
		Phase:            rules.PhaseExploration,
		WordDictionary:   rules.NewWordDictionary(rng),
		PotionDictionary: rules.NewPotionDictionary(rng),
		UsedGlyphs:       make([]rules.Glyph, 0),
	}
}

// InArena reports whether the arena phase is active.
func (m *Match) InArena() bool {
	return m.Phase == rules.PhaseArena
}

// Player returns the player with the given id.
func (m *Match) Player(id string) (*Player, bool) {
	id = strings.TrimSpace(id)
	for _, p := range m.Players {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

func (m *Match) requirePlayer(id string) (*Player, error) {
	p, ok := m.Player(id)
	if !ok {
		return nil, newError(KindNotFound, "player %s not found", id)
	}
	return p, nil
}

// requireActor finds a player who is still allowed to act.
func (m *Match) requireActor(id string) (*Player, error) {
	p, err := m.requirePlayer(id)
	if err != nil {
		return nil, err
	}
	if p.Eliminated {
		return nil, newError(KindEliminated, "player %s has been eliminated", p.Name)
	}
	return p, nil
}

// ActivePlayers returns the non-eliminated players in join order.
func (m *Match) ActivePlayers() []*Player {
	active := make([]*Player, 0, len(m.Players))
	for _, p := range m.Players {
		if !p.Eliminated {
			active = append(active, p)
		}
	}
	return active
}

func (m *Match) indexOf(id string) int {
	for i, p := range m.Players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// ArenaEligible reports whether every glyph type has been used on the board
// since the last distribution.
func (m *Match) ArenaEligible() bool {
	return len(m.UsedGlyphs) >= len(rules.AllGlyphs)
}

func (m *Match) emit(evt rules.Event) {
	m.events = append(m.events, evt)
}

func (m *Match) emitFor(eventType rules.EventType, playerID string) {
	m.emit(rules.NewEvent(eventType, m.ID, playerID))
}

// DrainEvents returns the events recorded since the last drain.
func (m *Match) DrainEvents() []rules.Event {
	events := m.events
	m.events = nil
	return events
}

// Clone returns a deep copy without pending events.
func (m *Match) Clone() *Match {
	if m == nil {
		return nil
	}
	c := &Match{
		ID:               m.ID,
		Phase:            m.Phase,
		WordDictionary:   make(rules.WordDictionary, len(m.WordDictionary)),
		PotionDictionary: make(rules.PotionDictionary, len(m.PotionDictionary)),
		UsedGlyphs:       append(make([]rules.Glyph, 0, len(m.UsedGlyphs)), m.UsedGlyphs...),
		Players:          make([]*Player, len(m.Players)),
	}
	if m.Arena != nil {
		arena := *m.Arena
		c.Arena = &arena
	}
	for k, v := range m.WordDictionary {
		c.WordDictionary[k] = v
	}
	for k, v := range m.PotionDictionary {
		c.PotionDictionary[k] = v
	}
	for i, p := range m.Players {
		cp := *p
		cp.KnownSpells = append(make([]string, 0, len(p.KnownSpells)), p.KnownSpells...)
		cp.Potions = append(make([]rules.PotionColor, 0, len(p.Potions)), p.Potions...)
		cp.ActiveDefenses = append(make([]string, 0, len(p.ActiveDefenses)), p.ActiveDefenses...)
		cp.Glyphs = append(make([]rules.Glyph, 0, len(p.Glyphs)), p.Glyphs...)
		if p.ArenaPosition != nil {
			pos := *p.ArenaPosition
			cp.ArenaPosition = &pos
		}
		c.Players[i] = &cp
	}
	return c
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
