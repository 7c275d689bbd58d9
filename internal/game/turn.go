package game

import (
	"math/rand"
	"strconv"

	"github.com/ultma/ultma-server-go/internal/game/rules"
)

// StartArena opens the arena, or starts a new arena round if it is already
// open. Active players get a random seating and a fresh action budget, and
// their defenses are cleared.
func (m *Match) StartArena(rng *rand.Rand) error {
	active := m.ActivePlayers()
	if len(active) < rules.MinArenaPlayers {
		return newError(KindNotEnoughPlayers, "arena needs at least %d active players, have %d", rules.MinArenaPlayers, len(active))
	}

	enteringFromExploration := !m.InArena()
	if m.Arena == nil {
		m.Arena = &ArenaState{Round: 1}
	} else {
		m.Arena.Round++
	}
	if enteringFromExploration {
		m.Arena.TurnIndex = m.indexOf(active[0].ID)
	}
	m.Phase = rules.PhaseArena

	seats := rng.Perm(len(active))
	for i, p := range active {
		pos := seats[i]
		p.ArenaPosition = &pos
		p.ActionsRemaining = rules.ActionsPerTurn
		p.ActiveDefenses = make([]string, 0)
	}

	evt := rules.NewEventWithAmount(rules.EventArenaStarted, m.ID, "", m.Arena.Round)
	evt.Metadata["current_player_id"] = m.Players[m.Arena.TurnIndex].ID
	m.emit(evt)
	return nil
}

// CurrentTurnPlayer resolves whose turn it is. An eliminated holder of the
// turn index is skipped in favor of the first active player and the index is
// updated to match.
func (m *Match) CurrentTurnPlayer() (*Player, error) {
	if !m.InArena() || m.Arena == nil {
		return nil, newError(KindWrongPhase, "arena is not active")
	}
	if len(m.Players) == 0 {
		return nil, newError(KindNotFound, "match has no players")
	}
	if m.Arena.TurnIndex < 0 || m.Arena.TurnIndex >= len(m.Players) {
		m.Arena.TurnIndex = 0
	}

	current := m.Players[m.Arena.TurnIndex]
	if !current.Eliminated {
		return current, nil
	}

	active := m.ActivePlayers()
	if len(active) == 0 {
		return nil, newError(KindNotFound, "no active players remain")
	}
	current = active[0]
	m.Arena.TurnIndex = m.indexOf(current.ID)
	return current, nil
}

// RequireTurn is the shared gate for every action-consuming operation. It is
// a no-op outside the arena.
func (m *Match) RequireTurn(p *Player) error {
	if !m.InArena() {
		return nil
	}
	current, err := m.CurrentTurnPlayer()
	if err != nil {
		return err
	}
	if current.ID != p.ID {
		return newError(KindNotYourTurn, "it is %s's turn", current.Name)
	}
	if p.ActionsRemaining <= 0 {
		return newError(KindNoActionsRemaining, "%s has no actions remaining this turn", p.Name)
	}
	return nil
}

// ConsumeAction spends one of the player's actions and passes the turn when
// none remain. It is a no-op outside the arena.
func (m *Match) ConsumeAction(p *Player) {
	if !m.InArena() {
		return
	}
	if p.ActionsRemaining > 0 {
		p.ActionsRemaining--
	}
	m.emit(rules.NewEventWithAmount(rules.EventActionSpent, m.ID, p.ID, p.ActionsRemaining))
	if p.ActionsRemaining == 0 || p.Eliminated {
		m.AdvanceTurn()
	}
}

// AdvanceTurn hands the turn to the next active player in join order. When
// the rotation wraps back to the first active player the round counter
// increases.
func (m *Match) AdvanceTurn() {
	if !m.InArena() || m.Arena == nil {
		return
	}
	active := m.ActivePlayers()
	if len(active) == 0 {
		return
	}
	if m.Arena.TurnIndex < 0 || m.Arena.TurnIndex >= len(m.Players) {
		m.Arena.TurnIndex = 0
	}

	currentID := ""
	if len(m.Players) > 0 {
		currentID = m.Players[m.Arena.TurnIndex].ID
	}
	pos := 0
	for i, p := range active {
		if p.ID == currentID {
			pos = i
			break
		}
	}

	nextPos := (pos + 1) % len(active)
	next := active[nextPos]
	next.ActionsRemaining = rules.ActionsPerTurn
	m.Arena.TurnIndex = m.indexOf(next.ID)

	m.emitFor(rules.EventTurnAdvanced, next.ID)
	if nextPos == 0 && pos != 0 {
		m.Arena.Round++
		evt := rules.NewEventWithAmount(rules.EventRoundStarted, m.ID, next.ID, m.Arena.Round)
		evt.Description = "round " + strconv.Itoa(m.Arena.Round)
		m.emit(evt)
	}
}

// EndArenaTurn lets the current player pass the rest of their turn.
func (m *Match) EndArenaTurn(playerID string) error {
	if !m.InArena() {
		return newError(KindWrongPhase, "arena is not active")
	}
	p, err := m.requireActor(playerID)
	if err != nil {
		return err
	}
	current, err := m.CurrentTurnPlayer()
	if err != nil {
		return err
	}
	if current.ID != p.ID {
		return newError(KindNotYourTurn, "it is %s's turn", current.Name)
	}

	p.ActionsRemaining = 0
	m.emitFor(rules.EventTurnPassed, p.ID)
	m.AdvanceTurn()
	return nil
}

// EndArenaPhase closes the arena, rewards the survivors and deals a fresh
// set of glyphs for exploration.
func (m *Match) EndArenaPhase(rng *rand.Rand) error {
	if !m.InArena() {
		return newError(KindWrongPhase, "arena is not active")
	}
	for _, p := range m.ActivePlayers() {
		p.Mana += rules.ArenaEndManaReward
		p.ActiveDefenses = make([]string, 0)
		p.ArenaPosition = nil
		p.ActionsRemaining = 0
	}
	m.Phase = rules.PhaseExploration
	if m.Arena != nil {
		m.Arena.TurnIndex = 0
	}
	m.emitFor(rules.EventArenaEnded, "")
	m.DistributeGlyphs(rng)
	return nil
}
