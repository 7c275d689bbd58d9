package game

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/ultma/ultma-server-go/internal/game/rules"
	"go.uber.org/zap"
)

// Store persists the single live match. Load returns (nil, nil) when no match
// exists, and the returned match is owned by the caller.
type Store interface {
	Load(ctx context.Context) (*Match, error)
	Save(ctx context.Context, m *Match) error
	Reset(ctx context.Context) error
}

// Options toggles optional rules.
type Options struct {
	// DiscoveryPotionReward grants a random potion whenever a cast teaches a
	// new spell.
	DiscoveryPotionReward bool
	// AutoStartArena opens the arena as soon as a join brings the match to
	// the minimum number of players.
	AutoStartArena bool
	// RequireGlyphsForArena only allows entering the arena from exploration
	// once every glyph type has been used.
	RequireGlyphsForArena bool
	// JournalSize caps how many committed events History can return.
	JournalSize int
}

// DefaultOptions mirrors the classic rules.
func DefaultOptions() Options {
	return Options{
		DiscoveryPotionReward: true,
		AutoStartArena:        true,
	}
}

// MatchService runs every game operation as one load, validate, mutate and
// save transaction against the store.
type MatchService struct {
	mu      sync.Mutex
	store   Store
	rng     *rand.Rand
	logger  *zap.Logger
	bus     *rules.EventBus
	journal *Journal
	opts    Options

	stateListeners map[int]StateListener
	nextListener   int
}

// StateListener observes the match after every committed change, or nil
// after a reset. It runs while the service lock is held, so it must not call
// back into the service and must not retain m.
type StateListener func(m *Match)

// NewMatchService creates a service. rng drives dictionaries, seating, glyph
// hands and rewards; pass a seeded source for reproducible matches.
func NewMatchService(store Store, rng *rand.Rand, logger *zap.Logger, opts Options) *MatchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &MatchService{
		store:   store,
		rng:     rng,
		logger:  logger,
		bus:     rules.NewEventBus(),
		journal: NewJournal(opts.JournalSize),
		opts:    opts,

		stateListeners: make(map[int]StateListener),
	}
	s.bus.Subscribe(s.journal.Record)
	return s
}

// Events exposes the bus committed rules events are published on.
func (s *MatchService) Events() *rules.EventBus {
	return s.bus
}

// History returns committed events newer than after, plus the cursor for the
// next call.
func (s *MatchService) History(after int64) ([]JournalEntry, int64) {
	return s.journal.Since(after)
}

// OnStateChange registers l and returns a function that removes it.
func (s *MatchService) OnStateChange(l StateListener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	handle := s.nextListener
	s.nextListener++
	s.stateListeners[handle] = l
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.stateListeners, handle)
	}
}

// notifyState runs the state listeners. Callers hold s.mu.
func (s *MatchService) notifyState(m *Match) {
	for _, l := range s.stateListeners {
		l(m)
	}
}

// commit saves m, publishes the events it recorded and then reports the new
// state. Callers hold s.mu.
func (s *MatchService) commit(ctx context.Context, op, playerID string, m *Match) error {
	if err := s.store.Save(ctx, m); err != nil {
		return fmt.Errorf("failed to save match %s: %w", m.ID, err)
	}
	s.logger.Info("match updated",
		zap.String("op", op),
		zap.String("match_id", m.ID),
		zap.String("player_id", playerID),
		zap.String("phase", m.Phase.String()),
	)
	s.bus.PublishBatch(m.DrainEvents())
	s.notifyState(m)
	return nil
}

func (s *MatchService) load(ctx context.Context) (*Match, error) {
	m, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load match: %w", err)
	}
	if m == nil {
		return nil, newError(KindNotFound, "no match in progress")
	}
	return m, nil
}

// mutate loads the match, applies fn and commits the result. A rejected
// operation leaves the stored match untouched.
func (s *MatchService) mutate(ctx context.Context, op, playerID string, fn func(m *Match) error) (*Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if err := fn(m); err != nil {
		s.logger.Debug("operation rejected",
			zap.String("op", op),
			zap.String("match_id", m.ID),
			zap.String("player_id", playerID),
			zap.Error(err),
		)
		return nil, err
	}
	if err := s.commit(ctx, op, playerID, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *MatchService) createLocked(ctx context.Context) (*Match, error) {
	m := NewMatch(s.rng)
	m.emitFor(rules.EventMatchCreated, "")
	if err := s.commit(ctx, "create", "", m); err != nil {
		return nil, err
	}
	return m, nil
}

// CreateMatch starts a new match, replacing any match in progress.
func (s *MatchService) CreateMatch(ctx context.Context) (*Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createLocked(ctx)
}

// Join adds a player, creating a match first if none exists.
func (s *MatchService) Join(ctx context.Context, name string) (*Match, *Player, error) {
	p := NewPlayer(name)
	if p.Name == "" {
		return nil, nil, newError(KindInvalidToken, "player name must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.store.Load(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load match: %w", err)
	}
	if m == nil {
		if m, err = s.createLocked(ctx); err != nil {
			return nil, nil, err
		}
	}
	m.Players = append(m.Players, p)
	m.emitFor(rules.EventPlayerJoined, p.ID)

	if s.opts.AutoStartArena && !m.InArena() && len(m.ActivePlayers()) >= rules.MinArenaPlayers &&
		(!s.opts.RequireGlyphsForArena || m.ArenaEligible()) {
		if err := m.StartArena(s.rng); err != nil {
			return nil, nil, err
		}
	}

	if err := s.commit(ctx, "join", p.ID, m); err != nil {
		return nil, nil, err
	}
	return m, p, nil
}

// State returns the current match, or nil when there is none.
func (s *MatchService) State(ctx context.Context) (*Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load match: %w", err)
	}
	return m, nil
}

// Cast combines two power words for playerID.
func (s *MatchService) Cast(ctx context.Context, playerID, word1, word2 string) (CastResult, *Match, error) {
	var rewardRng *rand.Rand
	if s.opts.DiscoveryPotionReward {
		rewardRng = s.rng
	}
	var result CastResult
	m, err := s.mutate(ctx, "cast", playerID, func(m *Match) error {
		var err error
		result, err = m.Cast(playerID, word1, word2, rewardRng)
		return err
	})
	if err != nil && result.Name == "" {
		result.SpellOutcome = rules.MagicalFailure
		result.Description = messageOf(err)
	}
	return result, m, err
}

// Meditate restores some of playerID's mana.
func (s *MatchService) Meditate(ctx context.Context, playerID string) (*Match, error) {
	return s.mutate(ctx, "meditate", playerID, func(m *Match) error {
		return m.Meditate(playerID)
	})
}

// Attack resolves a duel between two players.
func (s *MatchService) Attack(ctx context.Context, attackerID, targetID, spellName string) (DuelOutcome, *Match, error) {
	out := DuelOutcome{AttackerID: attackerID, TargetID: targetID, SpellName: spellName}
	m, err := s.mutate(ctx, "attack", attackerID, func(m *Match) error {
		var err error
		out, err = m.Attack(attackerID, targetID, spellName)
		return err
	})
	if err != nil && out.Message == "" {
		out.Message = messageOf(err)
	}
	return out, m, err
}

// ActivateDefense raises a defensive spell for playerID.
func (s *MatchService) ActivateDefense(ctx context.Context, playerID, spellName string) (rules.SpellOutcome, *Match, error) {
	out := rules.SpellOutcome{Name: spellName}
	m, err := s.mutate(ctx, "defense", playerID, func(m *Match) error {
		var err error
		out, err = m.ActivateDefense(playerID, spellName)
		return err
	})
	if err != nil && out.Description == "" {
		out.Description = messageOf(err)
	}
	return out, m, err
}

// StartArena opens the arena or starts a new arena round.
func (s *MatchService) StartArena(ctx context.Context) (*Match, error) {
	return s.mutate(ctx, "arena.start", "", func(m *Match) error {
		if s.opts.RequireGlyphsForArena && !m.InArena() && !m.ArenaEligible() {
			return newError(KindWrongPhase, "all %d glyph types must be used before the arena opens", len(rules.AllGlyphs))
		}
		return m.StartArena(s.rng)
	})
}

// EndArenaTurn passes the rest of playerID's turn.
func (s *MatchService) EndArenaTurn(ctx context.Context, playerID string) (*Match, error) {
	return s.mutate(ctx, "arena.end_turn", playerID, func(m *Match) error {
		return m.EndArenaTurn(playerID)
	})
}

// EndArenaPhase returns the match to exploration.
func (s *MatchService) EndArenaPhase(ctx context.Context) (*Match, error) {
	return s.mutate(ctx, "arena.end", "", func(m *Match) error {
		return m.EndArenaPhase(s.rng)
	})
}

// UsePotion drinks one of playerID's potions.
func (s *MatchService) UsePotion(ctx context.Context, playerID, color string) (PotionUse, *Match, error) {
	var use PotionUse
	m, err := s.mutate(ctx, "potion.use", playerID, func(m *Match) error {
		var err error
		use, err = m.UsePotion(playerID, color)
		return err
	})
	return use, m, err
}

// CreatePotion brews a potion for playerID.
func (s *MatchService) CreatePotion(ctx context.Context, playerID, word1, word2 string) (rules.PotionOutcome, *Match, error) {
	var out rules.PotionOutcome
	m, err := s.mutate(ctx, "potion.create", playerID, func(m *Match) error {
		var err error
		out, err = m.CreatePotion(playerID, word1, word2)
		return err
	})
	if err != nil && out.Description == "" {
		out.Description = messageOf(err)
	}
	return out, m, err
}

// GivePotion grants playerID a potion without any checks beyond the color.
func (s *MatchService) GivePotion(ctx context.Context, playerID, color string) (*Match, error) {
	return s.mutate(ctx, "potion.give", playerID, func(m *Match) error {
		return m.GivePotion(playerID, color)
	})
}

// DistributeGlyphs deals a fresh glyph hand to every active player.
func (s *MatchService) DistributeGlyphs(ctx context.Context) (*Match, error) {
	return s.mutate(ctx, "glyphs.distribute", "", func(m *Match) error {
		m.DistributeGlyphs(s.rng)
		return nil
	})
}

// UseGlyph spends one of playerID's glyphs.
func (s *MatchService) UseGlyph(ctx context.Context, playerID, glyph string) (GlyphUse, *Match, error) {
	var use GlyphUse
	m, err := s.mutate(ctx, "glyphs.use", playerID, func(m *Match) error {
		var err error
		use, err = m.UseGlyph(playerID, glyph)
		return err
	})
	return use, m, err
}

// Reset discards the current match.
func (s *MatchService) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// The snapshot is only read for its ID; an unreadable one must still be
	// cleared.
	evt := rules.NewEvent(rules.EventMatchReset, "", "")
	current, err := s.store.Load(ctx)
	if err != nil {
		s.logger.Warn("resetting unreadable match snapshot", zap.Error(err))
	} else if current != nil {
		evt.MatchID = current.ID
	}
	if err := s.store.Reset(ctx); err != nil {
		return fmt.Errorf("failed to reset match: %w", err)
	}
	s.logger.Info("match reset", zap.String("match_id", evt.MatchID))
	s.journal.Clear()
	s.bus.Publish(evt)
	s.notifyState(nil)
	return nil
}
