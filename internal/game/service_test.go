package game

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ultma/ultma-server-go/internal/game/rules"
	"go.uber.org/zap/zaptest"
)

// sliceStore keeps the match as an encoded snapshot so tests observe exactly
// what a persistent store would.
type sliceStore struct {
	mu      sync.Mutex
	data    []byte
	saves   int
	failErr error
}

func (s *sliceStore) Load(ctx context.Context) (*Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return nil, nil
	}
	return DecodeSnapshot(s.data)
}

func (s *sliceStore) Save(ctx context.Context, m *Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return s.failErr
	}
	data, err := EncodeSnapshot(m)
	if err != nil {
		return err
	}
	s.data = data
	s.saves++
	return nil
}

func (s *sliceStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = nil
	return nil
}

func newTestService(t *testing.T, opts Options) (*MatchService, *sliceStore) {
	t.Helper()
	store := &sliceStore{}
	svc := NewMatchService(store, rand.New(rand.NewSource(5)), zaptest.NewLogger(t), opts)
	return svc, store
}

func TestServiceWithoutMatch(t *testing.T) {
	svc, _ := newTestService(t, DefaultOptions())
	ctx := context.Background()

	m, err := svc.State(ctx)
	require.NoError(t, err)
	assert.Nil(t, m)

	_, err = svc.Meditate(ctx, "anyone")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = svc.StartArena(ctx)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestServiceJoinAutoStartsArena(t *testing.T) {
	svc, _ := newTestService(t, DefaultOptions())
	ctx := context.Background()

	var seen []rules.EventType
	svc.Events().Subscribe(func(e rules.Event) { seen = append(seen, e.Type) })

	m, alice, err := svc.Join(ctx, "Alice")
	require.NoError(t, err)
	assert.Equal(t, rules.PhaseExploration, m.Phase)
	assert.Equal(t, "Alice", alice.Name)

	m, bob, err := svc.Join(ctx, "Bob")
	require.NoError(t, err)
	assert.Equal(t, rules.PhaseArena, m.Phase)
	require.Len(t, m.Players, 2)
	assert.Equal(t, bob.ID, m.Players[1].ID)
	assert.Equal(t, alice.ID, m.Players[m.Arena.TurnIndex].ID)

	assert.Equal(t, []rules.EventType{
		rules.EventMatchCreated,
		rules.EventPlayerJoined,
		rules.EventPlayerJoined,
		rules.EventArenaStarted,
	}, seen)

	_, _, err = svc.Join(ctx, "   ")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestServiceJoinWithoutAutoStart(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	ctx := context.Background()

	_, _, err := svc.Join(ctx, "Alice")
	require.NoError(t, err)
	m, _, err := svc.Join(ctx, "Bob")
	require.NoError(t, err)
	assert.Equal(t, rules.PhaseExploration, m.Phase)

	m, err = svc.StartArena(ctx)
	require.NoError(t, err)
	assert.Equal(t, rules.PhaseArena, m.Phase)
}

func TestServiceRejectedOperationLeavesStoreUntouched(t *testing.T) {
	svc, store := newTestService(t, DefaultOptions())
	ctx := context.Background()

	_, _, err := svc.Join(ctx, "Alice")
	require.NoError(t, err)
	_, bob, err := svc.Join(ctx, "Bob")
	require.NoError(t, err)

	before := append([]byte(nil), store.data...)
	saves := store.saves

	out, m, err := svc.Attack(ctx, bob.ID, bob.ID, rules.SpellArcaneBolt)
	require.ErrorIs(t, err, ErrInvalidTarget)
	assert.Nil(t, m)
	assert.False(t, out.Success)
	assert.NotEmpty(t, out.Message)

	_, err = svc.Meditate(ctx, bob.ID)
	require.ErrorIs(t, err, ErrNotYourTurn)

	assert.Equal(t, before, store.data)
	assert.Equal(t, saves, store.saves)
}

func TestServiceArenaFlow(t *testing.T) {
	svc, _ := newTestService(t, DefaultOptions())
	ctx := context.Background()

	_, alice, err := svc.Join(ctx, "Alice")
	require.NoError(t, err)
	_, bob, err := svc.Join(ctx, "Bob")
	require.NoError(t, err)

	duel, _, err := svc.Attack(ctx, alice.ID, bob.ID, rules.SpellArcaneBolt)
	require.NoError(t, err)
	assert.Equal(t, 1, duel.DamageDealt)

	def, _, err := svc.ActivateDefense(ctx, alice.ID, rules.SpellArcaneProtection)
	require.NoError(t, err)
	assert.True(t, def.Success)

	m, err := svc.EndArenaTurn(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, bob.ID, m.Players[m.Arena.TurnIndex].ID)

	duel, m, err = svc.Attack(ctx, bob.ID, alice.ID, rules.SpellArcaneBolt)
	require.NoError(t, err)
	assert.True(t, duel.Blocked)
	assert.Equal(t, rules.StartingShield, m.Players[0].MagicShield)

	m, err = svc.EndArenaPhase(ctx)
	require.NoError(t, err)
	assert.Equal(t, rules.PhaseExploration, m.Phase)
	assert.Empty(t, m.Players[0].ActiveDefenses)
	assert.Len(t, m.Players[1].Glyphs, rules.GlyphsPerPlayer)

	use, m, err := svc.UseGlyph(ctx, alice.ID, "GLYPH_1")
	require.NoError(t, err)
	assert.False(t, use.Completed)
	assert.Len(t, m.UsedGlyphs, 1)

	m, err = svc.DistributeGlyphs(ctx)
	require.NoError(t, err)
	assert.Empty(t, m.UsedGlyphs)
}

func TestServiceCastAndPotions(t *testing.T) {
	svc, _ := newTestService(t, Options{DiscoveryPotionReward: true})
	ctx := context.Background()

	m, alice, err := svc.Join(ctx, "Alice")
	require.NoError(t, err)
	var aether, runa string
	for w, meaning := range m.WordDictionary {
		switch meaning {
		case rules.MeaningAether:
			aether = w.String()
		case rules.MeaningRuna:
			runa = w.String()
		}
	}

	res, m, err := svc.Cast(ctx, alice.ID, aether, runa)
	require.NoError(t, err)
	assert.Equal(t, rules.SpellFireball, res.Name)
	require.NotNil(t, res.RewardPotion)
	assert.Contains(t, m.Players[0].KnownSpells, rules.SpellFireball)
	assert.Len(t, m.Players[0].Potions, 1)

	res, _, err = svc.Cast(ctx, alice.ID, "nonsense", runa)
	require.ErrorIs(t, err, ErrInvalidToken)
	assert.False(t, res.Success)

	brew, m, err := svc.CreatePotion(ctx, alice.ID, aether, runa)
	require.NoError(t, err)
	assert.True(t, brew.Success)
	assert.Len(t, m.Players[0].Potions, 2)
	assert.Equal(t, rules.StartingMana-3, m.Players[0].Mana)

	m, err = svc.GivePotion(ctx, alice.ID, "blue")
	require.NoError(t, err)
	assert.Len(t, m.Players[0].Potions, 3)

	_, m, err = svc.UsePotion(ctx, alice.ID, "blue")
	require.NoError(t, err)
	assert.Len(t, m.Players[0].Potions, 2)
}

func TestServiceRequireGlyphsForArena(t *testing.T) {
	svc, _ := newTestService(t, Options{AutoStartArena: true, RequireGlyphsForArena: true})
	ctx := context.Background()

	_, alice, err := svc.Join(ctx, "Alice")
	require.NoError(t, err)
	m, _, err := svc.Join(ctx, "Bob")
	require.NoError(t, err)
	assert.Equal(t, rules.PhaseExploration, m.Phase)

	_, err = svc.StartArena(ctx)
	require.ErrorIs(t, err, ErrWrongPhase)

	_, err = svc.DistributeGlyphs(ctx)
	require.NoError(t, err)
	for _, g := range rules.AllGlyphs {
		_, _, err := svc.UseGlyph(ctx, alice.ID, g.String())
		require.NoError(t, err)
	}
	m, err = svc.StartArena(ctx)
	require.NoError(t, err)
	assert.Equal(t, rules.PhaseArena, m.Phase)
}

func TestServiceReset(t *testing.T) {
	svc, _ := newTestService(t, DefaultOptions())
	ctx := context.Background()

	m, _, err := svc.Join(ctx, "Alice")
	require.NoError(t, err)

	var reset rules.Event
	svc.Events().SubscribeTyped(rules.EventMatchReset, func(e rules.Event) { reset = e })

	require.NoError(t, svc.Reset(ctx))
	assert.Equal(t, m.ID, reset.MatchID)

	state, err := svc.State(ctx)
	require.NoError(t, err)
	assert.Nil(t, state)
}

func TestServiceResetClearsUnreadableSnapshot(t *testing.T) {
	svc, store := newTestService(t, DefaultOptions())
	ctx := context.Background()

	store.data = []byte(`{"checksum":{"hash":"x","version":1},"match":{"matchId":"m"}}`)
	_, err := svc.State(ctx)
	require.Error(t, err)

	var reset []rules.Event
	svc.Events().SubscribeTyped(rules.EventMatchReset, func(e rules.Event) { reset = append(reset, e) })

	require.NoError(t, svc.Reset(ctx))
	assert.Nil(t, store.data)
	require.Len(t, reset, 1)
	assert.Empty(t, reset[0].MatchID)

	state, err := svc.State(ctx)
	require.NoError(t, err)
	assert.Nil(t, state)
}

func TestServiceStateListenersFollowCommitOrder(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	ctx := context.Background()

	var seen []string
	var potions []int
	remove := svc.OnStateChange(func(m *Match) {
		if m == nil {
			seen = append(seen, "reset")
			return
		}
		seen = append(seen, m.ID)
		if len(m.Players) > 0 {
			potions = append(potions, len(m.Players[0].Potions))
		}
	})

	m, alice, err := svc.Join(ctx, "Alice")
	require.NoError(t, err)
	_, err = svc.GivePotion(ctx, alice.ID, "red")
	require.NoError(t, err)
	_, err = svc.GivePotion(ctx, alice.ID, "blue")
	require.NoError(t, err)

	// Rejected operations report nothing.
	_, err = svc.GivePotion(ctx, alice.ID, "orange")
	require.ErrorIs(t, err, ErrInvalidToken)

	require.NoError(t, svc.Reset(ctx))
	// create, join, two gifts, reset
	assert.Equal(t, []string{m.ID, m.ID, m.ID, m.ID, "reset"}, seen)
	assert.Equal(t, []int{0, 1, 2}, potions)

	remove()
	_, _, err = svc.Join(ctx, "Bob")
	require.NoError(t, err)
	assert.Len(t, seen, 5)
}

func TestServiceSaveFailureIsWrapped(t *testing.T) {
	svc, store := newTestService(t, DefaultOptions())
	ctx := context.Background()

	_, alice, err := svc.Join(ctx, "Alice")
	require.NoError(t, err)

	var published int
	svc.Events().Subscribe(func(rules.Event) { published++ })

	diskFull := errors.New("disk full")
	store.failErr = diskFull
	_, err = svc.Meditate(ctx, alice.ID)
	require.ErrorIs(t, err, diskFull)
	assert.Equal(t, ErrorKind(""), KindOf(err))
	assert.Zero(t, published, "events are only published after a successful save")
}

func TestServiceSerializesConcurrentOperations(t *testing.T) {
	svc, _ := newTestService(t, Options{})
	ctx := context.Background()

	_, alice, err := svc.Join(ctx, "Alice")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.GivePotion(ctx, alice.ID, "pink")
		}()
	}
	wg.Wait()

	m, err := svc.State(ctx)
	require.NoError(t, err)
	assert.Len(t, m.Players[0].Potions, 20)
}
