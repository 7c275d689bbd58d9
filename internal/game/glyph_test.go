package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ultma/ultma-server-go/internal/game/rules"
)

func TestDistributeGlyphs(t *testing.T) {
	h := newMatchHarness(t, "Alice", "Bob", "Carol")
	h.eliminate(h.player(2))
	h.match.UsedGlyphs = []rules.Glyph{rules.Glyph1}

	h.match.DistributeGlyphs(h.rng)

	assert.Empty(t, h.match.UsedGlyphs)
	for _, p := range h.match.Players[:2] {
		assert.ElementsMatch(t, rules.AllGlyphs, p.Glyphs)
	}
	assert.Empty(t, h.player(2).Glyphs)
}

func TestUsingLastGlyphGrantsBonusOnce(t *testing.T) {
	h := newMatchHarness(t, "Alice")
	alice := h.player(0)
	h.match.DistributeGlyphs(h.rng)

	for i, g := range rules.AllGlyphs {
		use, err := h.match.UseGlyph(alice.ID, g.String())
		require.NoError(t, err)
		last := i == len(rules.AllGlyphs)-1
		assert.Equal(t, last, use.Completed)
		assert.Equal(t, last, use.ArenaEligible)
	}
	assert.Equal(t, rules.StartingMana+1, alice.Mana)
	assert.Equal(t, rules.StartingShield+1, alice.MagicShield)
	assert.Len(t, h.match.UsedGlyphs, 4)

	_, err := h.match.UseGlyph(alice.ID, "GLYPH_1")
	require.ErrorIs(t, err, ErrItemNotHeld)
	assert.Equal(t, rules.StartingMana+1, alice.Mana)

	types := eventTypes(h.match.DrainEvents())
	count := 0
	for _, typ := range types {
		if typ == rules.EventGlyphsCompleted {
			count++
		}
	}
	assert.Equal(t, 1, count)
	assert.Contains(t, types, rules.EventArenaEligible)
}

func TestGlyphTypesAccumulateAcrossPlayers(t *testing.T) {
	h := newMatchHarness(t, "Alice", "Bob")
	alice, bob := h.player(0), h.player(1)
	h.match.DistributeGlyphs(h.rng)

	for _, step := range []struct {
		p *Player
		g rules.Glyph
	}{
		{bob, rules.Glyph4},
		{alice, rules.Glyph2},
		{alice, rules.Glyph4},
		{bob, rules.Glyph1},
	} {
		_, err := h.match.UseGlyph(step.p.ID, step.g.String())
		require.NoError(t, err)
	}
	assert.Len(t, h.match.UsedGlyphs, 3)
	assert.False(t, h.match.ArenaEligible())

	use, err := h.match.UseGlyph(alice.ID, "glyph_3")
	require.NoError(t, err)
	assert.True(t, use.ArenaEligible)
	assert.False(t, use.Completed)
	assert.Len(t, h.match.UsedGlyphs, 4)
	assert.Equal(t, rules.PhaseExploration, h.match.Phase, "eligibility does not start the arena")
	assert.Equal(t, rules.StartingMana, alice.Mana)
}

func TestUseGlyphRejections(t *testing.T) {
	h := newMatchHarness(t, "Alice")
	alice := h.player(0)

	_, err := h.match.UseGlyph(alice.ID, "GLYPH_9")
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = h.match.UseGlyph(alice.ID, "GLYPH_2")
	require.ErrorIs(t, err, ErrItemNotHeld)
	assert.Empty(t, h.match.UsedGlyphs)
	assert.Equal(t, rules.StartingMana, alice.Mana, "an empty hand earns nothing without a glyph")
}

func TestPartialGlyphHandsStillComplete(t *testing.T) {
	h := newMatchHarness(t, "Alice")
	alice := h.player(0)
	alice.Glyphs = []rules.Glyph{rules.Glyph3}

	use, err := h.match.UseGlyph(alice.ID, "GLYPH_3")
	require.NoError(t, err)
	assert.True(t, use.Completed)
	assert.False(t, use.ArenaEligible)
	assert.Equal(t, rules.StartingShield+1, alice.MagicShield)
}
