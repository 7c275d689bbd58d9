package game

import (
	"math/rand"
	"testing"

	"github.com/ultma/ultma-server-go/internal/game/rules"
)

// matchHarness builds matches with deterministic randomness and looks up the
// hidden dictionaries so tests can cast specific spells.
type matchHarness struct {
	t     *testing.T
	rng   *rand.Rand
	match *Match
}

func newMatchHarness(t *testing.T, names ...string) *matchHarness {
	t.Helper()
	rng := rand.New(rand.NewSource(1))
	m := NewMatch(rng)
	for _, name := range names {
		m.Players = append(m.Players, NewPlayer(name))
	}
	return &matchHarness{t: t, rng: rng, match: m}
}

func (h *matchHarness) player(i int) *Player {
	h.t.Helper()
	if i >= len(h.match.Players) {
		h.t.Fatalf("no player at index %d", i)
	}
	return h.match.Players[i]
}

// word returns the power word that means meaning in this match.
func (h *matchHarness) word(meaning rules.Meaning) string {
	h.t.Helper()
	for w, m := range h.match.WordDictionary {
		if m == meaning {
			return w.String()
		}
	}
	h.t.Fatalf("no word translates to %s", meaning)
	return ""
}

// color returns the potion color that has effect in this match.
func (h *matchHarness) color(effect rules.PotionEffect) rules.PotionColor {
	h.t.Helper()
	for c, e := range h.match.PotionDictionary {
		if e == effect {
			return c
		}
	}
	h.t.Fatalf("no potion color has effect %s", effect)
	return 0
}

func (h *matchHarness) startArena() {
	h.t.Helper()
	if err := h.match.StartArena(h.rng); err != nil {
		h.t.Fatalf("failed to start arena: %v", err)
	}
	h.match.DrainEvents()
}

func (h *matchHarness) current() *Player {
	h.t.Helper()
	p, err := h.match.CurrentTurnPlayer()
	if err != nil {
		h.t.Fatalf("failed to resolve current player: %v", err)
	}
	return p
}

func (h *matchHarness) eliminate(p *Player) {
	p.LifeEnergy = 0
	p.checkElimination()
}

func eventTypes(events []rules.Event) []rules.EventType {
	types := make([]rules.EventType, len(events))
	for i, e := range events {
		types[i] = e.Type
	}
	return types
}
