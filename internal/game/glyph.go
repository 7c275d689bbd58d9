package game

import (
	"math/rand"

	"github.com/ultma/ultma-server-go/internal/game/rules"
)

// GlyphUse reports the effect of spending a glyph.
type GlyphUse struct {
	Glyph         rules.Glyph `json:"glyph"`
	Completed     bool        `json:"completed"`
	ArenaEligible bool        `json:"arenaEligible"`
}

// DistributeGlyphs deals a fresh hand to every active player and forgets
// which glyph types have been used.
func (m *Match) DistributeGlyphs(rng *rand.Rand) {
	count := min(rules.GlyphsPerPlayer, len(rules.AllGlyphs))
	for _, p := range m.ActivePlayers() {
		hand := make([]rules.Glyph, 0, count)
		for _, i := range rng.Perm(len(rules.AllGlyphs))[:count] {
			hand = append(hand, rules.AllGlyphs[i])
		}
		p.Glyphs = hand
	}
	m.UsedGlyphs = make([]rules.Glyph, 0, len(rules.AllGlyphs))
	m.emit(rules.NewEventWithAmount(rules.EventGlyphsDistributed, m.ID, "", count))
}

// UseGlyph spends one glyph from the player's hand. Emptying the hand pays a
// completion bonus, and once every glyph type has been used on the board the
// arena may be started.
func (m *Match) UseGlyph(playerID, glyphToken string) (GlyphUse, error) {
	glyph, err := rules.ParseGlyph(glyphToken)
	if err != nil {
		return GlyphUse{}, newError(KindInvalidToken, "%v", err)
	}
	p, err := m.requireActor(playerID)
	if err != nil {
		return GlyphUse{}, err
	}
	idx := -1
	for i, g := range p.Glyphs {
		if g == glyph {
			idx = i
			break
		}
	}
	if idx < 0 {
		return GlyphUse{}, newError(KindItemNotHeld, "%s does not hold %s", p.Name, glyph)
	}

	wasEligible := m.ArenaEligible()
	p.Glyphs = append(p.Glyphs[:idx], p.Glyphs[idx+1:]...)
	if !containsGlyph(m.UsedGlyphs, glyph) {
		m.UsedGlyphs = append(m.UsedGlyphs, glyph)
	}
	evt := rules.NewEvent(rules.EventGlyphUsed, m.ID, p.ID)
	evt.Data = glyph.String()
	m.emit(evt)

	use := GlyphUse{Glyph: glyph}
	if len(p.Glyphs) == 0 {
		p.Mana++
		p.MagicShield++
		use.Completed = true
		m.emitFor(rules.EventGlyphsCompleted, p.ID)
	}
	use.ArenaEligible = m.ArenaEligible()
	if use.ArenaEligible && !wasEligible {
		m.emitFor(rules.EventArenaEligible, "")
	}
	return use, nil
}

func containsGlyph(values []rules.Glyph, target rules.Glyph) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
