package game

import (
	"math/rand"

	"github.com/ultma/ultma-server-go/internal/game/rules"
)

// CastResult reports a cast along with what the caster gained from it.
type CastResult struct {
	rules.SpellOutcome
	Learned      bool               `json:"learned"`
	RewardPotion *rules.PotionColor `json:"rewardPotion,omitempty"`
}

// Cast combines two power words. A combination that produces nothing still
// spends the action. A spell the player did not know yet is learned and,
// when rng is non-nil, rewarded with a random potion.
func (m *Match) Cast(playerID, word1, word2 string, rng *rand.Rand) (CastResult, error) {
	fail := func(err error) (CastResult, error) {
		out, err := failedSpell(rules.SpellMagicalFailure, err)
		return CastResult{SpellOutcome: out}, err
	}

	w1, err := rules.ParsePowerWord(word1)
	if err != nil {
		return fail(newError(KindInvalidToken, "%v", err))
	}
	w2, err := rules.ParsePowerWord(word2)
	if err != nil {
		return fail(newError(KindInvalidToken, "%v", err))
	}
	p, err := m.requireActor(playerID)
	if err != nil {
		return fail(err)
	}
	if err := m.RequireTurn(p); err != nil {
		return fail(err)
	}

	m1, _ := m.WordDictionary.MeaningOf(w1)
	m2, _ := m.WordDictionary.MeaningOf(w2)
	outcome := rules.Resolve(m1, m2)
	if p.Mana < outcome.ManaCost {
		return fail(newError(KindInsufficientMana, "%s needs %d mana, has %d", outcome.Name, outcome.ManaCost, p.Mana))
	}

	p.Mana -= outcome.ManaCost
	result := CastResult{SpellOutcome: outcome}
	if !outcome.Success {
		m.emitFor(rules.EventSpellFizzled, p.ID)
		m.ConsumeAction(p)
		return result, nil
	}

	cast := rules.NewEventWithAmount(rules.EventSpellCast, m.ID, p.ID, outcome.ManaCost)
	cast.Data = outcome.Name
	m.emit(cast)

	if p.learn(outcome.Name) {
		result.Learned = true
		learned := rules.NewEvent(rules.EventSpellLearned, m.ID, p.ID)
		learned.Data = outcome.Name
		m.emit(learned)

		if rng != nil {
			color := rules.AllPotionColors[rng.Intn(len(rules.AllPotionColors))]
			m.grantPotion(p, color)
			result.RewardPotion = &color
		}
	}
	m.ConsumeAction(p)
	return result, nil
}

// Meditate restores mana up to the soft cap. Mana above the cap is brought
// back down to it.
func (m *Match) Meditate(playerID string) error {
	p, err := m.requireActor(playerID)
	if err != nil {
		return err
	}
	if err := m.RequireTurn(p); err != nil {
		return err
	}

	before := p.Mana
	p.Mana = min(rules.ManaSoftCap, p.Mana+rules.MeditateManaGain)
	m.emit(rules.NewEventWithAmount(rules.EventMeditated, m.ID, p.ID, p.Mana-before))
	m.ConsumeAction(p)
	return nil
}
