package game

import (
	"github.com/ultma/ultma-server-go/internal/game/rules"
)

// PotionUse reports what drinking a potion did.
type PotionUse struct {
	Color  rules.PotionColor  `json:"color"`
	Effect rules.PotionEffect `json:"effect"`
	Delta  int                `json:"delta"`
}

func (p *Player) potionIndex(color rules.PotionColor) int {
	for i, c := range p.Potions {
		if c == color {
			return i
		}
	}
	return -1
}

func (m *Match) grantPotion(p *Player, color rules.PotionColor) {
	p.Potions = append(p.Potions, color)
	evt := rules.NewEvent(rules.EventPotionGranted, m.ID, p.ID)
	evt.Data = color.String()
	m.emit(evt)
}

// UsePotion drinks one potion of the given color. The effect is whatever the
// match's potion dictionary assigns to that color.
func (m *Match) UsePotion(playerID, colorToken string) (PotionUse, error) {
	color, err := rules.ParsePotionColor(colorToken)
	if err != nil {
		return PotionUse{}, newError(KindInvalidToken, "%v", err)
	}
	p, err := m.requireActor(playerID)
	if err != nil {
		return PotionUse{}, err
	}
	if err := m.RequireTurn(p); err != nil {
		return PotionUse{}, err
	}
	idx := p.potionIndex(color)
	if idx < 0 {
		return PotionUse{}, newError(KindItemNotHeld, "%s holds no %s potion", p.Name, color)
	}
	effect, ok := m.PotionDictionary.EffectOf(color)
	if !ok {
		return PotionUse{}, newError(KindNotFound, "potion color %s has no effect in this match", color)
	}

	use := PotionUse{Color: color, Effect: effect}
	switch effect {
	case rules.EffectHeal:
		before := p.LifeEnergy
		p.LifeEnergy = min(rules.MaxLife, p.LifeEnergy+rules.HealAmount)
		use.Delta = p.LifeEnergy - before
	case rules.EffectManaRestore:
		p.Mana += rules.ManaRestoreAmount
		use.Delta = rules.ManaRestoreAmount
	case rules.EffectShieldBoost:
		p.MagicShield += rules.ShieldBoostAmount
		use.Delta = rules.ShieldBoostAmount
	case rules.EffectManaDrain:
		before := p.Mana
		p.Mana = max(0, p.Mana-rules.ManaDrainAmount)
		use.Delta = p.Mana - before
	case rules.EffectLifeCorruption:
		before := p.LifeEnergy
		p.LifeEnergy = max(0, p.LifeEnergy-rules.LifeCorruptionAmount)
		use.Delta = p.LifeEnergy - before
	case rules.EffectShieldBreak:
		before := p.MagicShield
		p.MagicShield = max(0, p.MagicShield-rules.ShieldBreakAmount)
		use.Delta = p.MagicShield - before
	}
	p.Potions = append(p.Potions[:idx], p.Potions[idx+1:]...)

	evt := rules.NewEventWithAmount(rules.EventPotionUsed, m.ID, p.ID, use.Delta)
	evt.Data = color.String()
	evt.Metadata["effect"] = effect.String()
	m.emit(evt)

	if p.checkElimination() {
		m.emitFor(rules.EventPlayerEliminated, p.ID)
	}
	m.ConsumeAction(p)
	return use, nil
}

// CreatePotion brews a potion from two power words for a flat mana cost. It is
// allowed outside the player's turn.
func (m *Match) CreatePotion(playerID, word1, word2 string) (rules.PotionOutcome, error) {
	fail := func(err error) (rules.PotionOutcome, error) {
		return rules.PotionOutcome{Description: messageOf(err)}, err
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
	if p.Mana < rules.PotionBrewCost {
		return fail(newError(KindInsufficientMana, "brewing needs %d mana, has %d", rules.PotionBrewCost, p.Mana))
	}

	p.Mana -= rules.PotionBrewCost
	m1, _ := m.WordDictionary.MeaningOf(w1)
	m2, _ := m.WordDictionary.MeaningOf(w2)
	outcome := rules.ResolvePotion(m1, m2)
	// The mana is spent whether or not the brew succeeds.
	outcome.ManaCost = rules.PotionBrewCost
	if outcome.Success {
		p.Potions = append(p.Potions, *outcome.Color)
		evt := rules.NewEventWithAmount(rules.EventPotionBrewed, m.ID, p.ID, rules.PotionBrewCost)
		evt.Data = outcome.Color.String()
		m.emit(evt)
	}
	return outcome, nil
}

// GivePotion hands a potion to a player unconditionally.
func (m *Match) GivePotion(playerID, colorToken string) error {
	color, err := rules.ParsePotionColor(colorToken)
	if err != nil {
		return newError(KindInvalidToken, "%v", err)
	}
	p, err := m.requirePlayer(playerID)
	if err != nil {
		return err
	}
	m.grantPotion(p, color)
	return nil
}
