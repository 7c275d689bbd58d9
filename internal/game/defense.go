package game

import (
	"strings"

	"github.com/ultma/ultma-server-go/internal/game/rules"
)

func failedSpell(name string, err error) (rules.SpellOutcome, error) {
	return rules.SpellOutcome{
		Name:        name,
		Category:    rules.CategoryNone,
		Description: messageOf(err),
	}, err
}

// ActivateDefense raises one of the player's defensive spells.
func (m *Match) ActivateDefense(playerID, spellName string) (rules.SpellOutcome, error) {
	spellName = strings.TrimSpace(spellName)
	p, err := m.requireActor(playerID)
	if err != nil {
		return failedSpell(spellName, err)
	}
	if err := m.RequireTurn(p); err != nil {
		return failedSpell(spellName, err)
	}
	if !p.Knows(spellName) {
		return failedSpell(spellName, newError(KindSpellNotKnown, "%s does not know %s", p.Name, spellName))
	}
	spell, _ := rules.LookupSpell(spellName)
	if spell.Category != rules.CategoryDefense {
		return failedSpell(spellName, newError(KindSpellCategoryMismatch, "%s is not a defense spell", spellName))
	}
	if p.Mana < spell.ManaCost {
		return failedSpell(spellName, newError(KindInsufficientMana, "%s needs %d mana, has %d", spellName, spell.ManaCost, p.Mana))
	}

	p.Mana -= spell.ManaCost
	p.ActiveDefenses = append(p.ActiveDefenses, spell.Name)
	if spell.Name == rules.SpellVacuumShield {
		p.MagicShield += rules.VacuumShieldBonus
	}

	evt := rules.NewEvent(rules.EventDefenseActivated, m.ID, p.ID)
	evt.Data = spell.Name
	m.emit(evt)
	m.ConsumeAction(p)

	return rules.SpellOutcome{
		Name:        spell.Name,
		Category:    spell.Category,
		ManaCost:    spell.ManaCost,
		Description: spell.Description,
		Success:     true,
	}, nil
}
