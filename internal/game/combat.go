package game

import (
	"strings"

	"github.com/ultma/ultma-server-go/internal/game/rules"
)

// DuelOutcome is the result of an attack.
type DuelOutcome struct {
	Success       bool   `json:"success"`
	AttackerID    string `json:"attackerId"`
	TargetID      string `json:"targetId"`
	SpellName     string `json:"spellName"`
	DamageDealt   int    `json:"damageDealt"`
	ShieldBefore  int    `json:"shieldBefore"`
	ShieldAfter   int    `json:"shieldAfter"`
	LifeBefore    int    `json:"lifeBefore"`
	LifeAfter     int    `json:"lifeAfter"`
	ManaDrained   int    `json:"manaDrained,omitempty"`
	Blocked       bool   `json:"blocked"`
	BlockingSpell string `json:"blockingSpell,omitempty"`
	Eliminated    bool   `json:"targetEliminated"`
	Message       string `json:"message,omitempty"`
}

func failedDuel(attackerID, targetID, spell string, err error) (DuelOutcome, error) {
	return DuelOutcome{
		AttackerID: attackerID,
		TargetID:   targetID,
		SpellName:  spell,
		Message:    messageOf(err),
	}, err
}

// Attack resolves attackerID casting spellName at targetID.
func (m *Match) Attack(attackerID, targetID, spellName string) (DuelOutcome, error) {
	attackerID = strings.TrimSpace(attackerID)
	targetID = strings.TrimSpace(targetID)
	spellName = strings.TrimSpace(spellName)

	if attackerID == targetID {
		return failedDuel(attackerID, targetID, spellName, newError(KindInvalidTarget, "a player cannot attack themselves"))
	}
	attacker, err := m.requirePlayer(attackerID)
	if err != nil {
		return failedDuel(attackerID, targetID, spellName, err)
	}
	target, err := m.requirePlayer(targetID)
	if err != nil {
		return failedDuel(attackerID, targetID, spellName, err)
	}
	if attacker.Eliminated {
		return failedDuel(attackerID, targetID, spellName, newError(KindEliminated, "player %s has been eliminated", attacker.Name))
	}
	if target.Eliminated {
		return failedDuel(attackerID, targetID, spellName, newError(KindEliminated, "target %s has already been eliminated", target.Name))
	}
	if err := m.RequireTurn(attacker); err != nil {
		return failedDuel(attackerID, targetID, spellName, err)
	}
	if !attacker.Knows(spellName) {
		return failedDuel(attackerID, targetID, spellName, newError(KindSpellNotKnown, "%s does not know %s", attacker.Name, spellName))
	}
	spell, _ := rules.LookupSpell(spellName)
	if spell.Category != rules.CategoryAttack {
		return failedDuel(attackerID, targetID, spellName, newError(KindSpellCategoryMismatch, "%s is not an attack spell", spellName))
	}
	if attacker.Mana < spell.ManaCost {
		return failedDuel(attackerID, targetID, spellName, newError(KindInsufficientMana, "%s needs %d mana, has %d", spellName, spell.ManaCost, attacker.Mana))
	}

	attacker.Mana -= spell.ManaCost

	out := DuelOutcome{
		Success:      true,
		AttackerID:   attacker.ID,
		TargetID:     target.ID,
		SpellName:    spell.Name,
		ShieldBefore: target.MagicShield,
		LifeBefore:   target.LifeEnergy,
	}
	declared := rules.NewEvent(rules.EventAttackDeclared, m.ID, attacker.ID)
	declared.TargetID = target.ID
	declared.Data = spell.Name
	m.emit(declared)

	if spell.Name == rules.SpellVoidCurse {
		m.resolveVoidCurse(attacker, target, &out)
	} else {
		m.resolveStrike(attacker, target, spell, &out)
	}

	out.ShieldAfter = target.MagicShield
	out.LifeAfter = target.LifeEnergy
	if target.checkElimination() {
		out.Eliminated = true
		out.LifeAfter = target.LifeEnergy
		m.emitFor(rules.EventPlayerEliminated, target.ID)
	}
	// Spent after resolution so a target eliminated by this attack is
	// already out of the rotation when the turn passes.
	m.ConsumeAction(attacker)
	return out, nil
}

// resolveVoidCurse works on the mana channel and ignores defenses.
func (m *Match) resolveVoidCurse(attacker, target *Player, out *DuelOutcome) {
	removed := min(target.Mana, rules.VoidCurseManaLoss)
	target.Mana -= removed
	out.ManaDrained = removed

	drained := rules.NewEventWithAmount(rules.EventManaDrained, m.ID, attacker.ID, removed)
	drained.TargetID = target.ID
	m.emit(drained)

	if removed > 0 && target.Mana == 0 {
		target.takeDamage(rules.VoidCurseDamage)
		out.DamageDealt = rules.VoidCurseDamage
		m.emitDamage(attacker, target, out.DamageDealt)
	}
}

func (m *Match) resolveStrike(attacker, target *Player, spell rules.Spell, out *DuelOutcome) {
	if counter, ok := rules.CounterDefense(spell.Name); ok && target.HasDefense(counter) {
		out.Blocked = true
		out.BlockingSpell = counter
		blocked := rules.NewEvent(rules.EventAttackBlocked, m.ID, attacker.ID)
		blocked.TargetID = target.ID
		blocked.Data = counter
		m.emit(blocked)
		return
	}

	damage := rules.BaseSpellDamage
	if resonant, ok := rules.ResonantDefense(spell.Name); ok && attacker.HasDefense(resonant) {
		damage *= rules.ResonanceFactor
	}
	target.takeDamage(damage)
	out.DamageDealt = damage
	m.emitDamage(attacker, target, damage)
}

func (m *Match) emitDamage(attacker, target *Player, amount int) {
	evt := rules.NewEventWithAmount(rules.EventDamageDealt, m.ID, attacker.ID, amount)
	evt.TargetID = target.ID
	m.emit(evt)
}
