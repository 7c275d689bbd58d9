package rules

import "fmt"

// Category classifies what a spell does.
type Category int

const (
	CategoryNone Category = iota
	CategoryAttack
	CategoryDefense
	CategoryUtility
)

var categoryNames = map[Category]string{
	CategoryNone:    "NONE",
	CategoryAttack:  "ATTACK",
	CategoryDefense: "DEFENSE",
	CategoryUtility: "UTILITY",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("CATEGORY_%d", int(c))
}

func (c Category) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Category) UnmarshalText(text []byte) error {
	v, err := parseName("category", string(text), categoryNames)
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Spell names.
const (
	SpellFireball         = "Fireball"
	SpellIceLance         = "Ice Lance"
	SpellWindSlash        = "Wind Slash"
	SpellEarthFury        = "Earth Fury"
	SpellVoidCurse        = "Void Curse"
	SpellArcaneBolt       = "Arcane Bolt"
	SpellFireBarrier      = "Fire Barrier"
	SpellWaterWall        = "Water Wall"
	SpellStoneArmor       = "Stone Armor"
	SpellLevitation       = "Levitation"
	SpellArcaneProtection = "Arcane Protection"
	SpellVacuumShield     = "Vacuum Shield"
	SpellDissipation      = "Dissipation"
	SpellHidePresence     = "Hide Presence"
	SpellMindVision       = "Mind Vision"
	SpellManaTransfer     = "Mana Transfer"
	SpellClairvoyance     = "Clairvoyance"
	SpellTeleport         = "Teleport"
	SpellPortal           = "Portal"
	SpellMagicalFailure   = "Magical Failure"
)

// BaseSpells are known by every player when they join.
var BaseSpells = []string{SpellArcaneBolt, SpellArcaneProtection, SpellTeleport, SpellPortal}

// Spell is a catalog entry.
type Spell struct {
	Name        string
	Category    Category
	ManaCost    int
	Description string
}

var catalog = map[string]Spell{
	SpellFireball:         {SpellFireball, CategoryAttack, 2, "Damage (blocked by Water Wall)"},
	SpellIceLance:         {SpellIceLance, CategoryAttack, 2, "Damage (blocked by Fire Barrier)"},
	SpellWindSlash:        {SpellWindSlash, CategoryAttack, 2, "Damage (blocked by Stone Armor)"},
	SpellEarthFury:        {SpellEarthFury, CategoryAttack, 2, "Damage (blocked by Levitation)"},
	SpellVoidCurse:        {SpellVoidCurse, CategoryAttack, 2, "Drains 3 mana, wounds when the target runs dry"},
	SpellArcaneBolt:       {SpellArcaneBolt, CategoryAttack, 1, "Damage (blocked by Arcane Protection)"},
	SpellFireBarrier:      {SpellFireBarrier, CategoryDefense, 1, "Blocks Ice Lance"},
	SpellWaterWall:        {SpellWaterWall, CategoryDefense, 1, "Blocks Fireball"},
	SpellStoneArmor:       {SpellStoneArmor, CategoryDefense, 1, "Blocks Wind Slash"},
	SpellLevitation:       {SpellLevitation, CategoryDefense, 1, "Blocks Earth Fury"},
	SpellArcaneProtection: {SpellArcaneProtection, CategoryDefense, 1, "Blocks Arcane Bolt"},
	SpellVacuumShield:     {SpellVacuumShield, CategoryDefense, 3, "+1 magic shield"},
	SpellDissipation:      {SpellDissipation, CategoryUtility, 3, "Removes an artifact or potion, or cancels a vision"},
	SpellHidePresence:     {SpellHidePresence, CategoryUtility, 1, "Prevents duels and visions"},
	SpellMindVision:       {SpellMindVision, CategoryUtility, 2, "Learns the target's power words"},
	SpellManaTransfer:     {SpellManaTransfer, CategoryUtility, 1, "Steals 2 mana"},
	SpellClairvoyance:     {SpellClairvoyance, CategoryUtility, 1, "Reveals information"},
	SpellTeleport:         {SpellTeleport, CategoryUtility, 1, "Moves across the board"},
	SpellPortal:           {SpellPortal, CategoryUtility, 1, "Opens a passage"},
}

// LookupSpell returns the catalog entry for name.
func LookupSpell(name string) (Spell, bool) {
	s, ok := catalog[name]
	return s, ok
}

// MeaningPair is an unordered pair of meanings. Lo never exceeds Hi.
type MeaningPair struct {
	Lo Meaning
	Hi Meaning
}

// PairOf canonicalizes two meanings by their ordinal order.
func PairOf(a, b Meaning) MeaningPair {
	if b < a {
		a, b = b, a
	}
	return MeaningPair{Lo: a, Hi: b}
}

var spellCombinations = map[MeaningPair]string{
	PairOf(MeaningAether, MeaningRuna):   SpellFireball,
	PairOf(MeaningAether, MeaningNexus):  SpellIceLance,
	PairOf(MeaningAether, MeaningSombra): SpellWindSlash,
	PairOf(MeaningAether, MeaningForja):  SpellFireBarrier,
	PairOf(MeaningAether, MeaningVazio):  SpellDissipation,
	PairOf(MeaningRuna, MeaningNexus):    SpellWaterWall,
	PairOf(MeaningRuna, MeaningSombra):   SpellHidePresence,
	PairOf(MeaningRuna, MeaningForja):    SpellStoneArmor,
	PairOf(MeaningRuna, MeaningVazio):    SpellVoidCurse,
	PairOf(MeaningNexus, MeaningSombra):  SpellMindVision,
	PairOf(MeaningNexus, MeaningForja):   SpellEarthFury,
	PairOf(MeaningNexus, MeaningVazio):   SpellManaTransfer,
	PairOf(MeaningSombra, MeaningForja):  SpellClairvoyance,
	PairOf(MeaningSombra, MeaningVazio):  SpellLevitation,
	PairOf(MeaningForja, MeaningVazio):   SpellVacuumShield,
}

// SpellOutcome is the result of resolving or casting a spell.
type SpellOutcome struct {
	Name        string   `json:"spellName"`
	Category    Category `json:"type"`
	ManaCost    int      `json:"manaCost"`
	Description string   `json:"description"`
	Success     bool     `json:"success"`
}

// MagicalFailure is the outcome of every combination without a spell.
var MagicalFailure = SpellOutcome{
	Name:        SpellMagicalFailure,
	Category:    CategoryNone,
	ManaCost:    0,
	Description: "The combination failed.",
	Success:     false,
}

// Resolve looks up the spell produced by combining two meanings. The result
// does not depend on argument order.
func Resolve(m1, m2 Meaning) SpellOutcome {
	name, ok := spellCombinations[PairOf(m1, m2)]
	if !ok {
		return MagicalFailure
	}
	spell := catalog[name]
	return SpellOutcome{
		Name:        spell.Name,
		Category:    spell.Category,
		ManaCost:    spell.ManaCost,
		Description: spell.Description,
		Success:     true,
	}
}

// counterDefenses maps each attack spell to the defense that blocks it.
var counterDefenses = map[string]string{
	SpellFireball:   SpellWaterWall,
	SpellIceLance:   SpellFireBarrier,
	SpellWindSlash:  SpellStoneArmor,
	SpellEarthFury:  SpellLevitation,
	SpellArcaneBolt: SpellArcaneProtection,
}

// resonantDefenses maps attack spells to the defense that doubles their
// damage when the attacker has it active. Arcane Bolt does not resonate.
var resonantDefenses = map[string]string{
	SpellFireball:  SpellWaterWall,
	SpellIceLance:  SpellFireBarrier,
	SpellWindSlash: SpellStoneArmor,
	SpellEarthFury: SpellLevitation,
}

// CounterDefense returns the defense that blocks attack, if any.
func CounterDefense(attack string) (string, bool) {
	d, ok := counterDefenses[attack]
	return d, ok
}

// ResonantDefense returns the defense that amplifies attack when held by the caster.
func ResonantDefense(attack string) (string, bool) {
	d, ok := resonantDefenses[attack]
	return d, ok
}
