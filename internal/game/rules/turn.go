package rules

import "fmt"

// Phase represents the two broad phases of a match.
type Phase int

const (
	PhaseExploration Phase = iota
	PhaseArena
)

var phaseNames = map[Phase]string{
	PhaseExploration: "EXPLORATION",
	PhaseArena:       "ARENA",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PHASE_%d", int(p))
}

func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *Phase) UnmarshalText(text []byte) error {
	v, err := parseName("phase", string(text), phaseNames)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Player resource limits and per-turn budgets.
const (
	StartingLife   = 3
	StartingShield = 3
	StartingMana   = 5

	MaxLife = 3
	// ManaSoftCap bounds meditation only. Potions and arena rewards may exceed it.
	ManaSoftCap = 5

	ActionsPerTurn     = 3
	MeditateManaGain   = 2
	ArenaEndManaReward = 2

	// MinArenaPlayers is the number of active players needed to open the arena.
	MinArenaPlayers = 2

	// GlyphsPerPlayer is how many glyph tokens each player receives per distribution.
	GlyphsPerPlayer = 4
)

// Potion effect magnitudes.
const (
	HealAmount           = 1
	ManaRestoreAmount    = 3
	ShieldBoostAmount    = 3
	ManaDrainAmount      = 3
	LifeCorruptionAmount = 1
	ShieldBreakAmount    = 3
)

// Combat magnitudes.
const (
	BaseSpellDamage   = 1
	ResonanceFactor   = 2
	VoidCurseManaLoss = 3
	VoidCurseDamage   = 1
	VacuumShieldBonus = 1
)
