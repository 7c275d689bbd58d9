package rules

// PotionBrewCost is the flat mana cost of brewing a potion.
const PotionBrewCost = 1

var potionCombinations = map[MeaningPair]PotionColor{
	PairOf(MeaningAether, MeaningForja):  PotionRed,
	PairOf(MeaningRuna, MeaningNexus):    PotionBlue,
	PairOf(MeaningRuna, MeaningSombra):   PotionGreen,
	PairOf(MeaningForja, MeaningVazio):   PotionPurple,
	PairOf(MeaningAether, MeaningRuna):   PotionPink,
	PairOf(MeaningSombra, MeaningVazio):  PotionWhite,
	PairOf(MeaningAether, MeaningNexus):  PotionRed,
	PairOf(MeaningNexus, MeaningForja):   PotionBlue,
	PairOf(MeaningAether, MeaningSombra): PotionGreen,
	PairOf(MeaningNexus, MeaningVazio):   PotionPurple,
	PairOf(MeaningAether, MeaningVazio):  PotionWhite,
	PairOf(MeaningRuna, MeaningVazio):    PotionPink,
}

// PotionOutcome is the result of resolving or brewing a potion.
type PotionOutcome struct {
	Color       *PotionColor `json:"color,omitempty"`
	ManaCost    int          `json:"manaCost"`
	Description string       `json:"description"`
	Success     bool         `json:"success"`
}

// ResolvePotion looks up the potion color produced by combining two meanings.
func ResolvePotion(m1, m2 Meaning) PotionOutcome {
	color, ok := potionCombinations[PairOf(m1, m2)]
	if !ok {
		return PotionOutcome{Description: "This combination does not brew a potion."}
	}
	return PotionOutcome{
		Color:       &color,
		ManaCost:    PotionBrewCost,
		Description: color.String() + " potion brewed",
		Success:     true,
	}
}
