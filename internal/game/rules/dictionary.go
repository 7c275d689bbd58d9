package rules

import "math/rand"

// WordDictionary maps every power word to its meaning for one match.
type WordDictionary map[PowerWord]Meaning

// PotionDictionary maps every potion color to its effect for one match.
type PotionDictionary map[PotionColor]PotionEffect

// NewWordDictionary draws a uniformly random bijection between power words and meanings.
func NewWordDictionary(rng *rand.Rand) WordDictionary {
	perm := rng.Perm(len(AllMeanings))
	dict := make(WordDictionary, len(AllPowerWords))
	for i, word := range AllPowerWords {
		dict[word] = AllMeanings[perm[i]]
	}
	return dict
}

// NewPotionDictionary draws a uniformly random bijection between potion colors and effects.
func NewPotionDictionary(rng *rand.Rand) PotionDictionary {
	perm := rng.Perm(len(AllPotionEffects))
	dict := make(PotionDictionary, len(AllPotionColors))
	for i, color := range AllPotionColors {
		dict[color] = AllPotionEffects[perm[i]]
	}
	return dict
}

// MeaningOf returns the meaning bound to word. The boolean is false only when
// the dictionary is not total, which never happens for generated dictionaries.
func (d WordDictionary) MeaningOf(word PowerWord) (Meaning, bool) {
	m, ok := d[word]
	return m, ok
}

// EffectOf returns the effect bound to color.
func (d PotionDictionary) EffectOf(color PotionColor) (PotionEffect, bool) {
	e, ok := d[color]
	return e, ok
}

// IsBijection reports whether the dictionary covers every power word and
// every meaning exactly once.
func (d WordDictionary) IsBijection() bool {
	if len(d) != len(AllPowerWords) {
		return false
	}
	seen := make(map[Meaning]bool, len(d))
	for _, word := range AllPowerWords {
		m, ok := d[word]
		if !ok || seen[m] {
			return false
		}
		seen[m] = true
	}
	return true
}

// IsBijection reports whether the dictionary covers every color and every
// effect exactly once.
func (d PotionDictionary) IsBijection() bool {
	if len(d) != len(AllPotionColors) {
		return false
	}
	seen := make(map[PotionEffect]bool, len(d))
	for _, color := range AllPotionColors {
		e, ok := d[color]
		if !ok || seen[e] {
			return false
		}
		seen[e] = true
	}
	return true
}
