package rules

import (
	"fmt"
	"strings"
)

// PowerWord is one of the six spoken tokens players combine.
type PowerWord int

const (
	WordYngvy PowerWord = iota
	WordVorlag
	WordHarkon
	WordAelith
	WordPhaeton
	WordSarthel
)

var powerWordNames = map[PowerWord]string{
	WordYngvy:   "YNGVY",
	WordVorlag:  "VORLAG",
	WordHarkon:  "HARKON",
	WordAelith:  "AELITH",
	WordPhaeton: "PHAETON",
	WordSarthel: "SARTHEL",
}

// AllPowerWords lists every power word in declaration order.
var AllPowerWords = []PowerWord{WordYngvy, WordVorlag, WordHarkon, WordAelith, WordPhaeton, WordSarthel}

func (w PowerWord) String() string {
	if name, ok := powerWordNames[w]; ok {
		return name
	}
	return fmt.Sprintf("WORD_%d", int(w))
}

// Meaning is the hidden translation of a power word. The declaration order is
// the canonical order used to key combination tables.
type Meaning int

const (
	MeaningAether Meaning = iota
	MeaningRuna
	MeaningNexus
	MeaningSombra
	MeaningForja
	MeaningVazio
)

var meaningNames = map[Meaning]string{
	MeaningAether: "AETHER",
	MeaningRuna:   "RUNA",
	MeaningNexus:  "NEXUS",
	MeaningSombra: "SOMBRA",
	MeaningForja:  "FORJA",
	MeaningVazio:  "VAZIO",
}

// AllMeanings lists every meaning in canonical order.
var AllMeanings = []Meaning{MeaningAether, MeaningRuna, MeaningNexus, MeaningSombra, MeaningForja, MeaningVazio}

func (m Meaning) String() string {
	if name, ok := meaningNames[m]; ok {
		return name
	}
	return fmt.Sprintf("MEANING_%d", int(m))
}

// PotionColor identifies a brewed potion. Its effect is hidden behind the
// per-match potion dictionary.
type PotionColor int

const (
	PotionPink PotionColor = iota
	PotionGreen
	PotionBlue
	PotionRed
	PotionWhite
	PotionPurple
)

var potionColorNames = map[PotionColor]string{
	PotionPink:   "PINK",
	PotionGreen:  "GREEN",
	PotionBlue:   "BLUE",
	PotionRed:    "RED",
	PotionWhite:  "WHITE",
	PotionPurple: "PURPLE",
}

// Legacy clients send the Portuguese color names.
var potionColorAliases = map[string]PotionColor{
	"ROSA":     PotionPink,
	"VERDE":    PotionGreen,
	"AZUL":     PotionBlue,
	"VERMELHA": PotionRed,
	"BRANCA":   PotionWhite,
	"ROXA":     PotionPurple,
}

// AllPotionColors lists every potion color in declaration order.
var AllPotionColors = []PotionColor{PotionPink, PotionGreen, PotionBlue, PotionRed, PotionWhite, PotionPurple}

func (c PotionColor) String() string {
	if name, ok := potionColorNames[c]; ok {
		return name
	}
	return fmt.Sprintf("POTION_%d", int(c))
}

// PotionEffect is what drinking a potion does.
type PotionEffect int

const (
	EffectHeal PotionEffect = iota
	EffectManaRestore
	EffectShieldBoost
	EffectManaDrain
	EffectLifeCorruption
	EffectShieldBreak
)

var potionEffectNames = map[PotionEffect]string{
	EffectHeal:           "HEAL",
	EffectManaRestore:    "MANA_RESTORE",
	EffectShieldBoost:    "SHIELD_BOOST",
	EffectManaDrain:      "MANA_DRAIN",
	EffectLifeCorruption: "LIFE_CORRUPTION",
	EffectShieldBreak:    "SHIELD_BREAK",
}

// AllPotionEffects lists every potion effect in declaration order.
var AllPotionEffects = []PotionEffect{EffectHeal, EffectManaRestore, EffectShieldBoost, EffectManaDrain, EffectLifeCorruption, EffectShieldBreak}

func (e PotionEffect) String() string {
	if name, ok := potionEffectNames[e]; ok {
		return name
	}
	return fmt.Sprintf("EFFECT_%d", int(e))
}

// Glyph is an exploration token.
type Glyph int

const (
	Glyph1 Glyph = iota
	Glyph2
	Glyph3
	Glyph4
)

var glyphNames = map[Glyph]string{
	Glyph1: "GLYPH_1",
	Glyph2: "GLYPH_2",
	Glyph3: "GLYPH_3",
	Glyph4: "GLYPH_4",
}

var glyphAliases = map[string]Glyph{
	"GLIFO_1": Glyph1,
	"GLIFO_2": Glyph2,
	"GLIFO_3": Glyph3,
	"GLIFO_4": Glyph4,
}

// AllGlyphs lists every glyph type.
var AllGlyphs = []Glyph{Glyph1, Glyph2, Glyph3, Glyph4}

func (g Glyph) String() string {
	if name, ok := glyphNames[g]; ok {
		return name
	}
	return fmt.Sprintf("GLYPH_%d", int(g)+1)
}

// ErrUnknownToken is returned by the Parse functions for unrecognized literals.
type ErrUnknownToken struct {
	Kind  string
	Token string
}

func (e *ErrUnknownToken) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Kind, e.Token)
}

func parseName[T comparable](kind, token string, names map[T]string) (T, error) {
	normalized := strings.ToUpper(strings.TrimSpace(token))
	for value, name := range names {
		if name == normalized {
			return value, nil
		}
	}
	var zero T
	return zero, &ErrUnknownToken{Kind: kind, Token: token}
}

// parseAliased is parseName with a fallback to alternative spellings. Aliases
// are accepted on input only; String always returns the canonical name.
func parseAliased[T comparable](kind, token string, names map[T]string, aliases map[string]T) (T, error) {
	value, err := parseName(kind, token, names)
	if err == nil {
		return value, nil
	}
	if alias, ok := aliases[strings.ToUpper(strings.TrimSpace(token))]; ok {
		return alias, nil
	}
	return value, err
}

// ParsePowerWord translates a case-insensitive token into a PowerWord.
func ParsePowerWord(token string) (PowerWord, error) {
	return parseName("power word", token, powerWordNames)
}

// ParseMeaning translates a case-insensitive name into a Meaning.
func ParseMeaning(token string) (Meaning, error) {
	return parseName("meaning", token, meaningNames)
}

// ParsePotionColor translates a case-insensitive name, or its legacy
// Portuguese alias, into a PotionColor.
func ParsePotionColor(token string) (PotionColor, error) {
	return parseAliased("potion color", token, potionColorNames, potionColorAliases)
}

// ParsePotionEffect translates a case-insensitive name into a PotionEffect.
func ParsePotionEffect(token string) (PotionEffect, error) {
	return parseName("potion effect", token, potionEffectNames)
}

// ParseGlyph translates a case-insensitive name, or GLIFO_n, into a Glyph.
func ParseGlyph(token string) (Glyph, error) {
	return parseAliased("glyph", token, glyphNames, glyphAliases)
}

// Text encoding keeps snapshots readable and lets the enums act as JSON map keys.

func (w PowerWord) MarshalText() ([]byte, error) { return []byte(w.String()), nil }

func (w *PowerWord) UnmarshalText(text []byte) error {
	v, err := ParsePowerWord(string(text))
	if err != nil {
		return err
	}
	*w = v
	return nil
}

func (m Meaning) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Meaning) UnmarshalText(text []byte) error {
	v, err := ParseMeaning(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

func (c PotionColor) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *PotionColor) UnmarshalText(text []byte) error {
	v, err := ParsePotionColor(string(text))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

func (e PotionEffect) MarshalText() ([]byte, error) { return []byte(e.String()), nil }

func (e *PotionEffect) UnmarshalText(text []byte) error {
	v, err := ParsePotionEffect(string(text))
	if err != nil {
		return err
	}
	*e = v
	return nil
}

func (g Glyph) MarshalText() ([]byte, error) { return []byte(g.String()), nil }

func (g *Glyph) UnmarshalText(text []byte) error {
	v, err := ParseGlyph(string(text))
	if err != nil {
		return err
	}
	*g = v
	return nil
}
