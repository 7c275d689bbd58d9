package game

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/ultma/ultma-server-go/internal/game/rules"
)

// SnapshotVersion is bumped whenever the encoded match layout changes.
const SnapshotVersion = 1

// Checksum is a deterministic digest of a match snapshot. Stores keep it next
// to the encoded match and refuse snapshots that no longer match it.
type Checksum struct {
	Hash    string `json:"hash"`
	Version int    `json:"version"`
}

// ComputeChecksum hashes a canonical rendering of the match, independent of
// map iteration order.
func (m *Match) ComputeChecksum() (Checksum, error) {
	hash := sha256.New()
	if _, err := hash.Write([]byte(m.canonical())); err != nil {
		return Checksum{}, fmt.Errorf("failed to compute hash: %w", err)
	}
	return Checksum{Hash: hex.EncodeToString(hash.Sum(nil)), Version: SnapshotVersion}, nil
}

// VerifyChecksum reports whether the match still hashes to expected.
func (m *Match) VerifyChecksum(expected Checksum) (bool, error) {
	computed, err := m.ComputeChecksum()
	if err != nil {
		return false, fmt.Errorf("failed to compute checksum: %w", err)
	}
	return computed.Hash == expected.Hash, nil
}

func (m *Match) canonical() string {
	var buf bytes.Buffer

	turn, round := -1, 0
	if m.Arena != nil {
		turn, round = m.Arena.TurnIndex, m.Arena.Round
	}
	fmt.Fprintf(&buf, "MATCH:%s|%s|%d|%d\n", m.ID, m.Phase, turn, round)

	words := make([]string, 0, len(m.WordDictionary))
	for w, meaning := range m.WordDictionary {
		words = append(words, w.String()+"="+meaning.String())
	}
	sort.Strings(words)
	buf.WriteString("WORDS:" + strings.Join(words, ",") + "\n")

	potions := make([]string, 0, len(m.PotionDictionary))
	for c, effect := range m.PotionDictionary {
		potions = append(potions, c.String()+"="+effect.String())
	}
	sort.Strings(potions)
	buf.WriteString("POTIONS:" + strings.Join(potions, ",") + "\n")

	used := make([]string, 0, len(m.UsedGlyphs))
	for _, g := range m.UsedGlyphs {
		used = append(used, g.String())
	}
	sort.Strings(used)
	buf.WriteString("USED:" + strings.Join(used, ",") + "\n")

	// Player order is turn order, so it is hashed as stored.
	for _, p := range m.Players {
		pos := -1
		if p.ArenaPosition != nil {
			pos = *p.ArenaPosition
		}
		fmt.Fprintf(&buf, "PLAYER:%s|%s|%d|%d|%d|%t|%d|%d\n",
			p.ID, p.Name, p.LifeEnergy, p.MagicShield, p.Mana, p.Eliminated, pos, p.ActionsRemaining)
		buf.WriteString("  SPELLS:" + strings.Join(p.KnownSpells, ",") + "\n")
		buf.WriteString("  DEFENSES:" + strings.Join(p.ActiveDefenses, ",") + "\n")
		buf.WriteString("  POTIONS:" + joinPotions(p.Potions) + "\n")
		buf.WriteString("  GLYPHS:" + joinGlyphs(p.Glyphs) + "\n")
	}
	return buf.String()
}

func joinPotions(colors []rules.PotionColor) string {
	names := make([]string, len(colors))
	for i, c := range colors {
		names[i] = c.String()
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}

func joinGlyphs(glyphs []rules.Glyph) string {
	names := make([]string, len(glyphs))
	for i, g := range glyphs {
		names[i] = g.String()
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}

// Snapshot is the persisted form of a match.
type Snapshot struct {
	Checksum Checksum `json:"checksum"`
	Match    *Match   `json:"match"`
}

// EncodeSnapshot serializes m together with its checksum.
func EncodeSnapshot(m *Match) ([]byte, error) {
	sum, err := m.ComputeChecksum()
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(Snapshot{Checksum: sum, Match: m})
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot parses a snapshot, verifies its checksum and checks that both
// dictionaries are still bijections.
func DecodeSnapshot(data []byte) (*Match, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if snap.Match == nil {
		return nil, fmt.Errorf("snapshot has no match")
	}
	if snap.Checksum.Version != SnapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", snap.Checksum.Version)
	}
	ok, err := snap.Match.VerifyChecksum(snap.Checksum)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("checksum mismatch for match %s", snap.Match.ID)
	}
	if !snap.Match.WordDictionary.IsBijection() {
		return nil, fmt.Errorf("match %s has an incomplete word dictionary", snap.Match.ID)
	}
	if !snap.Match.PotionDictionary.IsBijection() {
		return nil, fmt.Errorf("match %s has an incomplete potion dictionary", snap.Match.ID)
	}
	return snap.Match, nil
}
