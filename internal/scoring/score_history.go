package scoring

import (
	"fmt"
	"sort"
	"strings"
)

// MaxEntries is the number of rankings kept on the leaderboard.
const MaxEntries = 5

// RankingEntry is a single finished round on the leaderboard.
type RankingEntry struct {
	Name  string `json:"name"`
	Moves int    `json:"moves"`
}

// Validate reports whether the entry could have been produced by a real round.
func (e RankingEntry) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("ranking entry has an empty name")
	}
	if e.Moves <= 0 {
		return fmt.Errorf("ranking entry %q has invalid moves %d", e.Name, e.Moves)
	}
	return nil
}

// rank sorts entries ascending by moves and caps them at MaxEntries.
// Ties keep their insertion order, so an earlier score stays ahead.
func rank(entries []RankingEntry) []RankingEntry {
	ranked := make([]RankingEntry, len(entries))
	copy(ranked, entries)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Moves < ranked[j].Moves
	})

	if len(ranked) > MaxEntries {
		ranked = ranked[:MaxEntries]
	}
	return ranked
}
