package scoring

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Leaderboard manages the best-of-N rankings and their persistence.
type Leaderboard struct {
	storage ScoreStorage // The interface for loading/saving rankings.
	logger  *zap.Logger
	entries []RankingEntry
}

// LoadLeaderboard creates a Leaderboard from the rankings held in storage.
// Stored data that cannot be read is treated as absent: the leaderboard
// starts empty and the failure is logged.
func LoadLeaderboard(storage ScoreStorage, logger *zap.Logger) *Leaderboard {
	if logger == nil {
		logger = zap.NewNop()
	}
	lb := &Leaderboard{
		storage: storage,
		logger:  logger,
	}

	stored, err := storage.LoadAll()
	if err != nil {
		logger.Warn("discarding unreadable rankings",
			zap.Error(err),
			zap.Bool("corrupt", errors.Is(err, ErrCorrupt)),
		)
		return lb
	}

	valid := make([]RankingEntry, 0, len(stored))
	for _, entry := range stored {
		if err := entry.Validate(); err != nil {
			logger.Warn("discarding unreadable rankings", zap.Error(err))
			return lb
		}
		valid = append(valid, entry)
	}
	lb.entries = rank(valid)

	logger.Debug("rankings loaded", zap.Int("entries", len(lb.entries)))
	return lb
}

// Record adds a finished round, keeps the best MaxEntries rankings and
// persists the full resulting list. The in-memory leaderboard is updated
// even when persisting fails.
func (lb *Leaderboard) Record(name string, moves int) error {
	entry := RankingEntry{Name: strings.TrimSpace(name), Moves: moves}
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("could not record score: %w", err)
	}

	lb.entries = rank(append(lb.Entries(), entry))

	if err := lb.storage.SaveAll(lb.Entries()); err != nil {
		lb.logger.Error("could not persist rankings", zap.Error(err))
		return fmt.Errorf("could not save rankings: %w", err)
	}

	lb.logger.Info("score recorded",
		zap.String("name", entry.Name),
		zap.Int("moves", entry.Moves),
		zap.Int("rank", lb.RankOf(entry)),
	)
	return nil
}

// Entries returns a copy of the rankings, best first.
func (lb *Leaderboard) Entries() []RankingEntry {
	out := make([]RankingEntry, len(lb.entries))
	copy(out, lb.entries)
	return out
}

// Top returns at most n rankings, best first.
func (lb *Leaderboard) Top(n int) []RankingEntry {
	entries := lb.Entries()
	if n < 0 {
		n = 0
	}
	if len(entries) < n {
		return entries
	}
	return entries[:n]
}

// Best returns the lowest recorded move count, or nil for an empty leaderboard.
func (lb *Leaderboard) Best() *RankingEntry {
	if len(lb.entries) == 0 {
		return nil
	}
	best := lb.entries[0]
	return &best
}

// Qualifies reports whether a round finished in moves would make the leaderboard.
func (lb *Leaderboard) Qualifies(moves int) bool {
	if moves <= 0 {
		return false
	}
	if len(lb.entries) < MaxEntries {
		return true
	}
	return moves < lb.entries[len(lb.entries)-1].Moves
}

// RankOf returns the 1-based position of entry, or 0 when it is not ranked.
func (lb *Leaderboard) RankOf(entry RankingEntry) int {
	for i := len(lb.entries) - 1; i >= 0; i-- {
		if lb.entries[i] == entry {
			return i + 1
		}
	}
	return 0
}
