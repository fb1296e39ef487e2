package scoring

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// StorageKey is the fixed name the leaderboard is persisted under.
const StorageKey = "rankings.json"

// ErrCorrupt is returned by LoadAll when the stored leaderboard cannot be decoded.
var ErrCorrupt = errors.New("stored rankings are corrupt")

// ScoreStorage defines the interface for loading and saving the leaderboard.
// This allows for mocking the storage layer during tests.
type ScoreStorage interface {
	// LoadAll loads the stored leaderboard. A missing leaderboard is an empty slice.
	LoadAll() ([]RankingEntry, error)
	// SaveAll persists the full leaderboard, overwriting existing data.
	SaveAll(entries []RankingEntry) error
}

// JSONFileStorage is an implementation of ScoreStorage that keeps the
// leaderboard as a single JSON array in a file.
type JSONFileStorage struct {
	path string
}

// NewJSONFileStorage creates a JSONFileStorage under the user's config directory.
func NewJSONFileStorage() (*JSONFileStorage, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("could not get user config directory: %w", err)
	}
	return &JSONFileStorage{path: filepath.Join(configDir, "go-pairs", StorageKey)}, nil
}

// NewJSONFileStorageAt creates a JSONFileStorage backed by the given file.
func NewJSONFileStorageAt(path string) *JSONFileStorage {
	return &JSONFileStorage{path: path}
}

// Path returns the file the leaderboard is stored in.
func (jfs *JSONFileStorage) Path() string {
	return jfs.path
}

// LoadAll reads and decodes the leaderboard from the JSON file.
func (jfs *JSONFileStorage) LoadAll() ([]RankingEntry, error) {
	data, err := os.ReadFile(jfs.path)
	// If the file doesn't exist, it's not an error; return an empty slice.
	if errors.Is(err, os.ErrNotExist) {
		return []RankingEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading rankings file: %w", err)
	}

	return decodeRankings(data)
}

// decodeRankings parses a stored JSON array. Blank input is an empty list.
func decodeRankings(data []byte) ([]RankingEntry, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []RankingEntry{}, nil
	}

	entries := make([]RankingEntry, 0, MaxEntries)
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	for _, entry := range entries {
		if err := entry.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
	}

	return entries, nil
}

func encodeRankings(entries []RankingEntry) ([]byte, error) {
	if entries == nil {
		entries = []RankingEntry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("error encoding rankings: %w", err)
	}
	return append(data, '\n'), nil
}

// SaveAll encodes the leaderboard and replaces the JSON file with it.
func (jfs *JSONFileStorage) SaveAll(entries []RankingEntry) error {
	dir := filepath.Dir(jfs.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating rankings directory: %w", err)
	}

	data, err := encodeRankings(entries)
	if err != nil {
		return err
	}

	// Write next to the target and rename so readers never see a partial list.
	tmp, err := os.CreateTemp(dir, StorageKey+".*.tmp")
	if err != nil {
		return fmt.Errorf("error opening rankings file for writing: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("error writing rankings file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("error closing rankings file: %w", err)
	}
	if err := os.Rename(tmp.Name(), jfs.path); err != nil {
		return fmt.Errorf("error replacing rankings file: %w", err)
	}
	return nil
}

// MemoryStorage keeps the leaderboard in process memory.
type MemoryStorage struct {
	mu      sync.Mutex
	entries []RankingEntry
}

// NewMemoryStorage returns an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (m *MemoryStorage) LoadAll() ([]RankingEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]RankingEntry, len(m.entries))
	copy(out, m.entries)
	return out, nil
}

func (m *MemoryStorage) SaveAll(entries []RankingEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make([]RankingEntry, len(entries))
	copy(m.entries, entries)
	return nil
}
