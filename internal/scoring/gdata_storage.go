package scoring

import (
	"fmt"

	"github.com/quasilyte/gdata"
)

// GDataItemKey is the gdata item the leaderboard is stored under.
const GDataItemKey = "rankings"

// itemStore is the part of gdata.Manager the leaderboard needs.
type itemStore interface {
	LoadItem(itemKey string) ([]byte, error)
	SaveItem(itemKey string, data []byte) error
}

// GDataStorage keeps the leaderboard in the per-user game data store
// managed by gdata, under a single fixed item key.
type GDataStorage struct {
	items itemStore
}

// NewGDataStorage opens the gdata store for appName.
func NewGDataStorage(appName string) (*GDataStorage, error) {
	m, err := gdata.Open(gdata.Config{
		AppName: appName,
	})
	if err != nil {
		return nil, fmt.Errorf("could not open game data store: %w", err)
	}
	return &GDataStorage{items: m}, nil
}

func (g *GDataStorage) LoadAll() ([]RankingEntry, error) {
	data, err := g.items.LoadItem(GDataItemKey)
	if err != nil {
		return nil, fmt.Errorf("error reading rankings item: %w", err)
	}
	// A missing item comes back as nil data.
	return decodeRankings(data)
}

func (g *GDataStorage) SaveAll(entries []RankingEntry) error {
	data, err := encodeRankings(entries)
	if err != nil {
		return err
	}
	if err := g.items.SaveItem(GDataItemKey, data); err != nil {
		return fmt.Errorf("error writing rankings item: %w", err)
	}
	return nil
}
