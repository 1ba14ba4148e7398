package seeds

import (
	"fmt"

	"github.com/MrSnakeDoc/tagsearch/internal/domain"
)

// Seed is a validated search ready to be imported.
type Seed struct {
	Tag   string
	Query string
}

// Mapper converts a SeedFile to importable seeds
type Mapper struct{}

// NewMapper creates a new mapper instance
func NewMapper() *Mapper {
	return &Mapper{}
}

// MapSeeds drops entries with an empty tag or query and keeps the first of
// several entries naming the same tag (case-insensitively).
func (m *Mapper) MapSeeds(file SeedFile) ([]Seed, error) {
	var seeds []Seed
	seen := make(map[string]struct{}, len(file.Searches))

	for _, e := range file.Searches {
		// Template variables are stripped to "" so they land here too
		if e.Tag == "" || e.Query == "" {
			continue
		}

		key := domain.TagKey(e.Tag)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		seeds = append(seeds, Seed{Tag: e.Tag, Query: e.Query})
	}

	if len(seeds) == 0 {
		return nil, fmt.Errorf("no valid searches found in seed file")
	}

	return seeds, nil
}
