package seeds

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// SeedEntry is one predefined search.
type SeedEntry struct {
	Tag   string `yaml:"tag"`
	Query string `yaml:"query"`
}

// SeedFile is the root of a seed file. Two shapes are accepted:
//
//	searches:            # list form, keeps file order
//	  - tag: news
//	    query: weather
//
//	searches:            # mapping form
//	  news: weather
type SeedFile struct {
	Searches SeedList `yaml:"searches"`
}

// SeedList decodes either a sequence of SeedEntry or a tag: query mapping.
type SeedList []SeedEntry

func (l *SeedList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		var entries []SeedEntry
		if err := node.Decode(&entries); err != nil {
			return err
		}
		*l = entries
		return nil

	case yaml.MappingNode:
		// Walk the node pairs instead of decoding into a map to keep file order.
		entries := make([]SeedEntry, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			var e SeedEntry
			if err := node.Content[i].Decode(&e.Tag); err != nil {
				return err
			}
			if err := node.Content[i+1].Decode(&e.Query); err != nil {
				return err
			}
			entries = append(entries, e)
		}
		*l = entries
		return nil

	default:
		return fmt.Errorf("searches: expected a list or a mapping, got line %d", node.Line)
	}
}
