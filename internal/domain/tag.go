package domain

import (
	"slices"
	"strings"
)

// TagKey returns the case-insensitive identity of a tag.
// Two tags with the same key are the same saved search.
//
// Upper-then-lower mirrors per-character case-insensitive ordering, so
// runes like 'ſ' and 'K' (Kelvin) collapse with their ASCII look-alikes.
func TagKey(tag string) string {
	return strings.ToLower(strings.ToUpper(tag))
}

// CompareTags orders tags case-insensitively, ascending.
// Tags with the same key fall back to a byte-wise comparison so the
// result is total and deterministic.
func CompareTags(a, b string) int {
	if c := strings.Compare(TagKey(a), TagKey(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

// SortTags sorts tags in place with CompareTags.
func SortTags(tags []string) {
	slices.SortFunc(tags, CompareTags)
}

// InsertTag inserts tag into an already sorted slice, keeping it sorted.
func InsertTag(tags []string, tag string) []string {
	i, _ := slices.BinarySearchFunc(tags, tag, CompareTags)
	return slices.Insert(tags, i, tag)
}

// RemoveTag removes the entry with the same key as tag from a sorted slice.
func RemoveTag(tags []string, tag string) []string {
	key := TagKey(tag)
	return slices.DeleteFunc(tags, func(t string) bool {
		return TagKey(t) == key
	})
}
