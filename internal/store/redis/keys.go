package redis

import "strings"

const (
	// DefaultNamespace prefixes every key written by the store.
	DefaultNamespace = "tagsearch"

	// searchesSuffix names the hash holding tag -> record.
	searchesSuffix = "searches"
)

// SearchesKey returns the Redis key of the hash that holds all saved searches.
// Each tag is a field of that hash, so a single HSET/HDEL is atomic.
func SearchesKey(namespace string) string {
	namespace = strings.TrimSuffix(strings.TrimSpace(namespace), ":")
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return namespace + ":" + searchesSuffix
}
