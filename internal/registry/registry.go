// Package registry holds the authoritative in-memory view of saved searches:
// the case-insensitively sorted tag list and the tag -> record map, kept in
// step with a store.Store.
//
// A Registry starts Uninitialized. Initialize loads the store and makes it
// Ready; mutations before that fail with ErrNotReady and reads return
// nothing. Every mutation writes through to the store, updates memory and
// then notifies subscribers. Store failures are logged, never rolled back.
package registry

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/MrSnakeDoc/tagsearch/internal/domain"
	"github.com/MrSnakeDoc/tagsearch/internal/logger"
	"github.com/MrSnakeDoc/tagsearch/internal/store"
)

// ErrNotReady is returned by mutations issued before Initialize succeeded.
var ErrNotReady = errors.New("search registry is not initialized")

// Entry is one saved search as shown in the list.
type Entry struct {
	Tag    string // display spelling, also the store key
	Record domain.SearchRecord
}

// Registry is safe for concurrent use. Initialize, Save, SaveIfAbsent and
// Delete run one at a time; reads share a read lock and never observe the
// tag list and the record map out of sync.
type Registry struct {
	opMu    sync.Mutex // serializes Initialize and the mutations
	mu      sync.RWMutex
	store   store.Store
	logger  logger.Logger
	now     func() time.Time
	ready   bool
	order   []string            // display tags, sorted with domain.CompareTags
	records map[string]Entry    // domain.TagKey(tag) -> entry
	shadows map[string][]string // domain.TagKey(tag) -> stored spellings ignored at load

	subs subscribers
}

// Option customizes a Registry.
type Option func(*Registry)

// WithClock replaces time.Now for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// New creates an uninitialized registry over s.
func New(s store.Store, log logger.Logger, opts ...Option) *Registry {
	r := &Registry{
		store:   s,
		logger:  log.With(logger.String("component", "registry")),
		now:     time.Now,
		records: make(map[string]Entry),
		shadows: make(map[string][]string),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Initialize loads every stored search and makes the registry Ready.
// Malformed values are kept with empty fields. When two stored tags differ
// only by case, the byte-wise smallest spelling wins; the others stay in the
// store until the tag is deleted. Calling Initialize again reloads from the
// store.
func (r *Registry) Initialize(ctx context.Context) error {
	r.opMu.Lock()

	raw, err := r.store.LoadAll(ctx)
	if err != nil {
		r.opMu.Unlock()
		return err
	}

	tags := make([]string, 0, len(raw))
	for tag := range raw {
		tags = append(tags, tag)
	}
	slices.Sort(tags)

	records := make(map[string]Entry, len(tags))
	shadows := make(map[string][]string)
	order := make([]string, 0, len(tags))
	for _, tag := range tags {
		rec, err := domain.DecodeRecord(raw[tag])
		if err != nil {
			r.logger.Warn("malformed stored search, loading with empty fields",
				logger.String("tag", tag),
				logger.Error(err))
		}

		key := domain.TagKey(tag)
		if kept, dup := records[key]; dup {
			r.logger.Warn("duplicate tag differing only by case, ignoring",
				logger.String("tag", tag),
				logger.String("kept", kept.Tag))
			shadows[key] = append(shadows[key], tag)
			continue
		}

		records[key] = Entry{Tag: tag, Record: rec}
		order = append(order, tag)
	}
	domain.SortTags(order)

	r.mu.Lock()
	r.records = records
	r.shadows = shadows
	r.order = order
	r.ready = true
	r.mu.Unlock()
	r.opMu.Unlock()

	r.logger.Info("search registry ready", logger.Int("count", len(order)))
	r.subs.notify(ChangeEvent{Type: ChangeReloaded, Count: len(order)})
	return nil
}

// Ready reports whether Initialize has succeeded.
func (r *Registry) Ready() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.ready
}

// Save stores query under tag with the current time, always overwriting
// the previous record. A tag that matches an existing one case-insensitively
// updates that entry in place and keeps its original spelling.
//
// An empty tag or query is ignored: the current record (zero if absent) is
// returned and nothing is written.
func (r *Registry) Save(ctx context.Context, tag, query string) (domain.SearchRecord, error) {
	e, _, err := r.Upsert(ctx, tag, query)
	return e.Record, err
}

// Upsert is Save that also returns the resulting entry and whether it was
// created rather than updated.
func (r *Registry) Upsert(ctx context.Context, tag, query string) (Entry, bool, error) {
	r.opMu.Lock()
	e, ev, err := r.upsert(ctx, tag, query, true)
	r.opMu.Unlock()

	if ev == nil {
		return e, false, err
	}
	r.subs.notify(*ev)
	return e, ev.Type == ChangeAdded, err
}

// SaveIfAbsent saves query under tag only when no entry with the same key
// exists yet. It reports whether a new entry was created.
func (r *Registry) SaveIfAbsent(ctx context.Context, tag, query string) (bool, error) {
	r.opMu.Lock()
	_, ev, err := r.upsert(ctx, tag, query, false)
	r.opMu.Unlock()

	if ev == nil {
		return false, err
	}
	r.subs.notify(*ev)
	return true, nil
}

// upsert applies one save. Called with opMu held, so the state read under
// the read lock cannot change before it is replaced. The returned event is
// nil when nothing changed.
func (r *Registry) upsert(ctx context.Context, tag, query string, overwrite bool) (Entry, *ChangeEvent, error) {
	r.mu.RLock()
	ready := r.ready
	key := domain.TagKey(tag)
	existing, exists := r.records[key]
	r.mu.RUnlock()

	if !ready {
		return Entry{}, nil, ErrNotReady
	}
	if tag == "" || query == "" {
		r.logger.Debug("ignoring save with empty tag or query",
			logger.String("tag", tag),
			logger.Bool("empty_query", query == ""))
		return existing, nil, nil
	}
	if exists && !overwrite {
		return existing, nil, nil
	}

	entry := Entry{Tag: tag, Record: domain.NewSearchRecord(query, r.now())}
	if exists {
		entry.Tag = existing.Tag
	}
	r.persist(ctx, entry)

	r.mu.Lock()
	r.records[key] = entry
	if !exists {
		r.order = domain.InsertTag(r.order, entry.Tag)
	}
	ev := &ChangeEvent{Type: ChangeUpdated, Tag: entry.Tag, Count: len(r.order)}
	r.mu.Unlock()

	if !exists {
		ev.Type = ChangeAdded
	}
	return entry, ev, nil
}

// persist writes one entry through to the store.
func (r *Registry) persist(ctx context.Context, e Entry) {
	raw, err := domain.EncodeRecord(e.Record)
	if err != nil {
		r.logger.Error("failed to encode search", logger.String("tag", e.Tag), logger.Error(err))
		return
	}
	if err := r.store.Put(ctx, e.Tag, raw); err != nil {
		r.logger.Error("failed to persist search, memory and store may diverge",
			logger.String("tag", e.Tag),
			logger.Error(err))
	}
}

// Delete removes tag (matched case-insensitively) together with any stored
// spelling of it ignored at load. Deleting an unknown tag changes nothing
// and is not an error.
func (r *Registry) Delete(ctx context.Context, tag string) error {
	r.opMu.Lock()
	ev, err := r.remove(ctx, tag)
	r.opMu.Unlock()

	if ev != nil {
		r.subs.notify(*ev)
	}
	return err
}

// remove is Delete with opMu held.
func (r *Registry) remove(ctx context.Context, tag string) (*ChangeEvent, error) {
	r.mu.RLock()
	ready := r.ready
	key := domain.TagKey(tag)
	existing, exists := r.records[key]
	storeTags := append([]string{tag}, r.shadows[key]...)
	r.mu.RUnlock()

	if !ready {
		return nil, ErrNotReady
	}
	if exists {
		storeTags[0] = existing.Tag
	}

	for _, t := range storeTags {
		if err := r.store.Remove(ctx, t); err != nil {
			r.logger.Error("failed to remove search from store, memory and store may diverge",
				logger.String("tag", t),
				logger.Error(err))
		}
	}

	if !exists {
		return nil, nil
	}

	r.mu.Lock()
	delete(r.records, key)
	delete(r.shadows, key)
	r.order = domain.RemoveTag(r.order, existing.Tag)
	ev := &ChangeEvent{Type: ChangeDeleted, Tag: existing.Tag, Count: len(r.order)}
	r.mu.Unlock()

	return ev, nil
}

// Lookup returns the record saved under tag.
func (r *Registry) Lookup(tag string) (domain.SearchRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.ready {
		r.logger.Error("lookup before initialize", logger.String("tag", tag))
		return domain.SearchRecord{}, false
	}

	e, ok := r.records[domain.TagKey(tag)]
	return e.Record, ok
}

// Get returns the full entry (display tag + record) for tag.
func (r *Registry) Get(tag string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.ready {
		r.logger.Error("get before initialize", logger.String("tag", tag))
		return Entry{}, false
	}

	e, ok := r.records[domain.TagKey(tag)]
	return e, ok
}

// ListTags returns a copy of the sorted tag list.
func (r *Registry) ListTags() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.ready {
		r.logger.Error("list before initialize")
		return nil
	}
	return slices.Clone(r.order)
}

// Entries returns every saved search in list order.
func (r *Registry) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.ready {
		r.logger.Error("list before initialize")
		return nil
	}

	out := make([]Entry, 0, len(r.order))
	for _, tag := range r.order {
		out = append(out, r.records[domain.TagKey(tag)])
	}
	return out
}

// Len returns the number of saved searches.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.order)
}

// Subscribe registers fn for change notifications. Callbacks run
// synchronously after the mutation is applied, outside the registry lock.
// The returned func removes the subscription.
func (r *Registry) Subscribe(fn func(ChangeEvent)) (unsubscribe func()) {
	return r.subs.add(fn)
}
