package registry

import "sync"

// ChangeType indicates the type of registry change.
type ChangeType int

const (
	// ChangeAdded indicates a new tag entered the list.
	ChangeAdded ChangeType = iota
	// ChangeUpdated indicates an existing tag got a new query/time.
	// The tag list itself is unchanged.
	ChangeUpdated
	// ChangeDeleted indicates a tag left the list.
	ChangeDeleted
	// ChangeReloaded indicates the whole list was (re)loaded from the store.
	ChangeReloaded
)

func (c ChangeType) String() string {
	switch c {
	case ChangeAdded:
		return "added"
	case ChangeUpdated:
		return "updated"
	case ChangeDeleted:
		return "deleted"
	case ChangeReloaded:
		return "reloaded"
	default:
		return "unknown"
	}
}

// Structural reports whether the tag list changed, i.e. a list view
// needs a full refresh.
func (c ChangeType) Structural() bool {
	return c != ChangeUpdated
}

// ChangeEvent signals registry content changes.
type ChangeEvent struct {
	Type  ChangeType
	Tag   string // empty for ChangeReloaded
	Count int    // number of saved searches after the change
}

type subscribers struct {
	mu   sync.Mutex
	next int
	fns  map[int]func(ChangeEvent)
}

func (s *subscribers) add(fn func(ChangeEvent)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fns == nil {
		s.fns = make(map[int]func(ChangeEvent))
	}
	id := s.next
	s.next++
	s.fns[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.fns, id)
	}
}

func (s *subscribers) notify(ev ChangeEvent) {
	s.mu.Lock()
	fns := make([]func(ChangeEvent), 0, len(s.fns))
	for _, fn := range s.fns {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
