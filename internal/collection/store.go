// Package collection holds the live set of learnable items keyed by UID.
package collection

import (
	stderrors "errors"
	"fmt"
	"sort"
	"sync"

	"github.com/vytor/recall/internal/models"
)

var (
	// ErrNotFound is returned when no item has the requested UID.
	ErrNotFound = stderrors.New("collection: item not found")
	// ErrDuplicate is returned by Add when the UID is already present.
	ErrDuplicate = stderrors.New("collection: duplicate uid")
	// ErrInvalidItem is returned for items without a well-formed UID.
	ErrInvalidItem = stderrors.New("collection: invalid item")
)

// EventType names a kind of change.
type EventType string

const (
	EventAdded   EventType = "added"
	EventUpdated EventType = "updated"
	EventRemoved EventType = "removed"
	EventLoaded  EventType = "loaded"
)

// Event describes one mutation. Item is a copy taken after the change; for
// EventRemoved it is the item as it was before removal, for EventLoaded it is nil.
type Event struct {
	Type    EventType
	UID     string
	Item    *models.Item
	Version uint64
}

// Handler receives change events. Handlers run synchronously after the store
// lock has been released and must not block for long.
type Handler func(Event)

// Store is a concurrency-safe item collection. Callers never hold pointers into
// the store: everything going in or out is copied.
type Store struct {
	mu       sync.RWMutex
	items    map[string]*models.Item
	version  uint64
	handlers []Handler
	hmu      sync.RWMutex
}

// New returns an empty store.
func New() *Store {
	return &Store{items: make(map[string]*models.Item)}
}

// Subscribe registers fn for every later change.
func (s *Store) Subscribe(fn Handler) {
	if fn == nil {
		return
	}
	s.hmu.Lock()
	s.handlers = append(s.handlers, fn)
	s.hmu.Unlock()
}

func (s *Store) emit(ev Event) {
	s.hmu.RLock()
	handlers := make([]Handler, len(s.handlers))
	copy(handlers, s.handlers)
	s.hmu.RUnlock()

	for _, h := range handlers {
		h(ev)
	}
}

// Add inserts a copy of item. Tags are normalized and the priority clamped.
func (s *Store) Add(item *models.Item) error {
	if item == nil || !models.ValidUID(item.UID) {
		return ErrInvalidItem
	}
	c := prepare(item)

	s.mu.Lock()
	if _, ok := s.items[c.UID]; ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrDuplicate, c.UID)
	}
	s.items[c.UID] = c
	s.version++
	ev := Event{Type: EventAdded, UID: c.UID, Item: c.Clone(), Version: s.version}
	s.mu.Unlock()

	s.emit(ev)
	return nil
}

// Put inserts or replaces item and reports whether it already existed.
func (s *Store) Put(item *models.Item) (bool, error) {
	if item == nil || !models.ValidUID(item.UID) {
		return false, ErrInvalidItem
	}
	c := prepare(item)

	s.mu.Lock()
	_, existed := s.items[c.UID]
	s.items[c.UID] = c
	s.version++
	typ := EventAdded
	if existed {
		typ = EventUpdated
	}
	ev := Event{Type: typ, UID: c.UID, Item: c.Clone(), Version: s.version}
	s.mu.Unlock()

	s.emit(ev)
	return existed, nil
}

// Get returns a copy of the item with uid.
func (s *Store) Get(uid string) (*models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.items[uid]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, uid)
	}
	return it.Clone(), nil
}

// Contains reports whether uid is a member of the collection.
func (s *Store) Contains(uid string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.items[uid]
	return ok
}

// Update runs fn on a copy of the item and stores the result if fn returns nil.
// The UID cannot be changed by fn. The updated copy is returned. If fn panics the
// item is left untouched and the panic propagates.
func (s *Store) Update(uid string, fn func(*models.Item) error) (*models.Item, error) {
	ev, err := s.update(uid, fn)
	if err != nil {
		return nil, err
	}
	s.emit(ev)
	return ev.Item.Clone(), nil
}

func (s *Store) update(uid string, fn func(*models.Item) error) (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.items[uid]
	if !ok {
		return Event{}, fmt.Errorf("%w: %s", ErrNotFound, uid)
	}
	work := cur.Clone()
	if err := fn(work); err != nil {
		return Event{}, err
	}
	work.UID = uid
	work.Tags = models.NormalizeTags(work.Tags)
	work.Priority = models.ClampPriority(work.Priority)
	s.items[uid] = work
	s.version++
	return Event{Type: EventUpdated, UID: uid, Item: work.Clone(), Version: s.version}, nil
}

// Remove deletes the item with uid and returns the removed copy.
func (s *Store) Remove(uid string) (*models.Item, error) {
	s.mu.Lock()
	cur, ok := s.items[uid]
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrNotFound, uid)
	}
	delete(s.items, uid)
	s.version++
	ev := Event{Type: EventRemoved, UID: uid, Item: cur, Version: s.version}
	s.mu.Unlock()

	s.emit(ev)
	return cur.Clone(), nil
}

// Snapshot returns deep copies of every item, ordered by UID.
func (s *Store) Snapshot() []*models.Item {
	s.mu.RLock()
	out := make([]*models.Item, 0, len(s.items))
	for _, it := range s.items {
		out = append(out, it.Clone())
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].UID < out[j].UID })
	return out
}

// Len returns the number of items.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Version increases by one on every successful mutation.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Load replaces the whole collection. Items with malformed UIDs are skipped and
// counted in the returned value.
func (s *Store) Load(items []*models.Item) (skipped int) {
	next := make(map[string]*models.Item, len(items))
	for _, it := range items {
		if it == nil || !models.ValidUID(it.UID) {
			skipped++
			continue
		}
		next[it.UID] = prepare(it)
	}

	s.mu.Lock()
	s.items = next
	s.version++
	ev := Event{Type: EventLoaded, Version: s.version}
	s.mu.Unlock()

	s.emit(ev)
	return skipped
}

func prepare(item *models.Item) *models.Item {
	c := item.Clone()
	c.Tags = models.NormalizeTags(c.Tags)
	c.Priority = models.ClampPriority(c.Priority)
	return c
}
