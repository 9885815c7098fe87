package document

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store is the in-memory document collection. Every operation either
// completes or leaves the collection untouched; callers get copies.
type Store struct {
	mu    sync.RWMutex
	docs  map[string]*Document
	order []string // insertion order
	now   func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore returns an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		docs: make(map[string]*Document),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewID returns a fresh document id.
func NewID() string {
	return "doc-" + uuid.NewString()
}

// Create adds a document. Missing id, status and timestamps are filled in.
func (s *Store) Create(doc Document) (Document, error) {
	if strings.TrimSpace(doc.ID) == "" {
		doc.ID = NewID()
	}
	if doc.Status == "" {
		doc.Status = StatusDraft
	}
	if _, err := ParseStatus(string(doc.Status)); err != nil {
		return Document{}, err
	}
	now := s.now()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	if doc.UpdatedAt.Before(doc.CreatedAt) {
		doc.UpdatedAt = doc.CreatedAt
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.docs[doc.ID]; exists {
		return Document{}, fmt.Errorf("%w: %s", ErrDuplicateID, doc.ID)
	}
	stored := doc
	s.docs[doc.ID] = &stored
	s.order = append(s.order, doc.ID)
	return stored, nil
}

// Get returns a copy of the document.
func (s *Store) Get(id string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.docs[id]
	if !ok {
		return Document{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return *d, nil
}

// Update applies mutate to a copy of the document and stores the result.
// Only Title and Content changes are kept; identity, status and timestamps
// are owned by the store. UpdatedAt is bumped when something changed.
func (s *Store) Update(id string, mutate func(*Document)) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[id]
	if !ok {
		return Document{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	next := *d
	mutate(&next)

	updated := *d
	updated.Title = next.Title
	updated.Content = next.Content
	if updated.Title == d.Title && updated.Content == d.Content {
		return *d, nil
	}
	updated.UpdatedAt = s.bump(d.UpdatedAt)
	*d = updated
	return updated, nil
}

// UpdateContent replaces the document body.
func (s *Store) UpdateContent(id, content string) (Document, error) {
	return s.Update(id, func(d *Document) { d.Content = content })
}

// SetStatus moves the document to a new status.
func (s *Store) SetStatus(id string, status Status) (Document, error) {
	if _, err := ParseStatus(string(status)); err != nil {
		return Document{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[id]
	if !ok {
		return Document{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if d.Status == status {
		return *d, nil
	}
	d.Status = status
	d.UpdatedAt = s.bump(d.UpdatedAt)
	return *d, nil
}

// Delete removes the document.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.docs, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// List returns all documents, most recently created first. Documents created
// at the same instant are ordered by insertion, newest first.
func (s *Store) List() []Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Document, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		out = append(out, *s.docs[s.order[i]])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Len reports how many documents are stored.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// bump returns the next UpdatedAt, strictly after prev even when the clock
// has not advanced.
func (s *Store) bump(prev time.Time) time.Time {
	now := s.now()
	if !now.After(prev) {
		return prev.Add(time.Nanosecond)
	}
	return now
}
