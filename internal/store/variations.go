// Package store holds the per-session editor collections: the ordered
// variation snapshots and the generation-task ledger. Both are
// process-lifetime only; nothing here is persisted.
package store

import (
	"errors"
	"sync"

	"github.com/avatarforge/api/internal/model"
)

var (
	// ErrIndexOutOfRange is returned when a variation index does not
	// name a current slot. The operation is a no-op.
	ErrIndexOutOfRange = errors.New("variation index out of range")

	// ErrStoreFull is returned when the snapshot capacity is exhausted.
	ErrStoreFull = errors.New("variation store full")

	// ErrStaleEdit is returned when an edit targeted a slot that is no
	// longer the active one. The edit is discarded.
	ErrStaleEdit = errors.New("edit targets a variation that is no longer active")
)

// DefaultMaxVariations bounds a session's snapshot count.
const DefaultMaxVariations = 64

// VariationStore owns an ordered sequence of character snapshots plus
// the active selection. Snapshots are never removed or reordered.
// Every value crossing the boundary is a copy, so callers can never
// mutate stored state through a returned snapshot.
type VariationStore struct {
	mu     sync.Mutex
	items  []model.CharacterState
	active int
	max    int
}

// NewVariationStore creates a store seeded with one initial snapshot,
// which becomes the active selection. max <= 0 uses
// DefaultMaxVariations.
func NewVariationStore(initial model.CharacterState, max int) *VariationStore {
	if max <= 0 {
		max = DefaultMaxVariations
	}
	return &VariationStore{
		items: []model.CharacterState{initial},
		max:   max,
	}
}

// Append adds a snapshot at the end and returns its index.
func (s *VariationStore) Append(m model.CharacterState) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.items) >= s.max {
		return 0, ErrStoreFull
	}
	s.items = append(s.items, m)
	return len(s.items) - 1, nil
}

// ReplaceAt overwrites the snapshot at index.
func (s *VariationStore) ReplaceAt(index int, m model.CharacterState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.items) {
		return ErrIndexOutOfRange
	}
	s.items[index] = m
	return nil
}

// ApplyEdit writes m into baseIndex only if it is still the active
// slot. Edits racing a selection change are discarded rather than
// applied to the wrong slot.
func (s *VariationStore) ApplyEdit(baseIndex int, m model.CharacterState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if baseIndex < 0 || baseIndex >= len(s.items) {
		return ErrIndexOutOfRange
	}
	if baseIndex != s.active {
		return ErrStaleEdit
	}
	s.items[baseIndex] = m
	return nil
}

// Get returns a copy of the snapshot at index.
func (s *VariationStore) Get(index int) (model.CharacterState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.items) {
		return model.CharacterState{}, ErrIndexOutOfRange
	}
	return s.items[index], nil
}

// SetActive selects a variation. An invalid index leaves the prior
// selection unchanged.
func (s *VariationStore) SetActive(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.items) {
		return ErrIndexOutOfRange
	}
	s.active = index
	return nil
}

// ActiveIndex returns the current selection.
func (s *VariationStore) ActiveIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Active returns a copy of the selected snapshot.
func (s *VariationStore) Active() model.CharacterState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items[s.active]
}

// Len returns the snapshot count.
func (s *VariationStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// List returns a copy of every snapshot in order.
func (s *VariationStore) List() []model.CharacterState {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.CharacterState, len(s.items))
	copy(out, s.items)
	return out
}
