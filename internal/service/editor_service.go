package service

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/avatarforge/api/internal/geometry"
	"github.com/avatarforge/api/internal/model"
	"github.com/avatarforge/api/internal/store"
)

var (
	// ErrSessionNotFound is returned for an unknown session id.
	ErrSessionNotFound = errors.New("session not found")

	// ErrTooManySessions is returned when the session cap is reached.
	ErrTooManySessions = errors.New("session limit reached")
)

// Session is one editor session: the working character state, the
// variation snapshots, and the generation-task ledger. The working
// state is a copy; it propagates into the store only through explicit
// writes, never through aliasing.
type Session struct {
	ID         string
	Variations *store.VariationStore
	Tasks      *store.TaskLedger

	mu      sync.Mutex
	working model.CharacterState
}

// Working returns a copy of the session's working state.
func (s *Session) Working() model.CharacterState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.working
}

func (s *Session) setWorking(m model.CharacterState) {
	s.mu.Lock()
	s.working = m
	s.mu.Unlock()
}

// EditorService owns the session registry and serializes all mutation
// of editor state through its operations.
type EditorService struct {
	mu            sync.RWMutex
	sessions      map[string]*Session
	maxVariations int
	maxSessions   int
}

// NewEditorService creates the session registry. Caps <= 0 fall back
// to store and registry defaults.
func NewEditorService(maxVariations, maxSessions int) *EditorService {
	if maxSessions <= 0 {
		maxSessions = 1024
	}
	return &EditorService{
		sessions:      make(map[string]*Session),
		maxVariations: maxVariations,
		maxSessions:   maxSessions,
	}
}

// CreateSession opens a session seeded with the default character as
// its single, active variation.
func (s *EditorService) CreateSession() (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.sessions) >= s.maxSessions {
		return nil, ErrTooManySessions
	}

	initial := model.DefaultCharacter()
	sess := &Session{
		ID:         uuid.New().String(),
		Variations: store.NewVariationStore(initial, s.maxVariations),
		Tasks:      store.NewTaskLedger(),
		working:    initial,
	}
	s.sessions[sess.ID] = sess
	return sess, nil
}

// Session looks up a session by id.
func (s *EditorService) Session(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// UpdateCharacter merges a partial edit into the working state, clamps
// it, and writes it back to the variation slot the edit targeted. When
// baseIndex is nil the edit targets the currently active slot. A stale
// baseIndex discards the edit (store.ErrStaleEdit).
func (s *EditorService) UpdateCharacter(sessionID string, req *model.UpdateCharacterRequest) (model.CharacterState, error) {
	sess, err := s.Session(sessionID)
	if err != nil {
		return model.CharacterState{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	baseIndex := sess.Variations.ActiveIndex()
	if req.BaseIndex != nil {
		baseIndex = *req.BaseIndex
	}

	merged := model.Merge(sess.working, req.CharacterPatch)
	if err := sess.Variations.ApplyEdit(baseIndex, merged); err != nil {
		return model.CharacterState{}, err
	}

	sess.working = merged
	return merged, nil
}

// SelectVariation makes the given snapshot active and copies it into
// the working state. An invalid index leaves both untouched.
func (s *EditorService) SelectVariation(sessionID string, index int) (model.CharacterState, error) {
	sess, err := s.Session(sessionID)
	if err != nil {
		return model.CharacterState{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := sess.Variations.SetActive(index); err != nil {
		return model.CharacterState{}, err
	}

	snapshot, err := sess.Variations.Get(index)
	if err != nil {
		return model.CharacterState{}, err
	}

	sess.working = snapshot
	return snapshot, nil
}

// Geometry derives the primitive description of the working state.
func (s *EditorService) Geometry(sessionID string) (geometry.Description, error) {
	sess, err := s.Session(sessionID)
	if err != nil {
		return geometry.Description{}, err
	}
	return geometry.BuildHumanoid(sess.Working()), nil
}

// State summarizes a session for API responses.
func (s *EditorService) State(sessionID string) (*model.SessionResponse, error) {
	sess, err := s.Session(sessionID)
	if err != nil {
		return nil, err
	}
	return &model.SessionResponse{
		SessionID:   sess.ID,
		State:       sess.Working(),
		ActiveIndex: sess.Variations.ActiveIndex(),
		Variations:  sess.Variations.Len(),
	}, nil
}

// ListVariations returns every snapshot plus the active selection.
func (s *EditorService) ListVariations(sessionID string) (*model.VariationListResponse, error) {
	sess, err := s.Session(sessionID)
	if err != nil {
		return nil, err
	}
	return &model.VariationListResponse{
		ActiveIndex: sess.Variations.ActiveIndex(),
		Variations:  sess.Variations.List(),
	}, nil
}
