package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is a concurrency-safe in-memory Store.
type MemoryStore struct {
	mu sync.RWMutex

	sessions map[string]*Session
	// activeByUser tracks the session FindOrCreateActiveSession hands out.
	activeByUser map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions:     make(map[string]*Session),
		activeByUser: make(map[string]string),
	}
}

func (s *MemoryStore) FindOrCreateActiveSession(ctx context.Context, userID string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.activeByUser[userID]; ok {
		if sess, ok := s.sessions[id]; ok {
			return copySession(sess), nil
		}
	}

	now := time.Now().UTC()
	sess := &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.sessions[sess.ID] = sess
	s.activeByUser[userID] = sess.ID

	return copySession(sess), nil
}

func (s *MemoryStore) FindSessionByID(ctx context.Context, id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copySession(sess), nil
}

func (s *MemoryStore) AppendTurn(ctx context.Context, sessionID string, turn Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return ErrNotFound
	}

	if turn.ID == "" {
		turn.ID = uuid.NewString()
	}
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now().UTC()
	}

	sess.Chats = append(sess.Chats, turn)
	sess.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryStore) UpdateSessionTitle(ctx context.Context, sessionID, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return ErrNotFound
	}

	sess.Title = title
	sess.UpdatedAt = time.Now().UTC()
	return nil
}

// copySession returns a snapshot callers can read without racing writers.
func copySession(sess *Session) *Session {
	out := *sess
	out.Chats = make([]Turn, len(sess.Chats))
	copy(out.Chats, sess.Chats)
	return &out
}
