package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no session exists for the given id.
var ErrNotFound = errors.New("session not found")

// Turn is one stored conversation turn.
type Turn struct {
	ID        string         `json:"id"`
	Role      string         `json:"role"`
	Message   string         `json:"message"`
	Turn      int            `json:"turn"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Session is a conversation with its ordered turns.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Chats     []Turn    `json:"chats"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Store is the session persistence contract the orchestrator depends on.
type Store interface {
	// FindOrCreateActiveSession returns the user's most recent session,
	// creating one when none exists.
	FindOrCreateActiveSession(ctx context.Context, userID string) (*Session, error)
	FindSessionByID(ctx context.Context, id string) (*Session, error)
	// AppendTurn stores a turn and bumps the session's UpdatedAt.
	AppendTurn(ctx context.Context, sessionID string, turn Turn) error
	UpdateSessionTitle(ctx context.Context, sessionID, title string) error
}
