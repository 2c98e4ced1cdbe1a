// Package store defines the per-user transaction store abstraction.
// Lifetime is the process lifetime; nothing is persisted.
package store

import (
	"context"

	"github.com/accountant-ai/backend/internal/domain"
)

// Session is the lightweight per-user chat state kept beside the
// transaction sequence: a remembered tone preference plus counters.
type Session struct {
	UserID        string             `json:"user_id"`
	PreferredTone domain.Personality `json:"preferred_tone,omitempty"`
	MessageCount  int                `json:"message_count"`
	LastAgent     domain.AgentDomain `json:"last_agent,omitempty"`
}

// TransactionStore holds each user's ordered transaction sequence.
//
// Semantics:
//   - Load replaces the user's full sequence (idempotent, last write wins).
//   - Append adds one record, assigning a fresh unique ID when absent.
//   - Get returns a copy sorted by date descending (ID ascending tie-break),
//     optionally truncated; limit <= 0 means no truncation.
//   - A user that was never loaded reads as an empty sequence, not an error.
//
// Writes to the same user are serialized; all reads see a consistent copy.
type TransactionStore interface {
	Load(ctx context.Context, userID string, records []domain.Transaction) (int, error)
	Append(ctx context.Context, userID string, record domain.Transaction) (domain.Transaction, error)
	Get(ctx context.Context, userID string, limit int) ([]domain.Transaction, error)
	GetAll(ctx context.Context, userID string) ([]domain.Transaction, error)

	// Session returns a copy of the user's session state, creating it on
	// first reference.
	Session(ctx context.Context, userID string) (Session, error)
	// UpdateSession applies fn to the user's session under its lock.
	UpdateSession(ctx context.Context, userID string, fn func(*Session)) error
}
