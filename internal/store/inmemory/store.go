// Package inmemory is the process-memory implementation of the transaction
// store. Data is lost on restart; there is deliberately no persistence layer.
package inmemory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/accountant-ai/backend/internal/domain"
	"github.com/accountant-ai/backend/internal/store"
)

// userState is everything the store keeps for one user. Its mutex serializes
// writes for that user only, so slow operations on one user never block
// unrelated users.
type userState struct {
	mu           sync.Mutex
	transactions []domain.Transaction
	session      store.Session
}

// Store maps user IDs to their transaction sequences and session state.
// The registry mutex guards only map membership; per-user access goes
// through the user's own lock.
type Store struct {
	mu    sync.RWMutex
	users map[string]*userState
}

// NewStore creates an empty in-memory transaction store.
func NewStore() *Store {
	return &Store{
		users: make(map[string]*userState),
	}
}

// user returns the state for userID, creating it on first reference.
func (s *Store) user(userID string) *userState {
	s.mu.RLock()
	u, ok := s.users[userID]
	s.mu.RUnlock()
	if ok {
		return u
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok = s.users[userID]; ok {
		return u
	}
	u = &userState{session: store.Session{UserID: userID}}
	s.users[userID] = u
	return u
}

// Load implements TransactionStore. It replaces the user's full sequence;
// records without an ID get a fresh one. Returns the number of records stored.
func (s *Store) Load(_ context.Context, userID string, records []domain.Transaction) (int, error) {
	seq := make([]domain.Transaction, 0, len(records))
	for _, r := range records {
		rec := r.Clone()
		if rec.TransactionID == "" {
			rec.TransactionID = uuid.NewString()
		}
		seq = append(seq, rec)
	}

	u := s.user(userID)
	u.mu.Lock()
	defer u.mu.Unlock()
	u.transactions = seq
	return len(seq), nil
}

// Append implements TransactionStore. It adds one record to the user's
// sequence and returns the stored copy, including any assigned ID.
func (s *Store) Append(_ context.Context, userID string, record domain.Transaction) (domain.Transaction, error) {
	rec := record.Clone()
	if rec.TransactionID == "" {
		rec.TransactionID = uuid.NewString()
	}

	u := s.user(userID)
	u.mu.Lock()
	defer u.mu.Unlock()
	u.transactions = append(u.transactions, rec)
	return rec.Clone(), nil
}

// Get implements TransactionStore. The returned slice is a copy sorted by
// date descending with transaction ID ascending as the tie-break, truncated
// to limit when limit > 0.
func (s *Store) Get(ctx context.Context, userID string, limit int) ([]domain.Transaction, error) {
	txs, err := s.GetAll(ctx, userID)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(txs, func(i, j int) bool {
		if !txs[i].Date.Equal(txs[j].Date) {
			return txs[i].Date.After(txs[j].Date)
		}
		return txs[i].TransactionID < txs[j].TransactionID
	})

	if limit > 0 && limit < len(txs) {
		txs = txs[:limit]
	}
	return txs, nil
}

// GetAll implements TransactionStore. It returns the user's sequence in
// insertion order as a deep copy. Never-loaded users read as empty.
func (s *Store) GetAll(_ context.Context, userID string) ([]domain.Transaction, error) {
	u := s.user(userID)
	u.mu.Lock()
	defer u.mu.Unlock()
	return domain.CloneAll(u.transactions), nil
}

// Session implements TransactionStore.
func (s *Store) Session(_ context.Context, userID string) (store.Session, error) {
	u := s.user(userID)
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.session, nil
}

// UpdateSession implements TransactionStore.
func (s *Store) UpdateSession(_ context.Context, userID string, fn func(*store.Session)) error {
	u := s.user(userID)
	u.mu.Lock()
	defer u.mu.Unlock()
	fn(&u.session)
	u.session.UserID = userID
	return nil
}

// Ensure Store implements the TransactionStore interface.
var _ store.TransactionStore = (*Store)(nil)
