package webauth

import (
	"context"
	"sync"
	"time"
)

// PendingAuthorization is the state kept between Start and Complete.
type PendingAuthorization struct {
	Nonce        string       `json:"nonce"`
	Connection   string       `json:"connection"`
	Provider     ProviderKind `json:"provider"`
	CodeVerifier string       `json:"code_verifier,omitempty"`
	RedirectURI  string       `json:"redirect_uri"`
	CreatedAt    time.Time    `json:"created_at"`
}

// PendingStore holds at most one pending authorization per correlation
// token. Save replaces any previous entry for the token.
type PendingStore interface {
	Save(ctx context.Context, token string, p PendingAuthorization) error
	// Load returns ErrPendingNotFound when nothing is pending.
	Load(ctx context.Context, token string) (PendingAuthorization, error)
	Delete(ctx context.Context, token string) error
}

// MemoryPendingStore is the in-process slot used by default.
type MemoryPendingStore struct {
	mu      sync.Mutex
	pending map[string]PendingAuthorization
}

// NewMemoryPendingStore returns an empty store.
func NewMemoryPendingStore() *MemoryPendingStore {
	return &MemoryPendingStore{pending: make(map[string]PendingAuthorization)}
}

func (s *MemoryPendingStore) Save(_ context.Context, token string, p PendingAuthorization) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[token] = p
	return nil
}

func (s *MemoryPendingStore) Load(_ context.Context, token string) (PendingAuthorization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pending[token]
	if !ok {
		return PendingAuthorization{}, ErrPendingNotFound
	}
	return p, nil
}

func (s *MemoryPendingStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, token)
	return nil
}
