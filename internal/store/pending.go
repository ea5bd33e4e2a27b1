// Package store persists flow state and the credentials obtained by a flow.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jrschumacher/lockflow/internal/db"
	"github.com/jrschumacher/lockflow/pkg/webauth"
)

// PendingStore keeps the pending authorization slot in the database so a
// redirect handled by another process can complete the flow.
type PendingStore struct {
	svc *db.Service
}

var _ webauth.PendingStore = (*PendingStore)(nil)

func NewPendingStore(svc *db.Service) *PendingStore {
	return &PendingStore{svc: svc}
}

func (s *PendingStore) Save(ctx context.Context, token string, p webauth.PendingAuthorization) error {
	err := s.svc.Queries().UpsertPendingAuthorization(ctx, db.PendingAuthorization{
		Token:        token,
		Nonce:        p.Nonce,
		Connection:   p.Connection,
		Provider:     string(p.Provider),
		CodeVerifier: p.CodeVerifier,
		RedirectURI:  p.RedirectURI,
		CreatedAt:    p.CreatedAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to save pending authorization: %w", err)
	}
	return nil
}

func (s *PendingStore) Load(ctx context.Context, token string) (webauth.PendingAuthorization, error) {
	row, err := s.svc.Queries().GetPendingAuthorization(ctx, token)
	if errors.Is(err, sql.ErrNoRows) {
		return webauth.PendingAuthorization{}, webauth.ErrPendingNotFound
	}
	if err != nil {
		return webauth.PendingAuthorization{}, fmt.Errorf("failed to load pending authorization: %w", err)
	}
	return webauth.PendingAuthorization{
		Nonce:        row.Nonce,
		Connection:   row.Connection,
		Provider:     webauth.ProviderKind(row.Provider),
		CodeVerifier: row.CodeVerifier,
		RedirectURI:  row.RedirectURI,
		CreatedAt:    row.CreatedAt.UTC(),
	}, nil
}

func (s *PendingStore) Delete(ctx context.Context, token string) error {
	if err := s.svc.Queries().DeletePendingAuthorization(ctx, token); err != nil {
		return fmt.Errorf("failed to delete pending authorization: %w", err)
	}
	return nil
}
