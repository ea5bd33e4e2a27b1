package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jrschumacher/lockflow/internal/db"
	"github.com/jrschumacher/lockflow/pkg/webauth"
	"github.com/segmentio/ksuid"
)

var ErrNotFound = errors.New("credentials not found")

const defaultListLimit = 50

// Credentials is a stored login result.
type Credentials struct {
	ID           string    `json:"id"`
	Connection   string    `json:"connection,omitempty"`
	IDToken      string    `json:"id_token,omitempty"`
	AccessToken  string    `json:"access_token,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	Subject      string    `json:"subject,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type CredentialStore struct {
	svc *db.Service
	now func() time.Time
}

func NewCredentialStore(svc *db.Service) *CredentialStore {
	return &CredentialStore{svc: svc, now: time.Now}
}

// Save stores the tokens of a successful flow under a new ksuid, which sorts
// by creation time.
func (s *CredentialStore) Save(ctx context.Context, connection, subject string, tokens webauth.Success) (Credentials, error) {
	now := s.now().UTC()
	id, err := ksuid.NewRandomWithTime(now)
	if err != nil {
		return Credentials{}, fmt.Errorf("failed to generate credentials id: %w", err)
	}
	c := Credentials{
		ID:           id.String(),
		Connection:   connection,
		IDToken:      tokens.IDToken,
		AccessToken:  tokens.AccessToken,
		TokenType:    tokens.TokenType,
		RefreshToken: tokens.RefreshToken,
		Subject:      subject,
		CreatedAt:    now,
	}
	if err := s.svc.Queries().CreateCredential(ctx, db.Credential(c)); err != nil {
		return Credentials{}, fmt.Errorf("failed to save credentials: %w", err)
	}
	return c, nil
}

func (s *CredentialStore) Get(ctx context.Context, id string) (Credentials, error) {
	row, err := s.svc.Queries().GetCredential(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Credentials{}, ErrNotFound
	}
	if err != nil {
		return Credentials{}, fmt.Errorf("failed to get credentials: %w", err)
	}
	return fromRow(row), nil
}

// List returns the most recent credentials first. A non-positive limit uses
// the default.
func (s *CredentialStore) List(ctx context.Context, limit int) ([]Credentials, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := s.svc.Queries().ListCredentials(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list credentials: %w", err)
	}
	out := make([]Credentials, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromRow(row))
	}
	return out, nil
}

func (s *CredentialStore) Delete(ctx context.Context, id string) error {
	n, err := s.svc.Queries().DeleteCredential(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete credentials: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func fromRow(row db.Credential) Credentials {
	c := Credentials(row)
	c.CreatedAt = c.CreatedAt.UTC()
	return c
}
