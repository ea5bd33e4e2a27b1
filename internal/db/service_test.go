package db

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/jrschumacher/lockflow/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(context.Background(), &config.Config{AppEnv: config.EnvTest, DatabaseURL: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func TestService_PendingAuthorizationUpsert(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	q := svc.Queries()
	assert.Equal(t, SQLite, svc.Driver())

	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	first := PendingAuthorization{
		Token:       "webauth:client",
		Nonce:       "N1",
		Connection:  "github",
		Provider:    "implicit",
		RedirectURI: "a0client://tenant/authorize",
		CreatedAt:   created,
	}
	require.NoError(t, q.UpsertPendingAuthorization(ctx, first))

	second := first
	second.Nonce = "N2"
	second.Provider = "pkce"
	second.CodeVerifier = "verifier"
	second.CreatedAt = created.Add(time.Minute)
	require.NoError(t, q.UpsertPendingAuthorization(ctx, second))

	got, err := q.GetPendingAuthorization(ctx, "webauth:client")
	require.NoError(t, err)
	assert.Equal(t, "N2", got.Nonce)
	assert.Equal(t, "pkce", got.Provider)
	assert.Equal(t, "verifier", got.CodeVerifier)
	assert.True(t, second.CreatedAt.Equal(got.CreatedAt))

	require.NoError(t, q.DeletePendingAuthorization(ctx, "webauth:client"))
	_, err = q.GetPendingAuthorization(ctx, "webauth:client")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestService_Credentials(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	q := svc.Queries()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, q.CreateCredential(ctx, Credential{
			ID:          id,
			Connection:  "github",
			AccessToken: "AT-" + id,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}))
	}

	list, err := q.ListCredentials(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "c", list[0].ID)
	assert.Equal(t, "b", list[1].ID)

	c, err := q.GetCredential(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "AT-a", c.AccessToken)

	n, err := q.DeleteCredential(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, err = q.DeleteCredential(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestService_WithTxRollsBack(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	boom := errors.New("boom")
	err := svc.WithTx(ctx, func(q *Queries) error {
		if err := q.CreateCredential(ctx, Credential{ID: "tx", CreatedAt: time.Now().UTC()}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = svc.Queries().GetCredential(ctx, "tx")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestMigrateIsIdempotent(t *testing.T) {
	svc := newTestService(t)
	assert.NoError(t, Migrate(context.Background(), svc.DB()))
}
