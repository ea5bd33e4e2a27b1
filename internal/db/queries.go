package db

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

// New returns queries bound to conn. Statements are written with ?
// placeholders and rebound for the driver.
func New(conn DBTX, driver DatabaseDriver) *Queries {
	return &Queries{db: conn, driver: driver}
}

type Queries struct {
	db     DBTX
	driver DatabaseDriver
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx, driver: q.driver}
}

func (q *Queries) exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return q.db.ExecContext(ctx, Rebind(q.driver, query), args...)
}

func (q *Queries) queryRow(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return q.db.QueryRowContext(ctx, Rebind(q.driver, query), args...)
}

func (q *Queries) query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return q.db.QueryContext(ctx, Rebind(q.driver, query), args...)
}

const upsertPendingAuthorization = `
INSERT INTO pending_authorizations (token, nonce, connection, provider, code_verifier, redirect_uri, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (token) DO UPDATE SET
	nonce = excluded.nonce,
	connection = excluded.connection,
	provider = excluded.provider,
	code_verifier = excluded.code_verifier,
	redirect_uri = excluded.redirect_uri,
	created_at = excluded.created_at`

func (q *Queries) UpsertPendingAuthorization(ctx context.Context, arg PendingAuthorization) error {
	_, err := q.exec(ctx, upsertPendingAuthorization,
		arg.Token,
		arg.Nonce,
		arg.Connection,
		arg.Provider,
		arg.CodeVerifier,
		arg.RedirectURI,
		arg.CreatedAt,
	)
	return err
}

const getPendingAuthorization = `
SELECT token, nonce, connection, provider, code_verifier, redirect_uri, created_at
FROM pending_authorizations
WHERE token = ?`

func (q *Queries) GetPendingAuthorization(ctx context.Context, token string) (PendingAuthorization, error) {
	row := q.queryRow(ctx, getPendingAuthorization, token)
	var i PendingAuthorization
	err := row.Scan(
		&i.Token,
		&i.Nonce,
		&i.Connection,
		&i.Provider,
		&i.CodeVerifier,
		&i.RedirectURI,
		&i.CreatedAt,
	)
	return i, err
}

const deletePendingAuthorization = `DELETE FROM pending_authorizations WHERE token = ?`

func (q *Queries) DeletePendingAuthorization(ctx context.Context, token string) error {
	_, err := q.exec(ctx, deletePendingAuthorization, token)
	return err
}

const createCredential = `
INSERT INTO credentials (id, connection, id_token, access_token, token_type, refresh_token, subject, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateCredential(ctx context.Context, arg Credential) error {
	_, err := q.exec(ctx, createCredential,
		arg.ID,
		arg.Connection,
		arg.IDToken,
		arg.AccessToken,
		arg.TokenType,
		arg.RefreshToken,
		arg.Subject,
		arg.CreatedAt,
	)
	return err
}

const getCredential = `
SELECT id, connection, id_token, access_token, token_type, refresh_token, subject, created_at
FROM credentials
WHERE id = ?`

func (q *Queries) GetCredential(ctx context.Context, id string) (Credential, error) {
	row := q.queryRow(ctx, getCredential, id)
	var i Credential
	err := row.Scan(
		&i.ID,
		&i.Connection,
		&i.IDToken,
		&i.AccessToken,
		&i.TokenType,
		&i.RefreshToken,
		&i.Subject,
		&i.CreatedAt,
	)
	return i, err
}

const listCredentials = `
SELECT id, connection, id_token, access_token, token_type, refresh_token, subject, created_at
FROM credentials
ORDER BY created_at DESC, id DESC
LIMIT ?`

func (q *Queries) ListCredentials(ctx context.Context, limit int64) ([]Credential, error) {
	rows, err := q.query(ctx, listCredentials, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Credential
	for rows.Next() {
		var i Credential
		if err := rows.Scan(
			&i.ID,
			&i.Connection,
			&i.IDToken,
			&i.AccessToken,
			&i.TokenType,
			&i.RefreshToken,
			&i.Subject,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteCredential = `DELETE FROM credentials WHERE id = ?`

func (q *Queries) DeleteCredential(ctx context.Context, id string) (int64, error) {
	result, err := q.exec(ctx, deleteCredential, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
