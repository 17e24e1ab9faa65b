package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"careergate/internal/account"
	id "careergate/pkg/domain"
	"careergate/pkg/platform/sentinel"
)

// PostgresStore persists accounts in PostgreSQL via a pgx pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Schema for the accounts table, applied by migrations in the deployment
// repo. Kept here as the contract this store is written against.
//
//	CREATE TABLE accounts (
//	    id         UUID PRIMARY KEY,
//	    email      TEXT NOT NULL,
//	    full_name  TEXT NOT NULL DEFAULT '',
//	    role       TEXT NOT NULL DEFAULT 'user',
//	    blocked_at TIMESTAMPTZ,
//	    created_at TIMESTAMPTZ NOT NULL,
//	    updated_at TIMESTAMPTZ NOT NULL
//	);
const Schema = `
CREATE TABLE IF NOT EXISTS accounts (
    id         UUID PRIMARY KEY,
    email      TEXT NOT NULL,
    full_name  TEXT NOT NULL DEFAULT '',
    role       TEXT NOT NULL DEFAULT 'user',
    blocked_at TIMESTAMPTZ,
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
)`

const accountColumns = `id, email, full_name, role, blocked_at, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, acct *account.Account) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO accounts (`+accountColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuidOf(acct.ID), acct.Email, acct.FullName, string(acct.Role), acct.BlockedAt, acct.CreatedAt, acct.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, userID id.UserID) (*account.Account, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`,
		uuidOf(userID),
	)
	acct, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find account: %w", err)
	}
	return acct, nil
}

func (s *PostgresStore) List(ctx context.Context, params ListParams) ([]*account.Account, int, error) {
	var total int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM accounts`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count accounts: %w", err)
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+accountColumns+` FROM accounts ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`,
		limit, params.Offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*account.Account
	for rows.Next() {
		acct, err := scanAccount(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, acct)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, total, nil
}

func (s *PostgresStore) SetBlocked(ctx context.Context, userID id.UserID, blockedAt *time.Time, now time.Time) error {
	return s.exec(ctx,
		`UPDATE accounts SET blocked_at = $2, updated_at = $3 WHERE id = $1`,
		uuidOf(userID), blockedAt, now,
	)
}

func (s *PostgresStore) SetRole(ctx context.Context, userID id.UserID, role account.Role, now time.Time) error {
	return s.exec(ctx,
		`UPDATE accounts SET role = $2, updated_at = $3 WHERE id = $1`,
		uuidOf(userID), string(role), now,
	)
}

func (s *PostgresStore) UpdateProfile(ctx context.Context, userID id.UserID, email, fullName *string, now time.Time) error {
	return s.exec(ctx,
		`UPDATE accounts
		    SET email = COALESCE($2, email),
		        full_name = COALESCE($3, full_name),
		        updated_at = $4
		  WHERE id = $1`,
		uuidOf(userID), email, fullName, now,
	)
}

func (s *PostgresStore) Delete(ctx context.Context, userID id.UserID) error {
	return s.exec(ctx, `DELETE FROM accounts WHERE id = $1`, uuidOf(userID))
}

func (s *PostgresStore) exec(ctx context.Context, query string, args ...any) error {
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("exec account mutation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*account.Account, error) {
	var (
		acct      account.Account
		rawID     string
		role      string
		blockedAt *time.Time
	)
	if err := row.Scan(&rawID, &acct.Email, &acct.FullName, &role, &blockedAt, &acct.CreatedAt, &acct.UpdatedAt); err != nil {
		return nil, err
	}

	userID, err := id.ParseUserID(rawID)
	if err != nil {
		return nil, fmt.Errorf("corrupt account id %q: %w", rawID, err)
	}
	acct.ID = userID
	acct.Role = account.Role(role)
	acct.BlockedAt = blockedAt
	return &acct, nil
}

func uuidOf(userID id.UserID) string {
	return userID.String()
}
