package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lexflowhq/lexflow-api/internal/domain"
	"github.com/lexflowhq/lexflow-api/internal/port"
)

// PostgresStore handles all relational database operations.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection and returns a store instance.
func NewPostgresStore(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use in transactions.
func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

// --- Users & Profiles ---

// CreateUser inserts a new account row.
func (s *PostgresStore) CreateUser(ctx context.Context, u *domain.User) (*domain.User, error) {
	query := `INSERT INTO users (email, password_hash)
	          VALUES ($1, $2)
	          RETURNING id, email, password_hash, created_at, updated_at`

	var user domain.User
	err := s.db.QueryRowContext(ctx, query, u.Email, u.PasswordHash).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

// CreateProfile links an account to an office with a name and role.
func (s *PostgresStore) CreateProfile(ctx context.Context, p *domain.Profile) error {
	query := `INSERT INTO profiles (user_id, full_name, role, office_id)
	          VALUES ($1, $2, $3, $4)`
	if _, err := s.db.ExecContext(ctx, query, p.UserID, p.FullName, p.Role, p.OfficeID); err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}

// DeleteUser removes an account row. Used as the compensating step when
// profile creation fails after the account was already written.
func (s *PostgresStore) DeleteUser(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// GetUserByEmail loads an account with its profile fields for login.
func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT u.id, u.email, u.password_hash, p.full_name, p.role, p.office_id, u.created_at, u.updated_at
	          FROM users u JOIN profiles p ON p.user_id = u.id
	          WHERE u.email = $1`

	var user domain.User
	err := s.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID, &user.Email, &user.PasswordHash,
		&user.FullName, &user.Role, &user.OfficeID,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &user, nil
}

// --- Integrations ---

// GetIntegration loads the integration record for a (user, provider) pair.
func (s *PostgresStore) GetIntegration(ctx context.Context, userID, provider string) (*domain.Integration, error) {
	query := `SELECT id, user_id, provider, access_token, refresh_token, expires_at, connected_email, created_at, updated_at
	          FROM integrations WHERE user_id = $1 AND provider = $2`

	var rec domain.Integration
	err := s.db.QueryRowContext(ctx, query, userID, provider).Scan(
		&rec.ID, &rec.UserID, &rec.Provider,
		&rec.AccessToken, &rec.RefreshToken, &rec.ExpiresAt, &rec.ConnectedEmail,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrIntegrationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get integration: %w", err)
	}
	return &rec, nil
}

// UpsertIntegration inserts or overwrites the record for (user, provider).
// A repeated handshake replaces the stored tokens rather than duplicating.
func (s *PostgresStore) UpsertIntegration(ctx context.Context, rec *domain.Integration) (*domain.Integration, error) {
	query := `
		INSERT INTO integrations (user_id, provider, access_token, refresh_token, expires_at, connected_email)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, provider) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			expires_at = EXCLUDED.expires_at,
			connected_email = EXCLUDED.connected_email,
			updated_at = NOW()
		RETURNING id, user_id, provider, access_token, refresh_token, expires_at, connected_email, created_at, updated_at`

	var out domain.Integration
	err := s.db.QueryRowContext(ctx, query,
		rec.UserID, rec.Provider, rec.AccessToken, rec.RefreshToken, rec.ExpiresAt, rec.ConnectedEmail,
	).Scan(
		&out.ID, &out.UserID, &out.Provider,
		&out.AccessToken, &out.RefreshToken, &out.ExpiresAt, &out.ConnectedEmail,
		&out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert integration: %w", err)
	}
	return &out, nil
}

// UpdateIntegrationToken persists a refreshed access token with optimistic
// concurrency: the write only lands if expires_at still matches the value
// observed before the refresh. Returns false when another request won the
// race. An empty refreshToken retains the stored one.
func (s *PostgresStore) UpdateIntegrationToken(ctx context.Context, userID, provider, accessToken, refreshToken string, newExpiry, observedExpiry time.Time) (bool, error) {
	query := `UPDATE integrations
	          SET access_token = $1,
	              refresh_token = COALESCE(NULLIF($2, ''), refresh_token),
	              expires_at = $3,
	              updated_at = NOW()
	          WHERE user_id = $4 AND provider = $5 AND expires_at = $6`

	res, err := s.db.ExecContext(ctx, query, accessToken, refreshToken, newExpiry, userID, provider, observedExpiry)
	if err != nil {
		return false, fmt.Errorf("update integration token: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update integration token: %w", err)
	}
	return n > 0, nil
}

// --- Audit Logs ---

// WriteAudit implements middleware.AuditWriter.
func (s *PostgresStore) WriteAudit(userID, action, resource, resourceID, details, ip, userAgent string) error {
	query := `INSERT INTO audit_logs (user_id, action, resource, resource_id, details, ip, user_agent)
	          VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7)`
	_, err := s.db.ExecContext(context.Background(), query,
		userID, action, resource, resourceID, details, ip, userAgent,
	)
	return err
}

// ListAuditLogs returns recent audit logs with optional filters.
func (s *PostgresStore) ListAuditLogs(ctx context.Context, limit int, action string) ([]domain.AuditLog, error) {
	query := `SELECT id, user_id, action, resource, resource_id, details, ip, user_agent, created_at
	          FROM audit_logs`
	args := []interface{}{}
	argIdx := 1

	if action != "" {
		query += fmt.Sprintf(" WHERE action = $%d", argIdx)
		args = append(args, action)
		argIdx++
	}

	query += " ORDER BY created_at DESC"

	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	defer rows.Close()

	var logs []domain.AuditLog
	for rows.Next() {
		var l domain.AuditLog
		if err := rows.Scan(
			&l.ID, &l.UserID, &l.Action, &l.Resource, &l.ResourceID,
			&l.Details, &l.IP, &l.UserAgent, &l.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, nil
}
