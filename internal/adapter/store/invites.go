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

const inviteColumns = `id, token, email, role, office_id, invited_by, expires_at, accepted_at, created_at`

func scanInvite(row *sql.Row) (*domain.Invite, error) {
	var inv domain.Invite
	err := row.Scan(
		&inv.ID, &inv.Token, &inv.Email, &inv.Role, &inv.OfficeID,
		&inv.InvitedBy, &inv.ExpiresAt, &inv.AcceptedAt, &inv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// CreateInvite inserts a new invite record.
func (s *PostgresStore) CreateInvite(ctx context.Context, inv *domain.Invite) (*domain.Invite, error) {
	query := `INSERT INTO invites (token, email, role, office_id, invited_by, expires_at)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING ` + inviteColumns

	out, err := scanInvite(s.db.QueryRowContext(ctx, query,
		inv.Token, inv.Email, inv.Role, inv.OfficeID, inv.InvitedBy, inv.ExpiresAt,
	))
	if err != nil {
		return nil, fmt.Errorf("create invite: %w", err)
	}
	return out, nil
}

// GetInviteByToken returns the invite for a token, or ErrInviteInvalid.
func (s *PostgresStore) GetInviteByToken(ctx context.Context, token string) (*domain.Invite, error) {
	query := `SELECT ` + inviteColumns + ` FROM invites WHERE token = $1`

	inv, err := scanInvite(s.db.QueryRowContext(ctx, query, token))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrInviteInvalid
	}
	if err != nil {
		return nil, fmt.Errorf("get invite: %w", err)
	}
	return inv, nil
}

// FindPendingInvite returns the newest unaccepted, unexpired invite for an
// (office, email) pair, or ErrNotFound when no active invite exists.
func (s *PostgresStore) FindPendingInvite(ctx context.Context, officeID, email string) (*domain.Invite, error) {
	query := `SELECT ` + inviteColumns + `
	          FROM invites
	          WHERE office_id = $1 AND email = $2 AND accepted_at IS NULL AND expires_at > NOW()
	          ORDER BY created_at DESC
	          LIMIT 1`

	inv, err := scanInvite(s.db.QueryRowContext(ctx, query, officeID, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find pending invite: %w", err)
	}
	return inv, nil
}

// MarkInviteAccepted records the single acceptance write.
func (s *PostgresStore) MarkInviteAccepted(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE invites SET accepted_at = $1 WHERE id = $2 AND accepted_at IS NULL`
	res, err := s.db.ExecContext(ctx, query, at, id)
	if err != nil {
		return fmt.Errorf("mark invite accepted: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark invite accepted: %w", err)
	}
	if n == 0 {
		return port.ErrInviteAlreadyAccepted
	}
	return nil
}
