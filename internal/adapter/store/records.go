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

// --- Cases ---

const caseColumns = `id, office_id, client_id, number, title, description, status, created_at, updated_at`

// CreateCase inserts a new case record.
func (s *PostgresStore) CreateCase(ctx context.Context, c *domain.Case) (*domain.Case, error) {
	query := `INSERT INTO cases (office_id, client_id, number, title, description, status)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING ` + caseColumns

	var out domain.Case
	err := s.db.QueryRowContext(ctx, query,
		c.OfficeID, c.ClientID, c.Number, c.Title, c.Description, c.Status,
	).Scan(
		&out.ID, &out.OfficeID, &out.ClientID, &out.Number, &out.Title,
		&out.Description, &out.Status, &out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create case: %w", err)
	}
	return &out, nil
}

// GetCase returns a case scoped to an office.
func (s *PostgresStore) GetCase(ctx context.Context, officeID, id string) (*domain.Case, error) {
	query := `SELECT ` + caseColumns + ` FROM cases WHERE id = $1 AND office_id = $2`

	var c domain.Case
	err := s.db.QueryRowContext(ctx, query, id, officeID).Scan(
		&c.ID, &c.OfficeID, &c.ClientID, &c.Number, &c.Title,
		&c.Description, &c.Status, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get case: %w", err)
	}
	return &c, nil
}

// ListCases returns an office's cases, optionally filtered by status.
func (s *PostgresStore) ListCases(ctx context.Context, officeID, status string) ([]domain.Case, error) {
	query := `SELECT ` + caseColumns + ` FROM cases WHERE office_id = $1`
	args := []interface{}{officeID}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list cases: %w", err)
	}
	defer rows.Close()

	var cases []domain.Case
	for rows.Next() {
		var c domain.Case
		if err := rows.Scan(
			&c.ID, &c.OfficeID, &c.ClientID, &c.Number, &c.Title,
			&c.Description, &c.Status, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan case: %w", err)
		}
		cases = append(cases, c)
	}
	return cases, nil
}

// UpdateCaseStatus moves a case between open/closed/archived.
func (s *PostgresStore) UpdateCaseStatus(ctx context.Context, officeID, id, status string) error {
	query := `UPDATE cases SET status = $1, updated_at = NOW() WHERE id = $2 AND office_id = $3`
	res, err := s.db.ExecContext(ctx, query, status, id, officeID)
	if err != nil {
		return fmt.Errorf("update case status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return port.ErrNotFound
	}
	return nil
}

// --- Clients ---

const clientColumns = `id, office_id, name, email, phone, notes, created_at, updated_at`

// CreateClient inserts a new client record.
func (s *PostgresStore) CreateClient(ctx context.Context, c *domain.Client) (*domain.Client, error) {
	query := `INSERT INTO clients (office_id, name, email, phone, notes)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING ` + clientColumns

	var out domain.Client
	err := s.db.QueryRowContext(ctx, query,
		c.OfficeID, c.Name, c.Email, c.Phone, c.Notes,
	).Scan(
		&out.ID, &out.OfficeID, &out.Name, &out.Email, &out.Phone,
		&out.Notes, &out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return &out, nil
}

// ListClients returns all clients of an office, newest first.
func (s *PostgresStore) ListClients(ctx context.Context, officeID string) ([]domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE office_id = $1 ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, officeID)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var clients []domain.Client
	for rows.Next() {
		var c domain.Client
		if err := rows.Scan(
			&c.ID, &c.OfficeID, &c.Name, &c.Email, &c.Phone,
			&c.Notes, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		clients = append(clients, c)
	}
	return clients, nil
}

// --- Deadlines ---

const deadlineColumns = `id, office_id, case_id, title, due_at, done, created_at`

// CreateDeadline inserts a new deadline.
func (s *PostgresStore) CreateDeadline(ctx context.Context, d *domain.Deadline) (*domain.Deadline, error) {
	query := `INSERT INTO deadlines (office_id, case_id, title, due_at)
	          VALUES ($1, $2, $3, $4)
	          RETURNING ` + deadlineColumns

	var out domain.Deadline
	err := s.db.QueryRowContext(ctx, query,
		d.OfficeID, d.CaseID, d.Title, d.DueAt,
	).Scan(&out.ID, &out.OfficeID, &out.CaseID, &out.Title, &out.DueAt, &out.Done, &out.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create deadline: %w", err)
	}
	return &out, nil
}

// ListUpcomingDeadlines returns undone deadlines due from now on, soonest first.
func (s *PostgresStore) ListUpcomingDeadlines(ctx context.Context, officeID string, limit int) ([]domain.Deadline, error) {
	query := `SELECT ` + deadlineColumns + `
	          FROM deadlines
	          WHERE office_id = $1 AND done = FALSE AND due_at >= NOW()
	          ORDER BY due_at ASC
	          LIMIT $2`

	rows, err := s.db.QueryContext(ctx, query, officeID, limit)
	if err != nil {
		return nil, fmt.Errorf("list deadlines: %w", err)
	}
	defer rows.Close()

	var deadlines []domain.Deadline
	for rows.Next() {
		var d domain.Deadline
		if err := rows.Scan(&d.ID, &d.OfficeID, &d.CaseID, &d.Title, &d.DueAt, &d.Done, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan deadline: %w", err)
		}
		deadlines = append(deadlines, d)
	}
	return deadlines, nil
}

// MarkDeadlineDone flags a deadline as handled.
func (s *PostgresStore) MarkDeadlineDone(ctx context.Context, officeID, id string) error {
	query := `UPDATE deadlines SET done = TRUE WHERE id = $1 AND office_id = $2`
	res, err := s.db.ExecContext(ctx, query, id, officeID)
	if err != nil {
		return fmt.Errorf("mark deadline done: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return port.ErrNotFound
	}
	return nil
}

// --- Finance ---

const financeColumns = `id, office_id, case_id, kind, amount_cents, description, entry_date, created_at`

// CreateFinanceEntry inserts an income or expense line.
func (s *PostgresStore) CreateFinanceEntry(ctx context.Context, e *domain.FinanceEntry) (*domain.FinanceEntry, error) {
	query := `INSERT INTO finance_entries (office_id, case_id, kind, amount_cents, description, entry_date)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING ` + financeColumns

	var out domain.FinanceEntry
	err := s.db.QueryRowContext(ctx, query,
		e.OfficeID, e.CaseID, e.Kind, e.AmountCents, e.Description, e.EntryDate,
	).Scan(&out.ID, &out.OfficeID, &out.CaseID, &out.Kind, &out.AmountCents, &out.Description, &out.EntryDate, &out.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create finance entry: %w", err)
	}
	return &out, nil
}

// ListFinanceEntries returns an office's entries within a date window.
// Zero bounds are ignored.
func (s *PostgresStore) ListFinanceEntries(ctx context.Context, officeID string, from, to time.Time) ([]domain.FinanceEntry, error) {
	query := `SELECT ` + financeColumns + ` FROM finance_entries WHERE office_id = $1`
	args := []interface{}{officeID}
	argIdx := 2

	if !from.IsZero() {
		query += fmt.Sprintf(" AND entry_date >= $%d", argIdx)
		args = append(args, from)
		argIdx++
	}
	if !to.IsZero() {
		query += fmt.Sprintf(" AND entry_date <= $%d", argIdx)
		args = append(args, to)
	}
	query += ` ORDER BY entry_date DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list finance entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.FinanceEntry
	for rows.Next() {
		var e domain.FinanceEntry
		if err := rows.Scan(&e.ID, &e.OfficeID, &e.CaseID, &e.Kind, &e.AmountCents, &e.Description, &e.EntryDate, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan finance entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// --- Dashboard ---

// GetDashboardSummary aggregates workload counts and the current month's
// money flow for an office in a single round trip.
func (s *PostgresStore) GetDashboardSummary(ctx context.Context, officeID string) (*domain.DashboardSummary, error) {
	query := `SELECT
	            (SELECT COUNT(*) FROM cases WHERE office_id = $1 AND status = 'open'),
	            (SELECT COUNT(*) FROM cases WHERE office_id = $1 AND status = 'closed'),
	            (SELECT COUNT(*) FROM clients WHERE office_id = $1),
	            (SELECT COUNT(*) FROM deadlines WHERE office_id = $1 AND done = FALSE AND due_at >= NOW()),
	            (SELECT COALESCE(SUM(amount_cents), 0) FROM finance_entries
	               WHERE office_id = $1 AND kind = 'income' AND entry_date >= date_trunc('month', NOW())),
	            (SELECT COALESCE(SUM(amount_cents), 0) FROM finance_entries
	               WHERE office_id = $1 AND kind = 'expense' AND entry_date >= date_trunc('month', NOW()))`

	var sum domain.DashboardSummary
	err := s.db.QueryRowContext(ctx, query, officeID).Scan(
		&sum.OpenCases, &sum.ClosedCases, &sum.Clients,
		&sum.UpcomingDeadlines, &sum.MonthIncomeCents, &sum.MonthExpenseCents,
	)
	if err != nil {
		return nil, fmt.Errorf("dashboard summary: %w", err)
	}
	return &sum, nil
}
