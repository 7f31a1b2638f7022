package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	tickets "helpdesk-cloud/internal/tickets/domain"
)

// TicketRepository persists helpdesk tickets.
type TicketRepository struct {
	db *sql.DB
}

// NewTicketRepository constructs a repository.
func NewTicketRepository(db *sql.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

// Create inserts a new ticket.
func (r *TicketRepository) Create(ctx context.Context, ticket *tickets.Ticket) error {
	if r == nil || r.db == nil {
		return errors.New("ticket repo: nil db")
	}
	if ticket == nil {
		return errors.New("ticket repo: nil ticket")
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO tickets (id, branch_id, reported_by, assigned_to, title, description, priority, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		ticket.ID,
		ticket.BranchID,
		nullString(ticket.ReportedBy),
		nullString(ticket.AssignedTo),
		ticket.Title,
		ticket.Description,
		ticket.Priority,
		ticket.Status,
		ticket.CreatedAt,
		ticket.UpdatedAt,
	)
	return err
}

// Get fetches one ticket by id.
func (r *TicketRepository) Get(ctx context.Context, id string) (*tickets.Ticket, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("ticket repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, selectTicket+`
WHERE t.id = $1
LIMIT 1`, id)
	return scanTicket(row)
}

// List returns tickets filtered by branch and status, newest first.
func (r *TicketRepository) List(ctx context.Context, branchID, status string) ([]tickets.Ticket, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("ticket repo: nil db")
	}

	var conditions []string
	var args []any
	if branchID != "" {
		args = append(args, branchID)
		conditions = append(conditions, "t.branch_id = $"+strconv.Itoa(len(args)))
	}
	if status != "" {
		args = append(args, status)
		conditions = append(conditions, "t.status = $"+strconv.Itoa(len(args)))
	}

	query := selectTicket
	if len(conditions) > 0 {
		query += "\nWHERE " + strings.Join(conditions, " AND ")
	}
	query += "\nORDER BY t.created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []tickets.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		if ticket != nil {
			result = append(result, *ticket)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Assign records the assignee and moves the ticket to assigned.
func (r *TicketRepository) Assign(ctx context.Context, id, assigneeID string, at time.Time) error {
	if r == nil || r.db == nil {
		return errors.New("ticket repo: nil db")
	}
	result, err := r.db.ExecContext(ctx, `
UPDATE tickets
SET assigned_to = $2, status = $3, assigned_at = $4, updated_at = $4
WHERE id = $1`,
		id, assigneeID, tickets.StatusAssigned, at)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// UpdateStatus moves the ticket to a new status and stamps the matching
// timestamp column.
func (r *TicketRepository) UpdateStatus(ctx context.Context, id, status string, at time.Time) error {
	if r == nil || r.db == nil {
		return errors.New("ticket repo: nil db")
	}

	query := `
UPDATE tickets
SET status = $2, updated_at = $3
WHERE id = $1`
	switch status {
	case tickets.StatusResolved:
		query = `
UPDATE tickets
SET status = $2, resolved_at = $3, updated_at = $3
WHERE id = $1`
	case tickets.StatusClosed:
		query = `
UPDATE tickets
SET status = $2, closed_at = $3, updated_at = $3
WHERE id = $1`
	}

	result, err := r.db.ExecContext(ctx, query, id, status, at)
	if err != nil {
		return err
	}
	return requireRow(result)
}

const selectTicket = `
SELECT t.id, t.branch_id, COALESCE(b.name, ''), t.reported_by, t.assigned_to, COALESCE(u.name, ''),
       t.title, t.description, t.priority, t.status,
       t.created_at, t.updated_at, t.assigned_at, t.resolved_at, t.closed_at
FROM tickets t
LEFT JOIN branches b ON b.id = t.branch_id
LEFT JOIN users u ON u.id = t.assigned_to`

func scanTicket(row rowScanner) (*tickets.Ticket, error) {
	var ticket tickets.Ticket
	var reportedBy, assignedTo sql.NullString
	var assignedAt, resolvedAt, closedAt sql.NullTime
	err := row.Scan(
		&ticket.ID,
		&ticket.BranchID,
		&ticket.BranchName,
		&reportedBy,
		&assignedTo,
		&ticket.AssignedName,
		&ticket.Title,
		&ticket.Description,
		&ticket.Priority,
		&ticket.Status,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&assignedAt,
		&resolvedAt,
		&closedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if reportedBy.Valid {
		ticket.ReportedBy = reportedBy.String
	}
	if assignedTo.Valid {
		ticket.AssignedTo = assignedTo.String
	}
	ticket.CreatedAt = ticket.CreatedAt.UTC()
	ticket.UpdatedAt = ticket.UpdatedAt.UTC()
	ticket.AssignedAt = timePtr(assignedAt)
	ticket.ResolvedAt = timePtr(resolvedAt)
	ticket.ClosedAt = timePtr(closedAt)
	return &ticket, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func requireRow(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func nullString(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}

func timePtr(value sql.NullTime) *time.Time {
	if !value.Valid {
		return nil
	}
	utc := value.Time.UTC()
	return &utc
}
