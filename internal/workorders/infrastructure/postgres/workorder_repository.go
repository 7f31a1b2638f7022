package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	workorders "helpdesk-cloud/internal/workorders/domain"
)

// WorkOrderRepository persists work orders and their reports.
type WorkOrderRepository struct {
	db *sql.DB
}

// NewWorkOrderRepository constructs a repository.
func NewWorkOrderRepository(db *sql.DB) *WorkOrderRepository {
	return &WorkOrderRepository{db: db}
}

// Create inserts a new work order.
func (r *WorkOrderRepository) Create(ctx context.Context, order *workorders.WorkOrder) error {
	if r == nil || r.db == nil {
		return errors.New("work order repo: nil db")
	}
	if order == nil {
		return errors.New("work order repo: nil order")
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO work_orders (id, ticket_id, branch_id, assigned_to, description, status, scheduled_for, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		order.ID,
		nullString(order.TicketID),
		order.BranchID,
		nullString(order.AssignedTo),
		order.Description,
		order.Status,
		nullTime(order.ScheduledFor),
		order.CreatedAt,
		order.UpdatedAt,
	)
	return err
}

// Get fetches one work order with its report, if filed.
func (r *WorkOrderRepository) Get(ctx context.Context, id string) (*workorders.WorkOrder, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("work order repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, selectWorkOrder+`
WHERE w.id = $1
LIMIT 1`, id)
	order, err := scanWorkOrder(row)
	if err != nil || order == nil {
		return order, err
	}
	report, err := r.getReport(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Report = report
	return order, nil
}

// List returns work orders filtered by branch and status, newest first.
func (r *WorkOrderRepository) List(ctx context.Context, branchID, status string) ([]workorders.WorkOrder, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("work order repo: nil db")
	}

	var conditions []string
	var args []any
	if branchID != "" {
		args = append(args, branchID)
		conditions = append(conditions, "w.branch_id = $"+strconv.Itoa(len(args)))
	}
	if status != "" {
		args = append(args, status)
		conditions = append(conditions, "w.status = $"+strconv.Itoa(len(args)))
	}

	query := selectWorkOrder
	if len(conditions) > 0 {
		query += "\nWHERE " + strings.Join(conditions, " AND ")
	}
	query += "\nORDER BY w.created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []workorders.WorkOrder
	for rows.Next() {
		order, err := scanWorkOrder(rows)
		if err != nil {
			return nil, err
		}
		if order != nil {
			result = append(result, *order)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateStatus transitions a work order and stamps the matching timestamp.
func (r *WorkOrderRepository) UpdateStatus(ctx context.Context, id, status string, at time.Time) error {
	if r == nil || r.db == nil {
		return errors.New("work order repo: nil db")
	}

	query := `
UPDATE work_orders
SET status = $2, updated_at = $3
WHERE id = $1`
	switch status {
	case workorders.StatusInProgress:
		query = `
UPDATE work_orders
SET status = $2, started_at = $3, updated_at = $3
WHERE id = $1`
	case workorders.StatusDone:
		query = `
UPDATE work_orders
SET status = $2, completed_at = $3, updated_at = $3
WHERE id = $1`
	}

	result, err := r.db.ExecContext(ctx, query, id, status, at)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// FileReport stores the work report and marks the order done in one
// transaction.
func (r *WorkOrderRepository) FileReport(ctx context.Context, report *workorders.WorkReport) error {
	if r == nil || r.db == nil {
		return errors.New("work order repo: nil db")
	}
	if report == nil {
		return errors.New("work order repo: nil report")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx, `
INSERT INTO work_reports (id, work_order_id, filed_by, summary, materials_used, photo_url, labor_hours, filed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		report.ID,
		report.WorkOrderID,
		nullString(report.FiledBy),
		report.Summary,
		report.MaterialsUsed,
		report.PhotoURL,
		report.LaborHours,
		report.FiledAt,
	)
	if err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, `
UPDATE work_orders
SET status = $2, completed_at = $3, updated_at = $3
WHERE id = $1`,
		report.WorkOrderID, workorders.StatusDone, report.FiledAt)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return tx.Commit()
}

const selectWorkOrder = `
SELECT w.id, w.ticket_id, w.branch_id, COALESCE(b.name, ''), w.assigned_to, COALESCE(u.name, ''),
       w.description, w.status, w.scheduled_for,
       w.created_at, w.updated_at, w.started_at, w.completed_at
FROM work_orders w
LEFT JOIN branches b ON b.id = w.branch_id
LEFT JOIN users u ON u.id = w.assigned_to`

func scanWorkOrder(row rowScanner) (*workorders.WorkOrder, error) {
	var order workorders.WorkOrder
	var ticketID, assignedTo sql.NullString
	var scheduledFor, startedAt, completedAt sql.NullTime
	err := row.Scan(
		&order.ID,
		&ticketID,
		&order.BranchID,
		&order.BranchName,
		&assignedTo,
		&order.AssignedName,
		&order.Description,
		&order.Status,
		&scheduledFor,
		&order.CreatedAt,
		&order.UpdatedAt,
		&startedAt,
		&completedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if ticketID.Valid {
		order.TicketID = ticketID.String
	}
	if assignedTo.Valid {
		order.AssignedTo = assignedTo.String
	}
	order.CreatedAt = order.CreatedAt.UTC()
	order.UpdatedAt = order.UpdatedAt.UTC()
	order.ScheduledFor = timePtr(scheduledFor)
	order.StartedAt = timePtr(startedAt)
	order.CompletedAt = timePtr(completedAt)
	return &order, nil
}

func (r *WorkOrderRepository) getReport(ctx context.Context, workOrderID string) (*workorders.WorkReport, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, work_order_id, filed_by, summary, materials_used, photo_url, labor_hours, filed_at
FROM work_reports
WHERE work_order_id = $1
ORDER BY filed_at DESC
LIMIT 1`, workOrderID)

	var report workorders.WorkReport
	var filedBy sql.NullString
	var laborHours decimal.NullDecimal
	err := row.Scan(&report.ID, &report.WorkOrderID, &filedBy, &report.Summary, &report.MaterialsUsed, &report.PhotoURL, &laborHours, &report.FiledAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if filedBy.Valid {
		report.FiledBy = filedBy.String
	}
	if laborHours.Valid {
		report.LaborHours = laborHours.Decimal
	}
	report.FiledAt = report.FiledAt.UTC()
	return &report, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func nullString(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}

func nullTime(value *time.Time) sql.NullTime {
	if value == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *value, Valid: true}
}

func timePtr(value sql.NullTime) *time.Time {
	if !value.Valid {
		return nil
	}
	utc := value.Time.UTC()
	return &utc
}
