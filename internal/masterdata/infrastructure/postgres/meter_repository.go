package postgres

import (
	"context"
	"database/sql"
	"errors"

	masterdata "helpdesk-cloud/internal/masterdata/domain"
)

// MeterRepository persists electricity meters.
type MeterRepository struct {
	db *sql.DB
}

// NewMeterRepository constructs a repository.
func NewMeterRepository(db *sql.DB) *MeterRepository {
	return &MeterRepository{db: db}
}

// Get fetches a meter by id.
func (r *MeterRepository) Get(ctx context.Context, id string) (*masterdata.ElectricityMeter, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("meter repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT id, branch_id, name, meter_number, location, active, created_at
FROM electricity_meters
WHERE id = $1
LIMIT 1`, id)
	var meter masterdata.ElectricityMeter
	err := row.Scan(&meter.ID, &meter.BranchID, &meter.Name, &meter.MeterNumber, &meter.Location, &meter.Active, &meter.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	meter.CreatedAt = meter.CreatedAt.UTC()
	return &meter, nil
}

// ListActiveByBranch returns active meters for a branch.
func (r *MeterRepository) ListActiveByBranch(ctx context.Context, branchID string) ([]masterdata.ElectricityMeter, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("meter repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, branch_id, name, meter_number, location, active, created_at
FROM electricity_meters
WHERE branch_id = $1 AND active
ORDER BY name ASC`, branchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []masterdata.ElectricityMeter
	for rows.Next() {
		var meter masterdata.ElectricityMeter
		if err := rows.Scan(&meter.ID, &meter.BranchID, &meter.Name, &meter.MeterNumber, &meter.Location, &meter.Active, &meter.CreatedAt); err != nil {
			return nil, err
		}
		meter.CreatedAt = meter.CreatedAt.UTC()
		result = append(result, meter)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Create inserts a meter.
func (r *MeterRepository) Create(ctx context.Context, meter *masterdata.ElectricityMeter) error {
	if r == nil || r.db == nil {
		return errors.New("meter repo: nil db")
	}
	if meter == nil {
		return errors.New("meter repo: nil meter")
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO electricity_meters (id, branch_id, name, meter_number, location, active, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		meter.ID, meter.BranchID, meter.Name, meter.MeterNumber, meter.Location, meter.Active, meter.CreatedAt)
	return err
}
