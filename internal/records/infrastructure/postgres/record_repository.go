package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	records "helpdesk-cloud/internal/records/domain"
)

// RecordRepository persists daily records with their readings.
type RecordRepository struct {
	db *sql.DB
}

// NewRecordRepository constructs a repository.
func NewRecordRepository(db *sql.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// Create inserts a record and its readings in one transaction.
func (r *RecordRepository) Create(ctx context.Context, record *records.DailyRecord) error {
	if r == nil || r.db == nil {
		return errors.New("record repo: nil db")
	}
	if record == nil {
		return errors.New("record repo: nil record")
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
INSERT INTO daily_records (id, branch_id, submitted_by, customer_count, created_at)
VALUES ($1,$2,$3,$4,$5)`,
		record.ID, record.BranchID, record.SubmittedBy, record.CustomerCount, record.CreatedAt)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	for _, reading := range record.UtilityReadings {
		_, err := tx.ExecContext(ctx, `
INSERT INTO utility_readings (
	id, record_id, category, sub_type, location, meter_value, photo_url, stove_type, gas_type
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			reading.ID, record.ID, reading.Category, reading.SubType, nullString(reading.Location),
			nullDecimal(reading.MeterValue), nullString(reading.PhotoURL), nullString(reading.StoveType), nullString(reading.GasType))
		if err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	for _, reading := range record.ElectricityReadings {
		_, err := tx.ExecContext(ctx, `
INSERT INTO electricity_readings (
	id, record_id, meter_id, wbp_value, lwbp_value, wbp_photo_url, lwbp_photo_url
) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			reading.ID, record.ID, reading.MeterID,
			nullDecimal(reading.WBPValue), nullDecimal(reading.LWBPValue),
			nullString(reading.WBPPhotoURL), nullString(reading.LWBPPhotoURL))
		if err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// ListForWindow returns records for a branch ordered ascending by
// created_at, with utility and electricity readings loaded. userID and
// the window bounds are optional filters. Ascending order is what the
// usage engine requires to thread carry-forward state.
func (r *RecordRepository) ListForWindow(ctx context.Context, branchID, userID string, from, to *time.Time) ([]records.DailyRecord, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("record repo: nil db")
	}
	if branchID == "" {
		return nil, errors.New("record repo: branch id required")
	}

	conditions := []string{"dr.branch_id = $1"}
	args := []any{branchID}
	if userID != "" {
		args = append(args, userID)
		conditions = append(conditions, fmt.Sprintf("dr.submitted_by = $%d", len(args)))
	}
	if from != nil {
		args = append(args, from.UTC())
		conditions = append(conditions, fmt.Sprintf("dr.created_at >= $%d", len(args)))
	}
	if to != nil {
		args = append(args, to.UTC())
		conditions = append(conditions, fmt.Sprintf("dr.created_at < $%d", len(args)))
	}
	where := strings.Join(conditions, " AND ")

	rows, err := r.db.QueryContext(ctx, `
SELECT dr.id, dr.branch_id, COALESCE(b.name, ''), dr.submitted_by, COALESCE(u.name, ''),
	dr.customer_count, dr.created_at
FROM daily_records dr
LEFT JOIN branches b ON b.id = dr.branch_id
LEFT JOIN users u ON u.id = dr.submitted_by
WHERE `+where+`
ORDER BY dr.created_at ASC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []records.DailyRecord
	index := make(map[string]int)
	for rows.Next() {
		var record records.DailyRecord
		if err := rows.Scan(&record.ID, &record.BranchID, &record.BranchName, &record.SubmittedBy,
			&record.SubmittedByName, &record.CustomerCount, &record.CreatedAt); err != nil {
			return nil, err
		}
		record.CreatedAt = record.CreatedAt.UTC()
		index[record.ID] = len(result)
		result = append(result, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, nil
	}

	if err := r.attachUtilityReadings(ctx, where, args, index, result); err != nil {
		return nil, err
	}
	if err := r.attachElectricityReadings(ctx, where, args, index, result); err != nil {
		return nil, err
	}
	return result, nil
}

// FindPrevious returns the latest record for the branch strictly before
// the given time, with readings loaded. Used to seed carry-forward
// state so a report window does not reset usage on its first row.
func (r *RecordRepository) FindPrevious(ctx context.Context, branchID string, before time.Time) (*records.DailyRecord, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("record repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT dr.id, dr.branch_id, COALESCE(b.name, ''), dr.submitted_by, COALESCE(u.name, ''),
	dr.customer_count, dr.created_at
FROM daily_records dr
LEFT JOIN branches b ON b.id = dr.branch_id
LEFT JOIN users u ON u.id = dr.submitted_by
WHERE dr.branch_id = $1 AND dr.created_at < $2
ORDER BY dr.created_at DESC
LIMIT 1`, branchID, before.UTC())

	var record records.DailyRecord
	err := row.Scan(&record.ID, &record.BranchID, &record.BranchName, &record.SubmittedBy,
		&record.SubmittedByName, &record.CustomerCount, &record.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	record.CreatedAt = record.CreatedAt.UTC()

	result := []records.DailyRecord{record}
	index := map[string]int{record.ID: 0}
	where := "dr.id = $1"
	args := []any{record.ID}
	if err := r.attachUtilityReadings(ctx, where, args, index, result); err != nil {
		return nil, err
	}
	if err := r.attachElectricityReadings(ctx, where, args, index, result); err != nil {
		return nil, err
	}
	return &result[0], nil
}

func (r *RecordRepository) attachUtilityReadings(ctx context.Context, where string, args []any, index map[string]int, result []records.DailyRecord) error {
	rows, err := r.db.QueryContext(ctx, `
SELECT ur.id, ur.record_id, ur.category, COALESCE(ur.sub_type, ''), COALESCE(ur.location, ''),
	ur.meter_value, COALESCE(ur.photo_url, ''), COALESCE(ur.stove_type, ''), COALESCE(ur.gas_type, '')
FROM utility_readings ur
JOIN daily_records dr ON dr.id = ur.record_id
WHERE `+where+`
ORDER BY dr.created_at ASC, ur.id ASC`, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var reading records.UtilityReading
		var value decimal.NullDecimal
		if err := rows.Scan(&reading.ID, &reading.RecordID, &reading.Category, &reading.SubType,
			&reading.Location, &value, &reading.PhotoURL, &reading.StoveType, &reading.GasType); err != nil {
			return err
		}
		if value.Valid {
			reading.MeterValue = &value.Decimal
		}
		if pos, ok := index[reading.RecordID]; ok {
			result[pos].UtilityReadings = append(result[pos].UtilityReadings, reading)
		}
	}
	return rows.Err()
}

func (r *RecordRepository) attachElectricityReadings(ctx context.Context, where string, args []any, index map[string]int, result []records.DailyRecord) error {
	rows, err := r.db.QueryContext(ctx, `
SELECT er.id, er.record_id, er.meter_id, COALESCE(m.name, ''), COALESCE(m.meter_number, ''),
	COALESCE(m.location, ''), er.wbp_value, er.lwbp_value,
	COALESCE(er.wbp_photo_url, ''), COALESCE(er.lwbp_photo_url, '')
FROM electricity_readings er
JOIN daily_records dr ON dr.id = er.record_id
LEFT JOIN electricity_meters m ON m.id = er.meter_id
WHERE `+where+`
ORDER BY dr.created_at ASC, er.id ASC`, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var reading records.ElectricityReading
		var wbp decimal.NullDecimal
		var lwbp decimal.NullDecimal
		if err := rows.Scan(&reading.ID, &reading.RecordID, &reading.MeterID, &reading.MeterName,
			&reading.MeterNumber, &reading.MeterLocation, &wbp, &lwbp,
			&reading.WBPPhotoURL, &reading.LWBPPhotoURL); err != nil {
			return err
		}
		if wbp.Valid {
			reading.WBPValue = &wbp.Decimal
		}
		if lwbp.Valid {
			reading.LWBPValue = &lwbp.Decimal
		}
		if pos, ok := index[reading.RecordID]; ok {
			result[pos].ElectricityReadings = append(result[pos].ElectricityReadings, reading)
		}
	}
	return rows.Err()
}

// HasRecordOn reports whether the branch submitted any record during the
// UTC day containing the given time.
func (r *RecordRepository) HasRecordOn(ctx context.Context, branchID string, day time.Time) (bool, error) {
	if r == nil || r.db == nil {
		return false, errors.New("record repo: nil db")
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)

	var exists bool
	err := r.db.QueryRowContext(ctx, `
SELECT EXISTS (
	SELECT 1 FROM daily_records
	WHERE branch_id = $1 AND created_at >= $2 AND created_at < $3
)`, branchID, start, end).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func nullString(value string) sql.NullString {
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}

func nullDecimal(value *decimal.Decimal) decimal.NullDecimal {
	if value == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *value, Valid: true}
}
