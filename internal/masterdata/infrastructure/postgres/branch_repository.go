package postgres

import (
	"context"
	"database/sql"
	"errors"

	masterdata "helpdesk-cloud/internal/masterdata/domain"
)

// BranchRepository persists branches.
type BranchRepository struct {
	db *sql.DB
}

// NewBranchRepository constructs a repository.
func NewBranchRepository(db *sql.DB) *BranchRepository {
	return &BranchRepository{db: db}
}

// Get fetches a branch by id.
func (r *BranchRepository) Get(ctx context.Context, id string) (*masterdata.Branch, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("branch repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT id, name, address, phone, active, created_at
FROM branches
WHERE id = $1
LIMIT 1`, id)
	var branch masterdata.Branch
	err := row.Scan(&branch.ID, &branch.Name, &branch.Address, &branch.Phone, &branch.Active, &branch.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	branch.CreatedAt = branch.CreatedAt.UTC()
	return &branch, nil
}

// ListActive returns all active branches.
func (r *BranchRepository) ListActive(ctx context.Context) ([]masterdata.Branch, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("branch repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, name, address, phone, active, created_at
FROM branches
WHERE active
ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []masterdata.Branch
	for rows.Next() {
		var branch masterdata.Branch
		if err := rows.Scan(&branch.ID, &branch.Name, &branch.Address, &branch.Phone, &branch.Active, &branch.CreatedAt); err != nil {
			return nil, err
		}
		branch.CreatedAt = branch.CreatedAt.UTC()
		result = append(result, branch)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Create inserts a branch.
func (r *BranchRepository) Create(ctx context.Context, branch *masterdata.Branch) error {
	if r == nil || r.db == nil {
		return errors.New("branch repo: nil db")
	}
	if branch == nil {
		return errors.New("branch repo: nil branch")
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO branches (id, name, address, phone, active, created_at)
VALUES ($1,$2,$3,$4,$5,$6)`,
		branch.ID, branch.Name, branch.Address, branch.Phone, branch.Active, branch.CreatedAt)
	return err
}
