package postgres

import (
	"context"
	"database/sql"
	"errors"

	masterdata "helpdesk-cloud/internal/masterdata/domain"
)

// UserRepository persists user accounts.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository constructs a repository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Get fetches a user by id.
func (r *UserRepository) Get(ctx context.Context, id string) (*masterdata.User, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("user repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT id, name, phone, role, branch_id, active, created_at
FROM users
WHERE id = $1
LIMIT 1`, id)
	return scanUser(row)
}

// ListByBranch returns active users attached to a branch.
func (r *UserRepository) ListByBranch(ctx context.Context, branchID string) ([]masterdata.User, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("user repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, name, phone, role, branch_id, active, created_at
FROM users
WHERE branch_id = $1 AND active
ORDER BY name ASC`, branchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []masterdata.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		if user != nil {
			result = append(result, *user)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*masterdata.User, error) {
	var user masterdata.User
	var branchID sql.NullString
	err := row.Scan(&user.ID, &user.Name, &user.Phone, &user.Role, &branchID, &user.Active, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if branchID.Valid {
		user.BranchID = branchID.String
	}
	user.CreatedAt = user.CreatedAt.UTC()
	return &user, nil
}
