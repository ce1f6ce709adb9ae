package database

import (
	"context"

	"github.com/google/uuid"
)

const createStaff = `
INSERT INTO staff (email, full_name, password_hash, role)
VALUES ($1, $2, $3, $4)
ON CONFLICT (email) DO UPDATE SET full_name = EXCLUDED.full_name, updated_at = now()
RETURNING id, email, full_name, password_hash, role, is_active, created_at, updated_at`

type CreateStaffParams struct {
	Email        string
	FullName     string
	PasswordHash string
	Role         StaffRole
}

// CreateStaff inserts a staff member, or refreshes the name of an existing
// one with the same email.
func (q *Queries) CreateStaff(ctx context.Context, arg CreateStaffParams) (Staff, error) {
	row := q.db.QueryRow(ctx, createStaff,
		arg.Email,
		arg.FullName,
		arg.PasswordHash,
		arg.Role,
	)
	var i Staff
	err := row.Scan(
		&i.ID,
		&i.Email,
		&i.FullName,
		&i.PasswordHash,
		&i.Role,
		&i.IsActive,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getStaffByEmail = `
SELECT id, email, full_name, password_hash, role, is_active, created_at, updated_at
FROM staff
WHERE email = $1 AND is_active = true`

func (q *Queries) GetStaffByEmail(ctx context.Context, email string) (Staff, error) {
	row := q.db.QueryRow(ctx, getStaffByEmail, email)
	var i Staff
	err := row.Scan(
		&i.ID,
		&i.Email,
		&i.FullName,
		&i.PasswordHash,
		&i.Role,
		&i.IsActive,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getStaffByID = `
SELECT id, email, full_name, password_hash, role, is_active, created_at, updated_at
FROM staff
WHERE id = $1 AND is_active = true`

func (q *Queries) GetStaffByID(ctx context.Context, id uuid.UUID) (Staff, error) {
	row := q.db.QueryRow(ctx, getStaffByID, id)
	var i Staff
	err := row.Scan(
		&i.ID,
		&i.Email,
		&i.FullName,
		&i.PasswordHash,
		&i.Role,
		&i.IsActive,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}
