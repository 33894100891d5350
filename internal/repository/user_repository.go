package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/travel-booking/internal/model"
)

// UserRepo reads the users table.  Users are provisioned by the identity
// provider, so there is no write path here.
type UserRepo struct {
	c conn
}

// Get fetches a user by id.
func (r *UserRepo) Get(ctx context.Context, id string) (model.User, error) {
	var (
		u        model.User
		fullName sql.NullString
	)
	err := r.c.queryRow(ctx,
		"SELECT id,email,full_name,role,created_at FROM users WHERE id=?",
		id).Scan(&u.ID, &u.Email, &fullName, &u.Role, &u.CreatedAt)
	if err != nil {
		return model.User{}, mapError(err)
	}
	if fullName.Valid {
		n := fullName.String
		u.FullName = &n
	}
	return u, nil
}
