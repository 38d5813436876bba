package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/philip-ks/eduforge/core"
	"github.com/philip-ks/eduforge/core/auth"
	"github.com/philip-ks/eduforge/core/tenant"
	"github.com/philip-ks/eduforge/core/user"
)

type userRepository struct {
	db core.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db core.DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...user.User) error {
	query := `SELECT COUNT(*) FROM users WHERE email = $1`
	args := []interface{}{email}
	if len(excludedUsers) > 0 {
		ids := make([]string, 0, len(excludedUsers))
		for _, usr := range excludedUsers {
			args = append(args, usr.ID)
			ids = append(ids, fmt.Sprintf("$%d", len(args)))
		}
		query += fmt.Sprintf(" AND id NOT IN (%s)", strings.Join(ids, ","))
	}

	var count int
	if err := repo.db.GetContext(ctx, &count, query, args...); err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if count > 0 {
		return user.ErrEmailExists
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = uuid.NewString()
	const query = `
INSERT INTO users (id, email, phone, role, institution_id, password_hash, is_active, created_at, updated_at)
VALUES (:id, :email, :phone, :role, :institution_id, :password_hash, :is_active, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, repo.db, query, usr); err != nil {
		return user.User{}, errors.Wrap(err, "creating user")
	}
	return usr, nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	var usr user.User
	err := repo.db.GetContext(ctx, &usr, `SELECT * FROM users WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return user.User{}, user.ErrNotFound
	}
	return usr, errors.Wrap(err, "getting user by id")
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	var usr user.User
	err := repo.db.GetContext(ctx, &usr, `SELECT * FROM users WHERE email = $1`, email)
	if err == sql.ErrNoRows {
		return user.User{}, user.ErrNotFound
	}
	return usr, errors.Wrap(err, "getting user by email")
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	const query = `
UPDATE users
SET email = :email, phone = :phone, role = :role, institution_id = :institution_id,
    password_hash = :password_hash, is_active = :is_active, updated_at = :updated_at
WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, repo.db, query, usr)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}

func (repo *userRepository) SetLastLogin(ctx context.Context, usr user.User, at time.Time) (user.User, error) {
	if _, err := repo.db.ExecContext(ctx, `UPDATE users SET last_login = $1 WHERE id = $2`, at, usr.ID); err != nil {
		return user.User{}, errors.Wrap(err, "setting last login")
	}
	usr.LastLogin.SetValid(at)
	return usr, nil
}

func (repo *userRepository) CountStudents(ctx context.Context, scope tenant.Scope) (int, error) {
	query := `SELECT COUNT(*) FROM users WHERE role = $1`
	args := []interface{}{auth.RoleStudent}
	query, args = scopeQuery(query, args, scope)

	var count int
	err := repo.db.GetContext(ctx, &count, query, args...)
	return count, errors.Wrap(err, "counting students")
}

func (repo *userRepository) QueryStudents(ctx context.Context, scope tenant.Scope, filter user.QueryFilter) ([]user.User, error) {
	query := `SELECT * FROM users WHERE role = $1`
	args := []interface{}{auth.RoleStudent}
	query, args = scopeQuery(query, args, scope)

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += fmt.Sprintf(" AND (email ILIKE $%d OR phone ILIKE $%d)", len(args), len(args))
	}
	query += " ORDER BY " + studentOrdering.String()
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	var users []user.User
	err := repo.db.SelectContext(ctx, &users, query, args...)
	return users, errors.Wrap(err, "querying students")
}
