package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/philip-ks/eduforge/core"
	"github.com/philip-ks/eduforge/core/request"
	"github.com/philip-ks/eduforge/core/tenant"
)

type requestRepository struct {
	db core.DB
}

var _ request.Repository = (*requestRepository)(nil) // interface compliance check

func NewRequestRepository(db core.DB) request.Repository {
	return &requestRepository{db: db}
}

func (repo *requestRepository) CreateRequest(ctx context.Context, req request.Request) error {
	const query = `
INSERT INTO requests (id, display_id, student_id, institution_id, title, description, status, submitted_at)
VALUES (:id, :display_id, :student_id, :institution_id, :title, :description, :status, :submitted_at)`
	_, err := sqlx.NamedExecContext(ctx, repo.db, query, req)
	return errors.Wrap(err, "inserting request")
}

func (repo *requestRepository) GetRequestByID(ctx context.Context, scope tenant.Scope, id string) (request.Request, error) {
	query := `SELECT * FROM requests WHERE id = $1`
	args := []interface{}{id}
	query, args = scopeQuery(query, args, scope)

	var req request.Request
	err := repo.db.GetContext(ctx, &req, query, args...)
	if err == sql.ErrNoRows {
		return request.Request{}, request.ErrNotFound
	}
	return req, errors.Wrap(err, "getting request")
}

func (repo *requestRepository) QueryRequestsByStudent(ctx context.Context, studentID string) ([]request.Request, error) {
	var reqs []request.Request
	err := repo.db.SelectContext(ctx, &reqs,
		`SELECT * FROM requests WHERE student_id = $1 ORDER BY submitted_at DESC`, studentID)
	return reqs, errors.Wrap(err, "querying student requests")
}

func (repo *requestRepository) QueryRequests(ctx context.Context, scope tenant.Scope, filter request.QueryFilter) ([]request.Request, error) {
	query := `SELECT * FROM requests WHERE 1=1`
	var args []interface{}
	query, args = scopeQuery(query, args, scope)

	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	query += " ORDER BY " + requestOrdering.String()
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	var reqs []request.Request
	err := repo.db.SelectContext(ctx, &reqs, query, args...)
	return reqs, errors.Wrap(err, "querying requests")
}

func (repo *requestRepository) CountRequests(ctx context.Context, scope tenant.Scope, status string) (int, error) {
	query := `SELECT COUNT(*) FROM requests WHERE 1=1`
	var args []interface{}
	query, args = scopeQuery(query, args, scope)
	if status != "" {
		args = append(args, status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}

	var count int
	err := repo.db.GetContext(ctx, &count, query, args...)
	return count, errors.Wrap(err, "counting requests")
}

func (repo *requestRepository) UpdateRequestStatus(ctx context.Context, scope tenant.Scope, id, status string) (request.Request, error) {
	query := `UPDATE requests SET status = $1 WHERE id = $2`
	args := []interface{}{status, id}
	query, args = scopeQuery(query, args, scope)
	query += ` RETURNING *`

	var req request.Request
	err := repo.db.GetContext(ctx, &req, query, args...)
	if err == sql.ErrNoRows {
		return request.Request{}, request.ErrNotFound
	}
	return req, errors.Wrap(err, "updating request status")
}
