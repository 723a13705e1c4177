package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jobtrackhq/jobtrack/internal/models"
)

// ==========================
// JobRepo
// ==========================
// Every query is filtered by created_by. A job that exists under a different
// owner is indistinguishable from one that does not exist at all.
type JobRepo struct {
	DB *sql.DB
}

func NewJobRepo(db *sql.DB) *JobRepo {
	return &JobRepo{DB: db}
}

const jobColumns = "id, company, position, status, created_by, created_at, updated_at"

// JobUpdate carries a partial update. Nil fields are left unchanged.
type JobUpdate struct {
	Company  *string
	Position *string
	Status   *string
}

// ==========================
// Create Job
// ==========================
func (r *JobRepo) Create(ctx context.Context, ownerID int, company, position, status string) (models.Job, error) {
	var job models.Job
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO jobs (company, position, status, created_by)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+jobColumns,
		company, position, status, ownerID,
	).Scan(
		&job.ID,
		&job.Company,
		&job.Position,
		&job.Status,
		&job.CreatedBy,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	return job, err
}

// ==========================
// Get Job (owner-scoped)
// ==========================
func (r *JobRepo) Get(ctx context.Context, ownerID, id int) (models.Job, error) {
	var job models.Job
	err := r.DB.QueryRowContext(ctx,
		`SELECT `+jobColumns+`
		 FROM jobs
		 WHERE id = $1 AND created_by = $2`,
		id, ownerID,
	).Scan(
		&job.ID,
		&job.Company,
		&job.Position,
		&job.Status,
		&job.CreatedBy,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Job{}, ErrNotFound
	}
	return job, err
}

// ==========================
// List Jobs By Owner (paginated)
// ==========================
// Ordered by creation time (id as tiebreak) so pagination is stable.
func (r *JobRepo) ListByOwner(ctx context.Context, ownerID, limit, offset int) ([]models.Job, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+jobColumns+`
		 FROM jobs
		 WHERE created_by = $1
		 ORDER BY created_at, id
		 LIMIT $2 OFFSET $3`,
		ownerID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []models.Job
	for rows.Next() {
		var j models.Job
		if err := rows.Scan(&j.ID, &j.Company, &j.Position, &j.Status, &j.CreatedBy, &j.CreatedAt, &j.UpdatedAt); err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// ==========================
// Count Jobs By Owner
// ==========================
func (r *JobRepo) CountByOwner(ctx context.Context, ownerID int) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM jobs WHERE created_by = $1`,
		ownerID,
	).Scan(&count)
	return count, err
}

// ==========================
// Update Job (owner-scoped, partial)
// ==========================
// created_by is never part of the SET list; updated_at is refreshed on
// every successful write.
func (r *JobRepo) Update(ctx context.Context, ownerID, id int, upd JobUpdate) (models.Job, error) {
	var job models.Job
	err := r.DB.QueryRowContext(ctx,
		`UPDATE jobs
		 SET company = COALESCE($1, company),
		     position = COALESCE($2, position),
		     status = COALESCE($3, status),
		     updated_at = NOW()
		 WHERE id = $4 AND created_by = $5
		 RETURNING `+jobColumns,
		upd.Company, upd.Position, upd.Status, id, ownerID,
	).Scan(
		&job.ID,
		&job.Company,
		&job.Position,
		&job.Status,
		&job.CreatedBy,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Job{}, ErrNotFound
	}
	return job, err
}

// ==========================
// Delete Job (owner-scoped)
// ==========================
// Returns the deleted record so the handler can echo it back.
func (r *JobRepo) Delete(ctx context.Context, ownerID, id int) (models.Job, error) {
	var job models.Job
	err := r.DB.QueryRowContext(ctx,
		`DELETE FROM jobs
		 WHERE id = $1 AND created_by = $2
		 RETURNING `+jobColumns,
		id, ownerID,
	).Scan(
		&job.ID,
		&job.Company,
		&job.Position,
		&job.Status,
		&job.CreatedBy,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Job{}, ErrNotFound
	}
	return job, err
}
