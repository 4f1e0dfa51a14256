package postgres

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fairyhunter13/job-matcher/internal/domain"
)

// JobRepo loads job postings and serves as the candidate pool when the vector index is unavailable.
type JobRepo struct{ Pool PgxPool }

// NewJobRepo constructs a JobRepo with the given pool.
func NewJobRepo(p PgxPool) *JobRepo { return &JobRepo{Pool: p} }

// Get loads a job by id.
func (r *JobRepo) Get(ctx domain.Context, id string) (domain.Job, error) {
	tracer := otel.Tracer("repo.jobs")
	ctx, span := tracer.Start(ctx, "jobs.Get")
	defer span.End()
	span.SetAttributes(attribute.String("job.id", id))

	q := `SELECT id, title, company, description, requirements, location, remote_type, employment_type,
	salary, industry, posted_at, updated_at FROM jobs WHERE id=$1`
	var j domain.Job
	var remote string
	var salary []byte
	err := r.Pool.QueryRow(ctx, q, id).Scan(&j.ID, &j.Title, &j.Company, &j.Description, &j.Requirements,
		&j.Location, &remote, &j.EmploymentType, &salary, &j.Industry, &j.PostedAt, &j.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Job{}, fmt.Errorf("op=job.get: %w", domain.ErrNotFound)
		}
		return domain.Job{}, fmt.Errorf("op=job.get: %w", err)
	}
	j.RemoteType = domain.RemoteType(remote)
	if err := decodeJSON(salary, &j.Salary); err != nil {
		return domain.Job{}, fmt.Errorf("op=job.get: salary: %w", err)
	}
	return j, nil
}

// Upsert inserts or replaces a job posting. UpdatedAt defaults to now.
func (r *JobRepo) Upsert(ctx domain.Context, j domain.Job) error {
	tracer := otel.Tracer("repo.jobs")
	ctx, span := tracer.Start(ctx, "jobs.Upsert")
	defer span.End()

	if j.ID == "" {
		return fmt.Errorf("op=job.upsert: %w: id required", domain.ErrInvalidArgument)
	}
	salary, err := json.Marshal(j.Salary)
	if err != nil {
		return fmt.Errorf("op=job.upsert: %w", err)
	}
	now := time.Now().UTC()
	posted := j.PostedAt
	if posted.IsZero() {
		posted = now
	}
	updated := j.UpdatedAt
	if updated.IsZero() {
		updated = now
	}
	q := `INSERT INTO jobs (id, title, company, description, requirements, location, remote_type, employment_type, salary, industry, posted_at, updated_at)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	ON CONFLICT (id)
	DO UPDATE SET title=EXCLUDED.title, company=EXCLUDED.company, description=EXCLUDED.description, requirements=EXCLUDED.requirements,
	location=EXCLUDED.location, remote_type=EXCLUDED.remote_type, employment_type=EXCLUDED.employment_type, salary=EXCLUDED.salary,
	industry=EXCLUDED.industry, posted_at=EXCLUDED.posted_at, updated_at=EXCLUDED.updated_at`
	_, err = r.Pool.Exec(ctx, q, j.ID, j.Title, j.Company, j.Description, j.Requirements, j.Location,
		string(j.RemoteType), j.EmploymentType, salary, j.Industry, posted, updated)
	if err != nil {
		return fmt.Errorf("op=job.upsert: %w", err)
	}
	return nil
}

// RecentJobIDs returns up to limit job ids, most recently updated first.
func (r *JobRepo) RecentJobIDs(ctx domain.Context, limit int) ([]string, error) {
	tracer := otel.Tracer("repo.jobs")
	ctx, span := tracer.Start(ctx, "jobs.RecentJobIDs")
	defer span.End()

	if limit <= 0 {
		return []string{}, nil
	}
	rows, err := r.Pool.Query(ctx, `SELECT id FROM jobs ORDER BY updated_at DESC, id LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("op=job.recent: %w", err)
	}
	defer rows.Close()
	ids := make([]string, 0, limit)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("op=job.recent: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("op=job.recent: %w", err)
	}
	return ids, nil
}
