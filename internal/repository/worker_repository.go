package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/workforce-service/internal/domain"
)

// WorkerFilter narrows worker listings. Zero values match everything.
type WorkerFilter struct {
	Role       *domain.Role
	TeamIDs    []string
	ActiveOnly bool
}

// Matches applies the filter in memory.
func (f WorkerFilter) Matches(w domain.Worker) bool {
	if f.Role != nil && w.Role != *f.Role {
		return false
	}
	if f.ActiveOnly && !w.Active {
		return false
	}
	if len(f.TeamIDs) > 0 {
		if w.TeamID == nil {
			return false
		}
		for _, id := range f.TeamIDs {
			if id == *w.TeamID {
				return true
			}
		}
		return false
	}
	return true
}

// WorkerRepository persists workers and their credentials.
type WorkerRepository interface {
	Create(ctx context.Context, worker *domain.Worker) error
	Update(ctx context.Context, worker *domain.Worker) error
	GetByID(ctx context.Context, id string) (*domain.Worker, error)
	GetByEmail(ctx context.Context, email string) (*domain.Worker, error)
	List(ctx context.Context, filter WorkerFilter) ([]domain.Worker, error)
}

type workerRepository struct {
	pool *pgxpool.Pool
}

// NewWorkerRepository constructs repository.
func NewWorkerRepository(pool *pgxpool.Pool) WorkerRepository {
	return &workerRepository{pool: pool}
}

const workerColumns = `id, name, email, password_hash, role, team_id, position, skills, managed_team_ids, active, created_at, updated_at`

func (r *workerRepository) Create(ctx context.Context, worker *domain.Worker) error {
	if worker.ID == "" {
		worker.ID = uuid.NewString()
	}
	const query = `
        INSERT INTO workers (id, name, email, password_hash, role, team_id, position, skills, managed_team_ids, active)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING created_at, updated_at`
	err := conn(ctx, r.pool).QueryRow(ctx, query,
		worker.ID,
		worker.Name,
		strings.ToLower(worker.Email),
		worker.PasswordHash,
		worker.Role,
		worker.TeamID,
		worker.Position,
		nonNil(worker.Skills),
		nonNil(worker.ManagedTeamIDs),
		worker.Active,
	).Scan(&worker.CreatedAt, &worker.UpdatedAt)
	return mapWriteError(err)
}

func (r *workerRepository) Update(ctx context.Context, worker *domain.Worker) error {
	const query = `
        UPDATE workers SET name=$1, email=$2, password_hash=$3, role=$4, team_id=$5, position=$6,
            skills=$7, managed_team_ids=$8, active=$9, updated_at=NOW()
        WHERE id=$10`
	cmd, err := conn(ctx, r.pool).Exec(ctx, query,
		worker.Name,
		strings.ToLower(worker.Email),
		worker.PasswordHash,
		worker.Role,
		worker.TeamID,
		worker.Position,
		nonNil(worker.Skills),
		nonNil(worker.ManagedTeamIDs),
		worker.Active,
		worker.ID,
	)
	if err != nil {
		return mapWriteError(err)
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *workerRepository) GetByID(ctx context.Context, id string) (*domain.Worker, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	return r.fetchSingle(ctx, `SELECT `+workerColumns+` FROM workers WHERE id=$1`, id)
}

func (r *workerRepository) GetByEmail(ctx context.Context, email string) (*domain.Worker, error) {
	return r.fetchSingle(ctx, `SELECT `+workerColumns+` FROM workers WHERE email=$1`, strings.ToLower(email))
}

func (r *workerRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Worker, error) {
	worker, err := scanWorker(conn(ctx, r.pool).QueryRow(ctx, query, arg))
	if err != nil {
		return nil, err
	}
	return &worker, nil
}

func (r *workerRepository) List(ctx context.Context, filter WorkerFilter) ([]domain.Worker, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Role != nil {
		args = append(args, *filter.Role)
		clauses = append(clauses, fmt.Sprintf("role=$%d", len(args)))
	}
	if filter.ActiveOnly {
		clauses = append(clauses, "active=TRUE")
	}
	if len(filter.TeamIDs) > 0 {
		args = append(args, filter.TeamIDs)
		clauses = append(clauses, fmt.Sprintf("team_id::text = ANY($%d)", len(args)))
	}

	query := `SELECT ` + workerColumns + ` FROM workers WHERE ` + strings.Join(clauses, " AND ") + ` ORDER BY name, id`
	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Worker
	for rows.Next() {
		worker, err := scanWorker(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, worker)
	}
	return result, rows.Err()
}

func scanWorker(row pgx.Row) (domain.Worker, error) {
	var w domain.Worker
	err := row.Scan(
		&w.ID,
		&w.Name,
		&w.Email,
		&w.PasswordHash,
		&w.Role,
		&w.TeamID,
		&w.Position,
		&w.Skills,
		&w.ManagedTeamIDs,
		&w.Active,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	return w, err
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
