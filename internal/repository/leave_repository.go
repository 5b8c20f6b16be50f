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

// LeaveFilter narrows leave listings.
type LeaveFilter struct {
	WorkerIDs []string
	Statuses  []domain.LeaveStatus
}

// Matches applies the filter in memory.
func (f LeaveFilter) Matches(l domain.LeaveWindow) bool {
	if len(f.WorkerIDs) > 0 && !containsString(f.WorkerIDs, l.WorkerID) {
		return false
	}
	if len(f.Statuses) > 0 {
		for _, s := range f.Statuses {
			if s == l.Status {
				return true
			}
		}
		return false
	}
	return true
}

// LeaveRepository persists leave windows.
type LeaveRepository interface {
	Create(ctx context.Context, leave *domain.LeaveWindow) error
	Update(ctx context.Context, leave *domain.LeaveWindow) error
	GetByID(ctx context.Context, id string) (*domain.LeaveWindow, error)
	List(ctx context.Context, filter LeaveFilter) ([]domain.LeaveWindow, error)
}

type leaveRepository struct {
	pool *pgxpool.Pool
}

// NewLeaveRepository constructs repository.
func NewLeaveRepository(pool *pgxpool.Pool) LeaveRepository {
	return &leaveRepository{pool: pool}
}

const leaveColumns = `id, worker_id, type, start_date, end_date, reason, status, burnout_flag, decision_reason, reviewed_by_id, created_at, updated_at`

func (r *leaveRepository) Create(ctx context.Context, leave *domain.LeaveWindow) error {
	if leave.ID == "" {
		leave.ID = uuid.NewString()
	}
	const query = `
        INSERT INTO leave_windows (id, worker_id, type, start_date, end_date, reason, status, burnout_flag)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING created_at, updated_at`
	return conn(ctx, r.pool).QueryRow(ctx, query,
		leave.ID,
		leave.WorkerID,
		leave.Type,
		leave.StartDate,
		leave.EndDate,
		leave.Reason,
		leave.Status,
		leave.BurnoutFlag,
	).Scan(&leave.CreatedAt, &leave.UpdatedAt)
}

func (r *leaveRepository) Update(ctx context.Context, leave *domain.LeaveWindow) error {
	const query = `
        UPDATE leave_windows SET status=$1, decision_reason=$2, reviewed_by_id=$3, burnout_flag=$4, updated_at=NOW()
        WHERE id=$5`
	cmd, err := conn(ctx, r.pool).Exec(ctx, query,
		leave.Status,
		leave.DecisionReason,
		leave.ReviewedByID,
		leave.BurnoutFlag,
		leave.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *leaveRepository) GetByID(ctx context.Context, id string) (*domain.LeaveWindow, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	const query = `SELECT ` + leaveColumns + ` FROM leave_windows WHERE id=$1`
	leave, err := scanLeave(conn(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	return &leave, nil
}

func (r *leaveRepository) List(ctx context.Context, filter LeaveFilter) ([]domain.LeaveWindow, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if len(filter.WorkerIDs) > 0 {
		args = append(args, filter.WorkerIDs)
		clauses = append(clauses, fmt.Sprintf("worker_id::text = ANY($%d)", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}

	query := `SELECT ` + leaveColumns + ` FROM leave_windows WHERE ` + strings.Join(clauses, " AND ") +
		` ORDER BY start_date ASC, created_at ASC`
	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.LeaveWindow
	for rows.Next() {
		leave, err := scanLeave(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, leave)
	}
	return result, rows.Err()
}

func scanLeave(row pgx.Row) (domain.LeaveWindow, error) {
	var l domain.LeaveWindow
	err := row.Scan(
		&l.ID,
		&l.WorkerID,
		&l.Type,
		&l.StartDate,
		&l.EndDate,
		&l.Reason,
		&l.Status,
		&l.BurnoutFlag,
		&l.DecisionReason,
		&l.ReviewedByID,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	return l, err
}
