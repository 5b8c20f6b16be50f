package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/workforce-service/internal/domain"
)

// WorkItemHistoryRepository stores audit entries.
type WorkItemHistoryRepository interface {
	Create(ctx context.Context, history *domain.WorkItemHistory) error
	ListByWorkItem(ctx context.Context, workItemID string) ([]domain.WorkItemHistory, error)
}

type workItemHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewWorkItemHistoryRepository builds repository.
func NewWorkItemHistoryRepository(pool *pgxpool.Pool) WorkItemHistoryRepository {
	return &workItemHistoryRepository{pool: pool}
}

func (r *workItemHistoryRepository) Create(ctx context.Context, history *domain.WorkItemHistory) error {
	if history.ID == "" {
		history.ID = uuid.NewString()
	}
	const query = `
        INSERT INTO work_item_history (id, work_item_id, changed_by_id, change_type, old_value, new_value)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING created_at`
	return conn(ctx, r.pool).QueryRow(ctx, query,
		history.ID,
		history.WorkItemID,
		history.ChangedByID,
		history.ChangeType,
		history.OldValue,
		history.NewValue,
	).Scan(&history.CreatedAt)
}

func (r *workItemHistoryRepository) ListByWorkItem(ctx context.Context, workItemID string) ([]domain.WorkItemHistory, error) {
	const query = `
        SELECT id, work_item_id, changed_by_id, change_type, old_value, new_value, created_at
        FROM work_item_history WHERE work_item_id=$1 ORDER BY created_at ASC`
	rows, err := conn(ctx, r.pool).Query(ctx, query, workItemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.WorkItemHistory
	for rows.Next() {
		var history domain.WorkItemHistory
		if err := rows.Scan(
			&history.ID,
			&history.WorkItemID,
			&history.ChangedByID,
			&history.ChangeType,
			&history.OldValue,
			&history.NewValue,
			&history.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, history)
	}
	return result, rows.Err()
}
