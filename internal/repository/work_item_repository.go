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

// WorkItemFilter narrows work item listings.
type WorkItemFilter struct {
	// AssigneeKeys matches assignee_id exactly. Callers pass worker IDs and,
	// for rows written before IDs were stored, worker names.
	AssigneeKeys []string
	Statuses     []domain.WorkItemStatus
}

// Matches applies the filter in memory.
func (f WorkItemFilter) Matches(item domain.WorkItem) bool {
	if len(f.AssigneeKeys) > 0 && !containsString(f.AssigneeKeys, item.AssigneeID) {
		return false
	}
	if len(f.Statuses) > 0 {
		for _, s := range f.Statuses {
			if s == item.Status {
				return true
			}
		}
		return false
	}
	return true
}

// WorkItemRepository persists work items.
type WorkItemRepository interface {
	Create(ctx context.Context, item *domain.WorkItem) error
	Update(ctx context.Context, item *domain.WorkItem) error
	GetByID(ctx context.Context, id string) (*domain.WorkItem, error)
	List(ctx context.Context, filter WorkItemFilter) ([]domain.WorkItem, error)
}

type workItemRepository struct {
	pool *pgxpool.Pool
}

// NewWorkItemRepository constructs repository.
func NewWorkItemRepository(pool *pgxpool.Pool) WorkItemRepository {
	return &workItemRepository{pool: pool}
}

const workItemColumns = `id, title, description, status, priority, deadline, assignee_id, created_by_id, created_at, updated_at`

func (r *workItemRepository) Create(ctx context.Context, item *domain.WorkItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	const query = `
        INSERT INTO work_items (id, title, description, status, priority, deadline, assignee_id, created_by_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING created_at, updated_at`
	return conn(ctx, r.pool).QueryRow(ctx, query,
		item.ID,
		item.Title,
		item.Description,
		item.Status,
		item.Priority,
		item.Deadline,
		item.AssigneeID,
		item.CreatedByID,
	).Scan(&item.CreatedAt, &item.UpdatedAt)
}

func (r *workItemRepository) Update(ctx context.Context, item *domain.WorkItem) error {
	const query = `
        UPDATE work_items SET title=$1, description=$2, status=$3, priority=$4, deadline=$5,
            assignee_id=$6, updated_at=NOW()
        WHERE id=$7
        RETURNING updated_at`
	err := conn(ctx, r.pool).QueryRow(ctx, query,
		item.Title,
		item.Description,
		item.Status,
		item.Priority,
		item.Deadline,
		item.AssigneeID,
		item.ID,
	).Scan(&item.UpdatedAt)
	return err
}

func (r *workItemRepository) GetByID(ctx context.Context, id string) (*domain.WorkItem, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	const query = `SELECT ` + workItemColumns + ` FROM work_items WHERE id=$1`
	item, err := scanWorkItem(conn(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *workItemRepository) List(ctx context.Context, filter WorkItemFilter) ([]domain.WorkItem, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if len(filter.AssigneeKeys) > 0 {
		args = append(args, filter.AssigneeKeys)
		clauses = append(clauses, fmt.Sprintf("assignee_id = ANY($%d)", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}

	query := `SELECT ` + workItemColumns + ` FROM work_items WHERE ` + strings.Join(clauses, " AND ") +
		` ORDER BY deadline ASC NULLS LAST, created_at ASC`
	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.WorkItem
	for rows.Next() {
		item, err := scanWorkItem(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}

func scanWorkItem(row pgx.Row) (domain.WorkItem, error) {
	var item domain.WorkItem
	err := row.Scan(
		&item.ID,
		&item.Title,
		&item.Description,
		&item.Status,
		&item.Priority,
		&item.Deadline,
		&item.AssigneeID,
		&item.CreatedByID,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	return item, err
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
