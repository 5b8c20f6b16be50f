package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/workforce-service/internal/domain"
	"github.com/spec-kit/workforce-service/internal/events"
	"github.com/spec-kit/workforce-service/internal/repository"
	"github.com/spec-kit/workforce-service/internal/scoring"
	apperrors "github.com/spec-kit/workforce-service/pkg/util/errorutil"
)

func requireManager(actor *domain.Worker) error {
	if actor == nil {
		return apperrors.NewUnauthorized("worker required")
	}
	if actor.Role != domain.RoleManager {
		return apperrors.NewForbidden("manager role required")
	}
	return nil
}

func requireHR(actor *domain.Worker) error {
	if actor == nil {
		return apperrors.NewUnauthorized("worker required")
	}
	if actor.Role != domain.RoleHR {
		return apperrors.NewForbidden("hr role required")
	}
	return nil
}

// managedWorkers lists active workers in the manager's teams, optionally
// narrowed to one role.
func managedWorkers(ctx context.Context, workers repository.WorkerRepository, manager *domain.Worker, role *domain.Role) ([]domain.Worker, error) {
	if len(manager.ManagedTeamIDs) == 0 {
		return nil, nil
	}
	return workers.List(ctx, repository.WorkerFilter{
		Role:       role,
		TeamIDs:    manager.ManagedTeamIDs,
		ActiveOnly: true,
	})
}

// loadItemsByWorker fetches every item assigned to the given workers in one
// query and groups it per worker ID. Names are included in the lookup so
// rows that predate ID assignment still count.
func loadItemsByWorker(ctx context.Context, items repository.WorkItemRepository, workers []domain.Worker) (map[string][]domain.WorkItem, error) {
	keys := make([]string, 0, 2*len(workers))
	for _, w := range workers {
		keys = append(keys, w.ID)
		if w.Name != "" {
			keys = append(keys, w.Name)
		}
	}
	if len(keys) == 0 {
		return map[string][]domain.WorkItem{}, nil
	}
	rows, err := items.List(ctx, repository.WorkItemFilter{AssigneeKeys: keys})
	if err != nil {
		return nil, err
	}
	return scoring.GroupItemsByWorker(rows, workers), nil
}

// ownsItem reports whether item is assigned to worker, by ID or by the
// legacy name key.
func ownsItem(worker *domain.Worker, item *domain.WorkItem) bool {
	return item.AssigneeID == worker.ID || (worker.Name != "" && item.AssigneeID == worker.Name)
}

func publish(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	if err := dispatcher.Publish(ctx, event); err != nil {
		logger.Warn("event handler failed",
			zap.String("event_type", string(event.Type)),
			zap.String("subject_id", event.SubjectID),
			zap.Error(err))
	}
}

func recordAssigneeChange(ctx context.Context, history repository.WorkItemHistoryRepository, actorID, itemID, oldAssignee, newAssignee string) error {
	return history.Create(ctx, &domain.WorkItemHistory{
		WorkItemID:  itemID,
		ChangedByID: &actorID,
		ChangeType:  domain.ChangeTypeAssignee,
		OldValue:    map[string]any{"assignee_id": oldAssignee},
		NewValue:    map[string]any{"assignee_id": newAssignee},
	})
}

func txOrDirect(tx repository.TxRunner) repository.TxRunner {
	if tx == nil {
		return repository.NoTx{}
	}
	return tx
}

func nopIfNil(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func engineOrDefault(e *scoring.Engine) *scoring.Engine {
	if e == nil {
		return scoring.New()
	}
	return e
}
