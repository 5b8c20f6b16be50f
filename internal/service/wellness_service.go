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

// WellnessService serves a worker's own task board and stress reading.
type WellnessService struct {
	workers    repository.WorkerRepository
	items      repository.WorkItemRepository
	history    repository.WorkItemHistoryRepository
	engine     *scoring.Engine
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// WellnessDependencies bundles repositories.
type WellnessDependencies struct {
	WorkerRepo   repository.WorkerRepository
	WorkItemRepo repository.WorkItemRepository
	HistoryRepo  repository.WorkItemHistoryRepository
	Engine       *scoring.Engine
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
}

// NewWellnessService creates the service.
func NewWellnessService(deps WellnessDependencies) *WellnessService {
	return &WellnessService{
		workers:    deps.WorkerRepo,
		items:      deps.WorkItemRepo,
		history:    deps.HistoryRepo,
		engine:     engineOrDefault(deps.Engine),
		dispatcher: deps.Dispatcher,
		logger:     nopIfNil(deps.Logger),
	}
}

// WorkerStress computes the current stress metrics for workerID.
func (s *WellnessService) WorkerStress(ctx context.Context, workerID string) (scoring.StressMetrics, error) {
	worker, err := s.workers.GetByID(ctx, workerID)
	if err != nil {
		return scoring.StressMetrics{}, apperrors.NotFoundOr(err, "worker", map[string]any{"worker_id": workerID})
	}
	items, err := s.ListItems(ctx, worker)
	if err != nil {
		return scoring.StressMetrics{}, err
	}
	return s.engine.ComputeStress(items), nil
}

// ListItems returns every item assigned to worker, done ones included.
func (s *WellnessService) ListItems(ctx context.Context, worker *domain.Worker) ([]domain.WorkItem, error) {
	if worker == nil {
		return nil, apperrors.NewUnauthorized("worker required")
	}
	grouped, err := loadItemsByWorker(ctx, s.items, []domain.Worker{*worker})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	items := grouped[worker.ID]
	if items == nil {
		items = []domain.WorkItem{}
	}
	return items, nil
}

// UpdateItemStatus moves one of the worker's own items to status. Setting
// the current status again is a no-op.
func (s *WellnessService) UpdateItemStatus(ctx context.Context, worker *domain.Worker, itemID, status string) (*domain.WorkItem, error) {
	if worker == nil {
		return nil, apperrors.NewUnauthorized("worker required")
	}
	next, ok := domain.ParseWorkItemStatus(status)
	if !ok {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": status})
	}

	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, apperrors.NotFoundOr(err, "work item", map[string]any{"work_item_id": itemID})
	}
	if !ownsItem(worker, item) {
		return nil, apperrors.NewForbidden("only the assignee can change this item")
	}
	if item.Status == next {
		return item, nil
	}

	old := item.Status
	item.Status = next
	if err := s.items.Update(ctx, item); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.history.Create(ctx, &domain.WorkItemHistory{
		WorkItemID:  item.ID,
		ChangedByID: &worker.ID,
		ChangeType:  domain.ChangeTypeStatus,
		OldValue:    map[string]any{"status": old},
		NewValue:    map[string]any{"status": next},
	}); err != nil {
		return nil, apperrors.MapError(err)
	}

	publish(ctx, s.dispatcher, s.logger, events.New(events.EventWorkItemStatusChanged, item.ID, worker.ID,
		events.WorkItemStatusChangedPayload{OldStatus: old, NewStatus: next}))
	return item, nil
}
