package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/workforce-service/internal/config"
	"github.com/spec-kit/workforce-service/internal/domain"
	"github.com/spec-kit/workforce-service/internal/events"
	"github.com/spec-kit/workforce-service/internal/repository"
	"github.com/spec-kit/workforce-service/internal/scoring"
	apperrors "github.com/spec-kit/workforce-service/pkg/util/errorutil"
)

// AssignmentService suggests and performs manager work assignments.
type AssignmentService struct {
	workers    repository.WorkerRepository
	items      repository.WorkItemRepository
	history    repository.WorkItemHistoryRepository
	leaves     repository.LeaveRepository
	tx         repository.TxRunner
	engine     *scoring.Engine
	limit      int
	policy     scoring.LoadPolicy
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// AssignmentDependencies bundles repositories.
type AssignmentDependencies struct {
	WorkerRepo   repository.WorkerRepository
	WorkItemRepo repository.WorkItemRepository
	HistoryRepo  repository.WorkItemHistoryRepository
	LeaveRepo    repository.LeaveRepository
	Tx           repository.TxRunner
	Engine       *scoring.Engine
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
}

// SuggestInput describes the task a manager wants to place.
type SuggestInput struct {
	Title       string
	Description string
	Deadline    domain.Date
	// Limit overrides the configured number of suggestions when positive.
	Limit int
}

// AssignInput describes a new item for a chosen worker.
type AssignInput struct {
	Title       string
	Description string
	Priority    int
	Deadline    domain.Date
	AssigneeID  string
}

// AssignResult carries the created item and any non-blocking warnings.
type AssignResult struct {
	Item            *domain.WorkItem
	ConflictWarning string
	LoadWarning     *scoring.LoadWarning
}

// leaveStatusesForConflicts excludes rejected requests; a rejected leave
// will not take the worker away.
var leaveStatusesForConflicts = []domain.LeaveStatus{domain.LeaveStatusPending, domain.LeaveStatusApproved}

// NewAssignmentService creates the service.
func NewAssignmentService(cfg config.ScoringConfig, deps AssignmentDependencies) *AssignmentService {
	limit := cfg.SuggestionLimit
	if limit <= 0 {
		limit = 3
	}
	return &AssignmentService{
		workers:    deps.WorkerRepo,
		items:      deps.WorkItemRepo,
		history:    deps.HistoryRepo,
		leaves:     deps.LeaveRepo,
		tx:         txOrDirect(deps.Tx),
		engine:     engineOrDefault(deps.Engine),
		limit:      limit,
		policy:     cfg.LoadPolicy(),
		dispatcher: deps.Dispatcher,
		logger:     nopIfNil(deps.Logger),
	}
}

// Suggest ranks the active employees of the manager's teams for the draft
// and returns the top entries.
func (s *AssignmentService) Suggest(ctx context.Context, manager *domain.Worker, input SuggestInput) ([]scoring.AssignmentSuggestion, error) {
	if err := requireManager(manager); err != nil {
		return nil, err
	}
	draft, err := validateDraft(input.Title, input.Description, input.Deadline)
	if err != nil {
		return nil, err
	}

	role := domain.RoleEmployee
	candidates, err := managedWorkers(ctx, s.workers, manager, &role)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if len(candidates) == 0 {
		return []scoring.AssignmentSuggestion{}, nil
	}

	itemsByWorker, leavesByWorker, err := s.workload(ctx, candidates)
	if err != nil {
		return nil, err
	}

	limit := s.limit
	if input.Limit > 0 {
		limit = input.Limit
	}
	return scoring.Top(s.engine.RankCandidates(draft, candidates, itemsByWorker, leavesByWorker), limit), nil
}

// Assign creates an OPEN item for the chosen worker. A leave overlap on the
// deadline or a high load is reported back; critical load blocks.
func (s *AssignmentService) Assign(ctx context.Context, manager *domain.Worker, input AssignInput) (*AssignResult, error) {
	if err := requireManager(manager); err != nil {
		return nil, err
	}
	draft, err := validateDraft(input.Title, input.Description, input.Deadline)
	if err != nil {
		return nil, err
	}
	if input.Priority < domain.MinPriority || input.Priority > domain.MaxPriority {
		return nil, apperrors.NewValidationError("priority must be between 1 and 5", map[string]any{"priority": input.Priority})
	}

	assignee, err := s.workers.GetByID(ctx, input.AssigneeID)
	if err != nil {
		return nil, apperrors.NotFoundOr(err, "worker", map[string]any{"worker_id": input.AssigneeID})
	}
	if !assignee.Active {
		return nil, apperrors.NewConflict("assignee inactive", map[string]any{"worker_id": assignee.ID})
	}
	if !manager.ManagesWorker(assignee) {
		return nil, apperrors.NewForbidden("assignee is outside your teams")
	}

	itemsByWorker, leavesByWorker, err := s.workload(ctx, []domain.Worker{*assignee})
	if err != nil {
		return nil, err
	}
	member := scoring.MemberMetrics{Worker: *assignee, StressMetrics: s.engine.ComputeStress(itemsByWorker[assignee.ID])}
	loadWarning := scoring.CheckLoad(member, s.policy)
	if loadWarning.Blocking() {
		return nil, apperrors.NewConflict(loadWarning.Message, map[string]any{
			"worker_id": assignee.ID,
			"score":     member.Score,
		})
	}
	ranked := s.engine.RankCandidates(draft, []domain.Worker{*assignee}, itemsByWorker, leavesByWorker)

	item := &domain.WorkItem{
		Title:       draft.Title,
		Description: draft.Description,
		Status:      domain.WorkItemStatusOpen,
		Priority:    input.Priority,
		Deadline:    draft.Deadline,
		AssigneeID:  assignee.ID,
		CreatedByID: &manager.ID,
	}
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.items.Create(ctx, item); err != nil {
			return err
		}
		return recordAssigneeChange(ctx, s.history, manager.ID, item.ID, "", assignee.ID)
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	result := &AssignResult{Item: item, ConflictWarning: ranked[0].ConflictWarning, LoadWarning: loadWarning}
	publish(ctx, s.dispatcher, s.logger, events.New(events.EventWorkItemAssigned, item.ID, manager.ID, events.WorkItemAssignedPayload{
		AssigneeID:      assignee.ID,
		Title:           item.Title,
		Priority:        item.Priority,
		Deadline:        item.Deadline,
		ConflictWarning: result.ConflictWarning,
	}))
	return result, nil
}

func (s *AssignmentService) workload(ctx context.Context, workers []domain.Worker) (map[string][]domain.WorkItem, map[string][]domain.LeaveWindow, error) {
	itemsByWorker, err := loadItemsByWorker(ctx, s.items, workers)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	ids := make([]string, 0, len(workers))
	for _, w := range workers {
		ids = append(ids, w.ID)
	}
	leaves, err := s.leaves.List(ctx, repository.LeaveFilter{WorkerIDs: ids, Statuses: leaveStatusesForConflicts})
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return itemsByWorker, scoring.GroupLeavesByWorker(leaves), nil
}

func validateDraft(title, description string, deadline domain.Date) (scoring.TaskDraft, error) {
	draft := scoring.TaskDraft{
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Deadline:    deadline,
	}
	details := map[string]any{}
	if draft.Title == "" {
		details["title"] = "required"
	}
	if draft.Deadline.IsZero() {
		details["deadline"] = "required"
	}
	if len(details) > 0 {
		return scoring.TaskDraft{}, apperrors.NewValidationError("title and deadline are required", details)
	}
	return draft, nil
}
