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

// LeaveService handles leave requests and their review.
type LeaveService struct {
	workers    repository.WorkerRepository
	items      repository.WorkItemRepository
	history    repository.WorkItemHistoryRepository
	leaves     repository.LeaveRepository
	tx         repository.TxRunner
	engine     *scoring.Engine
	policy     scoring.LoadPolicy
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// LeaveDependencies bundles repositories.
type LeaveDependencies struct {
	WorkerRepo   repository.WorkerRepository
	WorkItemRepo repository.WorkItemRepository
	HistoryRepo  repository.WorkItemHistoryRepository
	LeaveRepo    repository.LeaveRepository
	Tx           repository.TxRunner
	Engine       *scoring.Engine
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
}

// LeaveRequestInput describes a new leave request.
type LeaveRequestInput struct {
	Type      string
	StartDate domain.Date
	EndDate   domain.Date
	Reason    string
}

// LeavePreview is what a worker sees before submitting.
type LeavePreview struct {
	Conflicts []string
	Stress    scoring.StressMetrics
}

// LeaveRequestResult carries the stored request and its warnings.
type LeaveRequestResult struct {
	Leave     *domain.LeaveWindow
	Conflicts []string
	Stress    scoring.StressMetrics
}

// PendingLeave pairs a pending request with its requester.
type PendingLeave struct {
	Leave     domain.LeaveWindow
	Worker    domain.Worker
	Stress    scoring.StressMetrics
	Conflicts []string
}

// HandoverSuggestion is the recommended cover for an absent worker.
// Candidate is nil when nobody qualifies.
type HandoverSuggestion struct {
	Leave     *domain.LeaveWindow
	Candidate *scoring.MemberMetrics
}

// LeaveReviewInput is a manager's decision.
type LeaveReviewInput struct {
	Decision   domain.LeaveStatus
	Reason     string
	HandoverTo string
}

// LeaveReviewResult reports what the review changed.
type LeaveReviewResult struct {
	Leave       *domain.LeaveWindow
	Reassigned  []domain.WorkItem
	LoadWarning *scoring.LoadWarning
}

// NewLeaveService creates the service.
func NewLeaveService(cfg config.ScoringConfig, deps LeaveDependencies) *LeaveService {
	return &LeaveService{
		workers:    deps.WorkerRepo,
		items:      deps.WorkItemRepo,
		history:    deps.HistoryRepo,
		leaves:     deps.LeaveRepo,
		tx:         txOrDirect(deps.Tx),
		engine:     engineOrDefault(deps.Engine),
		policy:     cfg.LoadPolicy(),
		dispatcher: deps.Dispatcher,
		logger:     nopIfNil(deps.Logger),
	}
}

// Preview lists the worker's items due inside [start, end] alongside their
// current stress. An invalid window yields no conflicts.
func (s *LeaveService) Preview(ctx context.Context, worker *domain.Worker, start, end domain.Date) (*LeavePreview, error) {
	if worker == nil {
		return nil, apperrors.NewUnauthorized("worker required")
	}
	items, err := s.itemsOf(ctx, worker)
	if err != nil {
		return nil, err
	}
	return &LeavePreview{
		Conflicts: s.engine.CheckConflicts(items, start, end),
		Stress:    s.engine.ComputeStress(items),
	}, nil
}

// Request stores a PENDING leave request. Conflicts are warnings and never
// block submission. The request is flagged for burnout when the worker is
// currently RED or asks for burnout leave explicitly.
func (s *LeaveService) Request(ctx context.Context, worker *domain.Worker, input LeaveRequestInput) (*LeaveRequestResult, error) {
	if worker == nil {
		return nil, apperrors.NewUnauthorized("worker required")
	}
	leaveType := strings.TrimSpace(input.Type)
	if leaveType == "" {
		return nil, apperrors.NewValidationError("leave type is required", nil)
	}
	if input.StartDate.IsZero() || input.EndDate.IsZero() {
		return nil, apperrors.NewValidationError("start_date and end_date are required", nil)
	}
	if input.EndDate.Before(input.StartDate) {
		return nil, apperrors.NewValidationError("end_date must not be before start_date", map[string]any{
			"start_date": input.StartDate.String(),
			"end_date":   input.EndDate.String(),
		})
	}

	items, err := s.itemsOf(ctx, worker)
	if err != nil {
		return nil, err
	}
	stress := s.engine.ComputeStress(items)
	conflicts := s.engine.CheckConflicts(items, input.StartDate, input.EndDate)

	leave := &domain.LeaveWindow{
		WorkerID:    worker.ID,
		Type:        leaveType,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		Reason:      strings.TrimSpace(input.Reason),
		Status:      domain.LeaveStatusPending,
		BurnoutFlag: stress.Status == scoring.StatusRed || strings.EqualFold(leaveType, domain.LeaveTypeBurnout),
	}
	if err := s.leaves.Create(ctx, leave); err != nil {
		return nil, apperrors.MapError(err)
	}

	publish(ctx, s.dispatcher, s.logger, events.New(events.EventLeaveRequested, leave.ID, worker.ID, events.LeaveRequestedPayload{
		WorkerID:    worker.ID,
		Type:        leave.Type,
		StartDate:   leave.StartDate,
		EndDate:     leave.EndDate,
		BurnoutFlag: leave.BurnoutFlag,
		Conflicts:   conflicts,
	}))
	return &LeaveRequestResult{Leave: leave, Conflicts: conflicts, Stress: stress}, nil
}

// ListMine returns the worker's own requests.
func (s *LeaveService) ListMine(ctx context.Context, worker *domain.Worker) ([]domain.LeaveWindow, error) {
	if worker == nil {
		return nil, apperrors.NewUnauthorized("worker required")
	}
	leaves, err := s.leaves.List(ctx, repository.LeaveFilter{WorkerIDs: []string{worker.ID}})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return leaves, nil
}

// ListPending returns pending requests from members of the manager's teams
// with each requester's stress and conflicts.
func (s *LeaveService) ListPending(ctx context.Context, manager *domain.Worker) ([]PendingLeave, error) {
	if err := requireManager(manager); err != nil {
		return nil, err
	}
	members, err := managedWorkers(ctx, s.workers, manager, nil)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if len(members) == 0 {
		return []PendingLeave{}, nil
	}

	byID := make(map[string]domain.Worker, len(members))
	ids := make([]string, 0, len(members))
	for _, m := range members {
		byID[m.ID] = m
		ids = append(ids, m.ID)
	}
	leaves, err := s.leaves.List(ctx, repository.LeaveFilter{
		WorkerIDs: ids,
		Statuses:  []domain.LeaveStatus{domain.LeaveStatusPending},
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	itemsByWorker, err := loadItemsByWorker(ctx, s.items, members)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	out := make([]PendingLeave, 0, len(leaves))
	for _, l := range leaves {
		items := itemsByWorker[l.WorkerID]
		out = append(out, PendingLeave{
			Leave:     l,
			Worker:    byID[l.WorkerID],
			Stress:    s.engine.ComputeStress(items),
			Conflicts: s.engine.CheckConflicts(items, l.StartDate, l.EndDate),
		})
	}
	return out, nil
}

// SuggestHandover picks the teammate best placed to cover the requester.
func (s *LeaveService) SuggestHandover(ctx context.Context, manager *domain.Worker, leaveID string) (*HandoverSuggestion, error) {
	leave, requester, err := s.managedLeave(ctx, manager, leaveID)
	if err != nil {
		return nil, err
	}
	suggestion := &HandoverSuggestion{Leave: leave}
	if requester.TeamID == nil {
		return suggestion, nil
	}

	teammates, err := s.workers.List(ctx, repository.WorkerFilter{TeamIDs: []string{*requester.TeamID}, ActiveOnly: true})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	itemsByWorker, err := loadItemsByWorker(ctx, s.items, teammates)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if pick, ok := scoring.PickHandover(s.engine.Members(teammates, itemsByWorker), requester.ID, s.policy); ok {
		suggestion.Candidate = &pick
	}
	return suggestion, nil
}

// Review approves or rejects a pending request. Approving with a handover
// target moves the requester's active items to that teammate, unless the
// target is already at critical load.
func (s *LeaveService) Review(ctx context.Context, manager *domain.Worker, leaveID string, input LeaveReviewInput) (*LeaveReviewResult, error) {
	if input.Decision != domain.LeaveStatusApproved && input.Decision != domain.LeaveStatusRejected {
		return nil, apperrors.NewValidationError("decision must be APPROVED or REJECTED", map[string]any{"decision": input.Decision})
	}
	reason := strings.TrimSpace(input.Reason)
	if input.Decision == domain.LeaveStatusRejected && reason == "" {
		return nil, apperrors.NewValidationError("a reason is required to reject leave", nil)
	}

	leave, requester, err := s.managedLeave(ctx, manager, leaveID)
	if err != nil {
		return nil, err
	}
	if leave.Status != domain.LeaveStatusPending {
		return nil, apperrors.NewConflict("leave request already reviewed", map[string]any{
			"leave_id": leave.ID,
			"status":   leave.Status,
		})
	}

	result := &LeaveReviewResult{Leave: leave}
	var target *domain.Worker
	if input.Decision == domain.LeaveStatusApproved && strings.TrimSpace(input.HandoverTo) != "" {
		target, result.LoadWarning, err = s.handoverTarget(ctx, manager, requester, strings.TrimSpace(input.HandoverTo))
		if err != nil {
			return nil, err
		}
	}

	// A failed handover must leave the request PENDING.
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if target != nil {
			moved, err := s.reassignActive(ctx, manager, requester, target)
			if err != nil {
				return err
			}
			result.Reassigned = moved
		}
		reviewed := *leave
		reviewed.Status = input.Decision
		reviewed.DecisionReason = reason
		reviewed.ReviewedByID = &manager.ID
		if err := s.leaves.Update(ctx, &reviewed); err != nil {
			return apperrors.MapError(err)
		}
		*leave = reviewed
		return nil
	})
	if err != nil {
		return nil, err
	}

	payload := events.LeaveReviewedPayload{
		WorkerID:       requester.ID,
		Status:         leave.Status,
		DecisionReason: leave.DecisionReason,
	}
	if target != nil {
		payload.HandoverTo = target.ID
		for _, item := range result.Reassigned {
			payload.ReassignedItems = append(payload.ReassignedItems, item.ID)
		}
	}
	publish(ctx, s.dispatcher, s.logger, events.New(events.EventLeaveReviewed, leave.ID, manager.ID, payload))
	return result, nil
}

func (s *LeaveService) managedLeave(ctx context.Context, manager *domain.Worker, leaveID string) (*domain.LeaveWindow, *domain.Worker, error) {
	if err := requireManager(manager); err != nil {
		return nil, nil, err
	}
	leave, err := s.leaves.GetByID(ctx, leaveID)
	if err != nil {
		return nil, nil, apperrors.NotFoundOr(err, "leave request", map[string]any{"leave_id": leaveID})
	}
	requester, err := s.workers.GetByID(ctx, leave.WorkerID)
	if err != nil {
		return nil, nil, apperrors.NotFoundOr(err, "worker", map[string]any{"worker_id": leave.WorkerID})
	}
	if !manager.ManagesWorker(requester) {
		return nil, nil, apperrors.NewForbidden("requester is outside your teams")
	}
	return leave, requester, nil
}

func (s *LeaveService) handoverTarget(ctx context.Context, manager, requester *domain.Worker, targetID string) (*domain.Worker, *scoring.LoadWarning, error) {
	if targetID == requester.ID {
		return nil, nil, apperrors.NewValidationError("cannot hand work over to the requester", nil)
	}
	target, err := s.workers.GetByID(ctx, targetID)
	if err != nil {
		return nil, nil, apperrors.NotFoundOr(err, "worker", map[string]any{"worker_id": targetID})
	}
	if !target.Active {
		return nil, nil, apperrors.NewConflict("handover target inactive", map[string]any{"worker_id": targetID})
	}
	if !manager.ManagesWorker(target) {
		return nil, nil, apperrors.NewForbidden("handover target is outside your teams")
	}

	itemsByWorker, err := loadItemsByWorker(ctx, s.items, []domain.Worker{*target})
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	member := scoring.MemberMetrics{Worker: *target, StressMetrics: s.engine.ComputeStress(itemsByWorker[target.ID])}
	warning := scoring.CheckLoad(member, s.policy)
	if warning.Blocking() {
		return nil, nil, apperrors.NewConflict(warning.Message, map[string]any{
			"worker_id": target.ID,
			"score":     member.Score,
		})
	}
	return target, warning, nil
}

func (s *LeaveService) reassignActive(ctx context.Context, manager, from, to *domain.Worker) ([]domain.WorkItem, error) {
	grouped, err := loadItemsByWorker(ctx, s.items, []domain.Worker{*from})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	moved := []domain.WorkItem{}
	for _, item := range grouped[from.ID] {
		if !item.Active() {
			continue
		}
		old := item.AssigneeID
		item.AssigneeID = to.ID
		if err := s.items.Update(ctx, &item); err != nil {
			return nil, apperrors.MapError(err)
		}
		if err := recordAssigneeChange(ctx, s.history, manager.ID, item.ID, old, to.ID); err != nil {
			return nil, apperrors.MapError(err)
		}
		moved = append(moved, item)
	}
	return moved, nil
}

func (s *LeaveService) itemsOf(ctx context.Context, worker *domain.Worker) ([]domain.WorkItem, error) {
	grouped, err := loadItemsByWorker(ctx, s.items, []domain.Worker{*worker})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return grouped[worker.ID], nil
}
