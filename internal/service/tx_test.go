package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/spec-kit/workforce-service/internal/domain"
	"github.com/spec-kit/workforce-service/internal/repository"
)

// flakyItems fails the failOn-th Update once.
type flakyItems struct {
	repository.WorkItemRepository
	mu      sync.Mutex
	updates int
	failOn  int
}

func (r *flakyItems) Update(ctx context.Context, item *domain.WorkItem) error {
	r.mu.Lock()
	r.updates++
	fail := r.updates == r.failOn
	r.mu.Unlock()
	if fail {
		return errors.New("connection reset")
	}
	return r.WorkItemRepository.Update(ctx, item)
}

type inTxKey struct{}

// markingTx tags the ctx it hands to fn so repositories can check they ran
// inside it.
type markingTx struct{ calls int }

func (m *markingTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	return fn(context.WithValue(ctx, inTxKey{}, true))
}

func inTx(ctx context.Context) bool {
	v, _ := ctx.Value(inTxKey{}).(bool)
	return v
}

type txCheckedHistory struct {
	repository.WorkItemHistoryRepository
	outside int
}

func (r *txCheckedHistory) Create(ctx context.Context, h *domain.WorkItemHistory) error {
	if !inTx(ctx) {
		r.outside++
	}
	return r.WorkItemHistoryRepository.Create(ctx, h)
}

type txCheckedLeaves struct {
	repository.LeaveRepository
	outside int
}

func (r *txCheckedLeaves) Update(ctx context.Context, l *domain.LeaveWindow) error {
	if !inTx(ctx) {
		r.outside++
	}
	return r.LeaveRepository.Update(ctx, l)
}

func TestLeave_ReviewRetryAfterFailedHandover(t *testing.T) {
	f := newFixture(t)
	items := &flakyItems{WorkItemRepository: f.store.WorkItems(), failOn: 2}
	svc := NewLeaveService(f.cfg.Scoring, LeaveDependencies{
		WorkerRepo:   f.store.Workers(),
		WorkItemRepo: items,
		HistoryRepo:  f.store.History(),
		LeaveRepo:    f.store.Leaves(),
		Engine:       f.engine,
	})
	req, err := svc.Request(f.ctx, f.ana, LeaveRequestInput{Type: "Vacation", StartDate: f.date(1), EndDate: f.date(3)})
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	approve := LeaveReviewInput{Decision: domain.LeaveStatusApproved, HandoverTo: f.ben.ID}

	_, err = svc.Review(f.ctx, f.mia, req.Leave.ID, approve)
	assertCode(t, err, "INTERNAL_ERROR")
	stored, _ := f.store.Leaves().GetByID(f.ctx, req.Leave.ID)
	if stored.Status != domain.LeaveStatusPending || stored.ReviewedByID != nil {
		t.Fatalf("failed handover stored the decision: %+v", stored)
	}

	res, err := svc.Review(f.ctx, f.mia, req.Leave.ID, approve)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if len(res.Reassigned) != 4 || res.Leave.Status != domain.LeaveStatusApproved {
		t.Fatalf("retry result: moved=%d status=%s", len(res.Reassigned), res.Leave.Status)
	}
	anaStress, _ := f.wellness.WorkerStress(f.ctx, f.ana.ID)
	if anaStress.ActiveItemCount != 0 {
		t.Errorf("ana still holds %d active items", anaStress.ActiveItemCount)
	}
	stored, _ = f.store.Leaves().GetByID(f.ctx, req.Leave.ID)
	if stored.Status != domain.LeaveStatusApproved {
		t.Errorf("stored status = %s", stored.Status)
	}
}

func TestLeave_ReviewWritesInsideOneTransaction(t *testing.T) {
	f := newFixture(t)
	tx := &markingTx{}
	history := &txCheckedHistory{WorkItemHistoryRepository: f.store.History()}
	leaves := &txCheckedLeaves{LeaveRepository: f.store.Leaves()}
	svc := NewLeaveService(f.cfg.Scoring, LeaveDependencies{
		WorkerRepo:   f.store.Workers(),
		WorkItemRepo: f.store.WorkItems(),
		HistoryRepo:  history,
		LeaveRepo:    leaves,
		Tx:           tx,
		Engine:       f.engine,
	})
	req, _ := svc.Request(f.ctx, f.ana, LeaveRequestInput{Type: "Vacation", StartDate: f.date(1), EndDate: f.date(3)})
	if _, err := svc.Review(f.ctx, f.mia, req.Leave.ID, LeaveReviewInput{Decision: domain.LeaveStatusApproved, HandoverTo: f.ben.ID}); err != nil {
		t.Fatalf("Review: %v", err)
	}
	if tx.calls != 1 || history.outside != 0 || leaves.outside != 0 {
		t.Errorf("calls=%d history outside=%d leave updates outside=%d", tx.calls, history.outside, leaves.outside)
	}
}

func TestAssignment_AssignWritesInsideOneTransaction(t *testing.T) {
	f := newFixture(t)
	tx := &markingTx{}
	history := &txCheckedHistory{WorkItemHistoryRepository: f.store.History()}
	svc := NewAssignmentService(f.cfg.Scoring, AssignmentDependencies{
		WorkerRepo:   f.store.Workers(),
		WorkItemRepo: f.store.WorkItems(),
		HistoryRepo:  history,
		LeaveRepo:    f.store.Leaves(),
		Tx:           tx,
		Engine:       f.engine,
	})
	res, err := svc.Assign(f.ctx, f.mia, AssignInput{Title: "Dashboard", Priority: 2, Deadline: f.date(5), AssigneeID: f.ben.ID})
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if tx.calls != 1 || history.outside != 0 {
		t.Errorf("calls=%d history outside=%d", tx.calls, history.outside)
	}
	rows, _ := f.store.History().ListByWorkItem(f.ctx, res.Item.ID)
	if len(rows) != 1 || rows[0].ChangeType != domain.ChangeTypeAssignee {
		t.Errorf("history = %+v", rows)
	}
}
