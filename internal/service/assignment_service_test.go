package service

import (
	"testing"

	"github.com/spec-kit/workforce-service/internal/domain"
	"github.com/spec-kit/workforce-service/internal/events"
	"github.com/spec-kit/workforce-service/internal/scoring"
)

func TestAssignment_SuggestRanksManagedEmployees(t *testing.T) {
	f := newFixture(t)
	benLeave := &domain.LeaveWindow{WorkerID: f.ben.ID, Type: "Vacation", StartDate: f.date(4), EndDate: f.date(6), Status: domain.LeaveStatusApproved}
	anaLeave := &domain.LeaveWindow{WorkerID: f.ana.ID, Type: "Vacation", StartDate: f.date(4), EndDate: f.date(6), Status: domain.LeaveStatusRejected}
	for _, l := range []*domain.LeaveWindow{benLeave, anaLeave} {
		if err := f.store.Leaves().Create(f.ctx, l); err != nil {
			t.Fatal(err)
		}
	}

	got, err := f.assignment.Suggest(f.ctx, f.mia, SuggestInput{Title: "Fix Go service", Deadline: f.date(5)})
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	names := make([]string, len(got))
	for i, s := range got {
		names[i] = s.Worker.Name
	}
	want := []string{"Ana Lee", "Eve Stone", "Ben Ortiz"}
	if len(names) != len(want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("names = %v, want %v", names, want)
		}
	}
	if got[0].MatchReason != "Matches skill: Go" || got[2].MatchReason != scoring.GeneralAvailability {
		t.Errorf("reasons = %q, %q", got[0].MatchReason, got[2].MatchReason)
	}
	if got[0].ConflictWarning != "" {
		t.Errorf("rejected leave produced a warning: %q", got[0].ConflictWarning)
	}
	if got[2].ConflictWarning != scoring.LeaveConflictWarning("Ben Ortiz") {
		t.Errorf("ben warning = %q", got[2].ConflictWarning)
	}

	limited, _ := f.assignment.Suggest(f.ctx, f.mia, SuggestInput{Title: "Fix Go service", Deadline: f.date(5), Limit: 1})
	if len(limited) != 1 || limited[0].Worker.ID != f.ana.ID {
		t.Errorf("limited = %+v", limited)
	}
}

func TestAssignment_SuggestValidation(t *testing.T) {
	f := newFixture(t)
	_, err := f.assignment.Suggest(f.ctx, f.mia, SuggestInput{Title: "  ", Deadline: f.date(5)})
	assertCode(t, err, "VALIDATION_FAILED")
	_, err = f.assignment.Suggest(f.ctx, f.mia, SuggestInput{Title: "Task"})
	assertCode(t, err, "VALIDATION_FAILED")
	_, err = f.assignment.Suggest(f.ctx, f.ana, SuggestInput{Title: "Task", Deadline: f.date(5)})
	assertCode(t, err, "FORBIDDEN")
}

func TestAssignment_SuggestWithoutTeams(t *testing.T) {
	f := newFixture(t)
	lonely := f.addWorker(t, "Lou Solo", domain.RoleManager, nil, nil, true)
	got, err := f.assignment.Suggest(f.ctx, lonely, SuggestInput{Title: "Task", Deadline: f.date(5)})
	if err != nil || len(got) != 0 {
		t.Errorf("got %+v, %v", got, err)
	}
}

func TestAssignment_Assign(t *testing.T) {
	f := newFixture(t)
	leave := &domain.LeaveWindow{WorkerID: f.ben.ID, Type: "Vacation", StartDate: f.date(4), EndDate: f.date(6), Status: domain.LeaveStatusPending}
	_ = f.store.Leaves().Create(f.ctx, leave)

	res, err := f.assignment.Assign(f.ctx, f.mia, AssignInput{Title: "Dashboard", Priority: 4, Deadline: f.date(5), AssigneeID: f.ben.ID})
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if res.Item.Status != domain.WorkItemStatusOpen || res.Item.AssigneeID != f.ben.ID || *res.Item.CreatedByID != f.mia.ID {
		t.Errorf("item = %+v", res.Item)
	}
	if res.ConflictWarning != scoring.LeaveConflictWarning("Ben Ortiz") {
		t.Errorf("warning = %q", res.ConflictWarning)
	}
	evs := f.events.ofType(events.EventWorkItemAssigned)
	if len(evs) != 1 || evs[0].Payload.(events.WorkItemAssignedPayload).ConflictWarning == "" {
		t.Errorf("events = %+v", evs)
	}

	yellow, err := f.assignment.Assign(f.ctx, f.mia, AssignInput{Title: "More", Priority: 1, Deadline: f.date(9), AssigneeID: f.ana.ID})
	if err != nil {
		t.Fatalf("Assign to busy worker: %v", err)
	}
	if yellow.LoadWarning == nil || yellow.LoadWarning.Level != scoring.StatusYellow {
		t.Errorf("load warning = %+v", yellow.LoadWarning)
	}
}

func TestAssignment_AssignRejections(t *testing.T) {
	f := newFixture(t)
	cases := []struct {
		name string
		in   AssignInput
		code string
	}{
		{"priority too high", AssignInput{Title: "T", Priority: 6, Deadline: f.date(3), AssigneeID: f.ben.ID}, "VALIDATION_FAILED"},
		{"missing deadline", AssignInput{Title: "T", Priority: 3, AssigneeID: f.ben.ID}, "VALIDATION_FAILED"},
		{"unknown worker", AssignInput{Title: "T", Priority: 3, Deadline: f.date(3), AssigneeID: "nope"}, "NOT_FOUND"},
		{"inactive worker", AssignInput{Title: "T", Priority: 3, Deadline: f.date(3), AssigneeID: f.dee.ID}, "CONFLICT"},
		{"other team", AssignInput{Title: "T", Priority: 3, Deadline: f.date(3), AssigneeID: f.cid.ID}, "FORBIDDEN"},
		{"critical load", AssignInput{Title: "T", Priority: 3, Deadline: f.date(3), AssigneeID: f.eve.ID}, "CONFLICT"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.assignment.Assign(f.ctx, f.mia, tc.in)
			assertCode(t, err, tc.code)
		})
	}
}
