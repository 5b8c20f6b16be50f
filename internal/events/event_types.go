package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/workforce-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventWorkItemAssigned      EventType = "work_item_assigned"
	EventWorkItemStatusChanged EventType = "work_item_status_changed"
	EventLeaveRequested        EventType = "leave_requested"
	EventLeaveReviewed         EventType = "leave_reviewed"
)

// AllEventTypes lists every event the services emit.
var AllEventTypes = []EventType{
	EventWorkItemAssigned,
	EventWorkItemStatusChanged,
	EventLeaveRequested,
	EventLeaveReviewed,
}

// Event represents a domain event emitted by services. SubjectID is the
// work item or leave request the event is about.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	SubjectID string    `json:"subject_id"`
	ActorID   string    `json:"actor_id"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// New stamps an event with a fresh ID and the current time.
func New(eventType EventType, subjectID, actorID string, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SubjectID: subjectID,
		ActorID:   actorID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// WorkItemAssignedPayload payload.
type WorkItemAssignedPayload struct {
	AssigneeID      string      `json:"assignee_id"`
	Title           string      `json:"title"`
	Priority        int         `json:"priority"`
	Deadline        domain.Date `json:"deadline"`
	ConflictWarning string      `json:"conflict_warning,omitempty"`
}

// WorkItemStatusChangedPayload payload.
type WorkItemStatusChangedPayload struct {
	OldStatus domain.WorkItemStatus `json:"old_status"`
	NewStatus domain.WorkItemStatus `json:"new_status"`
}

// LeaveRequestedPayload payload.
type LeaveRequestedPayload struct {
	WorkerID    string      `json:"worker_id"`
	Type        string      `json:"type"`
	StartDate   domain.Date `json:"start_date"`
	EndDate     domain.Date `json:"end_date"`
	BurnoutFlag bool        `json:"burnout_flag"`
	Conflicts   []string    `json:"conflicts"`
}

// LeaveReviewedPayload payload.
type LeaveReviewedPayload struct {
	WorkerID        string             `json:"worker_id"`
	Status          domain.LeaveStatus `json:"status"`
	DecisionReason  string             `json:"decision_reason,omitempty"`
	HandoverTo      string             `json:"handover_to,omitempty"`
	ReassignedItems []string           `json:"reassigned_items,omitempty"`
}
