package domain

import "time"

// WorkItemChangeType captures what changed in a history entry.
type WorkItemChangeType string

const (
	ChangeTypeStatus   WorkItemChangeType = "STATUS_CHANGE"
	ChangeTypeAssignee WorkItemChangeType = "ASSIGNEE_CHANGE"
)

// WorkItemHistory is an immutable audit trail entry.
type WorkItemHistory struct {
	ID          string
	WorkItemID  string
	ChangedByID *string
	ChangeType  WorkItemChangeType
	OldValue    map[string]any
	NewValue    map[string]any
	CreatedAt   time.Time
}
