package domain

import (
	"strings"
	"time"
)

// WorkItemStatus enumerates lifecycle states for work items.
type WorkItemStatus string

const (
	WorkItemStatusOpen       WorkItemStatus = "OPEN"
	WorkItemStatusInProgress WorkItemStatus = "IN_PROGRESS"
	WorkItemStatusDone       WorkItemStatus = "DONE"
)

// legacyStatusTodo is the board column name older records were written with.
const legacyStatusTodo = "TODO"

// ParseWorkItemStatus normalizes user or storage input. TODO maps to OPEN.
func ParseWorkItemStatus(s string) (WorkItemStatus, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(WorkItemStatusOpen), legacyStatusTodo:
		return WorkItemStatusOpen, true
	case string(WorkItemStatusInProgress):
		return WorkItemStatusInProgress, true
	case string(WorkItemStatusDone):
		return WorkItemStatusDone, true
	}
	return "", false
}

const (
	MinPriority = 1
	MaxPriority = 5
)

// WorkItem is a unit of assigned work.
type WorkItem struct {
	ID          string
	Title       string
	Description string
	Status      WorkItemStatus
	Priority    int
	Deadline    Date
	AssigneeID  string
	CreatedByID *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Active reports whether the item still counts toward a worker's load.
func (w WorkItem) Active() bool {
	return w.Status != WorkItemStatusDone
}
