package domain

import "time"

// LeaveStatus enumerates review states of a leave request.
type LeaveStatus string

const (
	LeaveStatusPending  LeaveStatus = "PENDING"
	LeaveStatusApproved LeaveStatus = "APPROVED"
	LeaveStatusRejected LeaveStatus = "REJECTED"
)

// LeaveTypeBurnout marks a request raised because of overload.
const LeaveTypeBurnout = "Burnout"

// LeaveWindow is a proposed or approved absence. StartDate and EndDate are
// inclusive.
type LeaveWindow struct {
	ID             string
	WorkerID       string
	Type           string
	StartDate      Date
	EndDate        Date
	Reason         string
	Status         LeaveStatus
	BurnoutFlag    bool
	DecisionReason string
	ReviewedByID   *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Covers reports whether d falls inside the window. Windows with a missing or
// inverted bound cover nothing.
func (l LeaveWindow) Covers(d Date) bool {
	if d.IsZero() || l.StartDate.IsZero() || l.EndDate.IsZero() {
		return false
	}
	return !d.Before(l.StartDate) && !d.After(l.EndDate)
}
