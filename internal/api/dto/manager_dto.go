package dto

import (
	"github.com/spec-kit/workforce-service/internal/domain"
	"github.com/spec-kit/workforce-service/internal/scoring"
)

// SuggestRequest payload for POST /manager/assignments/suggest.
type SuggestRequest struct {
	Title       string      `json:"title" validate:"required,max=200"`
	Description string      `json:"description" validate:"max=4000"`
	Deadline    domain.Date `json:"deadline"`
	Limit       int         `json:"limit" validate:"min=0,max=50"`
}

// SuggestionResponse is one ranked candidate.
type SuggestionResponse struct {
	WorkerID        string `json:"worker_id"`
	Name            string `json:"name"`
	Position        string `json:"position,omitempty"`
	MatchReason     string `json:"match_reason"`
	StressScore     int    `json:"stress_score"`
	ConflictWarning string `json:"conflict_warning,omitempty"`
}

// AssignRequest payload for POST /manager/assignments.
type AssignRequest struct {
	Title       string      `json:"title" validate:"required,max=200"`
	Description string      `json:"description" validate:"max=4000"`
	Priority    int         `json:"priority" validate:"required,min=1,max=5"`
	Deadline    domain.Date `json:"deadline"`
	AssigneeID  string      `json:"assignee_id" validate:"required"`
}

// AssignResponse returns the created item and warnings.
type AssignResponse struct {
	Item            WorkItemResponse     `json:"item"`
	ConflictWarning string               `json:"conflict_warning,omitempty"`
	LoadWarning     *scoring.LoadWarning `json:"load_warning,omitempty"`
}

// MemberStressResponse is one member in a heat map or load check.
type MemberStressResponse struct {
	WorkerID string                `json:"worker_id"`
	Name     string                `json:"name"`
	Stress   scoring.StressMetrics `json:"stress"`
}

// TeamHeatResponse is one team row of the heat map.
type TeamHeatResponse struct {
	TeamID           string                 `json:"team_id"`
	TeamName         string                 `json:"team_name"`
	Department       string                 `json:"department,omitempty"`
	AverageStress    int                    `json:"average_stress"`
	Status           scoring.StressStatus   `json:"status"`
	TotalActiveItems int                    `json:"total_active_items"`
	Members          []MemberStressResponse `json:"members"`
}

// MemberLoadResponse answers whether a member can take more work.
type MemberLoadResponse struct {
	Member  MemberStressResponse `json:"member"`
	Warning *scoring.LoadWarning `json:"warning"`
}

// PendingLeaveResponse is a request awaiting review.
type PendingLeaveResponse struct {
	Leave     LeaveResponse        `json:"leave"`
	Worker    MemberStressResponse `json:"worker"`
	Conflicts []string             `json:"conflicts"`
}

// HandoverResponse is the recommended cover; Candidate is null when nobody qualifies.
type HandoverResponse struct {
	LeaveID   string                `json:"leave_id"`
	Candidate *MemberStressResponse `json:"candidate"`
}

// ReviewLeaveRequest payload for POST /manager/leave/:id/review.
type ReviewLeaveRequest struct {
	Decision   string `json:"decision" validate:"required,oneof=APPROVED REJECTED"`
	Reason     string `json:"reason" validate:"max=1000"`
	HandoverTo string `json:"handover_to"`
}

// ReviewLeaveResponse reports the review outcome.
type ReviewLeaveResponse struct {
	Leave       LeaveResponse        `json:"leave"`
	Reassigned  []WorkItemResponse   `json:"reassigned"`
	LoadWarning *scoring.LoadWarning `json:"load_warning,omitempty"`
}
