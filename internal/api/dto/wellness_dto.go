package dto

import (
	"time"

	"github.com/spec-kit/workforce-service/internal/domain"
	"github.com/spec-kit/workforce-service/internal/scoring"
)

// WellnessResponse is the worker's own stress reading.
type WellnessResponse struct {
	WorkerID string                `json:"worker_id"`
	Stress   scoring.StressMetrics `json:"stress"`
}

// WorkItemResponse describes a work item.
type WorkItemResponse struct {
	ID          string                `json:"id"`
	Title       string                `json:"title"`
	Description string                `json:"description,omitempty"`
	Status      domain.WorkItemStatus `json:"status"`
	Priority    int                   `json:"priority"`
	Deadline    domain.Date           `json:"deadline"`
	AssigneeID  string                `json:"assignee_id"`
	CreatedByID *string               `json:"created_by_id,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// UpdateItemStatusRequest payload for PATCH /me/items/:id/status.
type UpdateItemStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// LeaveWindowRequest carries a date range. Malformed dates decode as absent.
type LeaveWindowRequest struct {
	StartDate domain.Date `json:"start_date"`
	EndDate   domain.Date `json:"end_date"`
}

// LeaveRequest payload for POST /me/leave.
type LeaveRequest struct {
	Type      string      `json:"type" validate:"required,max=60"`
	StartDate domain.Date `json:"start_date"`
	EndDate   domain.Date `json:"end_date"`
	Reason    string      `json:"reason" validate:"max=1000"`
}

// LeaveResponse describes a leave request.
type LeaveResponse struct {
	ID             string             `json:"id"`
	WorkerID       string             `json:"worker_id"`
	Type           string             `json:"type"`
	StartDate      domain.Date        `json:"start_date"`
	EndDate        domain.Date        `json:"end_date"`
	Reason         string             `json:"reason,omitempty"`
	Status         domain.LeaveStatus `json:"status"`
	BurnoutFlag    bool               `json:"burnout_flag"`
	DecisionReason string             `json:"decision_reason,omitempty"`
	ReviewedByID   *string            `json:"reviewed_by_id,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
}

// LeavePreviewResponse lists conflicts for a prospective window.
type LeavePreviewResponse struct {
	Conflicts []string              `json:"conflicts"`
	Stress    scoring.StressMetrics `json:"stress"`
}

// LeaveCreatedResponse returns the stored request with its warnings.
type LeaveCreatedResponse struct {
	Leave     LeaveResponse         `json:"leave"`
	Conflicts []string              `json:"conflicts"`
	Stress    scoring.StressMetrics `json:"stress"`
}
