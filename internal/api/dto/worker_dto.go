package dto

import (
	"time"

	"github.com/spec-kit/workforce-service/internal/domain"
)

// WorkerResponse is a directory record without credentials.
type WorkerResponse struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Email          string      `json:"email"`
	Role           domain.Role `json:"role"`
	TeamID         *string     `json:"team_id,omitempty"`
	Position       string      `json:"position,omitempty"`
	Skills         []string    `json:"skills"`
	ManagedTeamIDs []string    `json:"managed_team_ids,omitempty"`
	Active         bool        `json:"active"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// CreateWorkerRequest payload for HR onboarding.
type CreateWorkerRequest struct {
	Name           string   `json:"name" validate:"required,min=2,max=120"`
	Email          string   `json:"email" validate:"required,email"`
	Password       string   `json:"password" validate:"required,min=8,max=72"`
	Role           string   `json:"role" validate:"required,oneof=EMPLOYEE MANAGER HR"`
	TeamID         *string  `json:"team_id" validate:"omitempty,uuid"`
	Position       string   `json:"position" validate:"max=120"`
	Skills         []string `json:"skills" validate:"max=50,dive,max=60"`
	ManagedTeamIDs []string `json:"managed_team_ids" validate:"dive,uuid"`
}

// UpdateWorkerRequest payload for HR edits; omitted fields are unchanged.
type UpdateWorkerRequest struct {
	Name           *string  `json:"name" validate:"omitempty,min=2,max=120"`
	Email          *string  `json:"email" validate:"omitempty,email"`
	Role           *string  `json:"role" validate:"omitempty,oneof=EMPLOYEE MANAGER HR"`
	TeamID         *string  `json:"team_id" validate:"omitempty,uuid"`
	ClearTeam      bool     `json:"clear_team"`
	Position       *string  `json:"position" validate:"omitempty,max=120"`
	Skills         []string `json:"skills" validate:"omitempty,max=50,dive,max=60"`
	ManagedTeamIDs []string `json:"managed_team_ids" validate:"omitempty,dive,uuid"`
	Active         *bool    `json:"active"`
}

// TeamResponse describes a team.
type TeamResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Department string `json:"department,omitempty"`
}

// CreateTeamRequest payload for a new team.
type CreateTeamRequest struct {
	Name       string `json:"name" validate:"required,max=120"`
	Department string `json:"department" validate:"max=120"`
}
