package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/workforce-service/internal/api/dto"
	"github.com/spec-kit/workforce-service/internal/domain"
	"github.com/spec-kit/workforce-service/internal/service"
	apperrors "github.com/spec-kit/workforce-service/pkg/util/errorutil"
)

// HRHandler exposes the worker and team directory.
type HRHandler struct {
	directory *service.DirectoryService
}

// NewHRHandler constructs handler.
func NewHRHandler(directory *service.DirectoryService) *HRHandler {
	return &HRHandler{directory: directory}
}

// ListWorkers handles GET /hr/workers?role=&team_id=&active=.
func (h *HRHandler) ListWorkers(c *fiber.Ctx) error {
	actor, err := currentWorker(c)
	if err != nil {
		return err
	}

	var filters service.WorkerListFilters
	if raw := c.Query("role"); raw != "" {
		role := domain.Role(raw)
		if !role.Valid() {
			return apperrors.NewValidationError("invalid role filter", map[string]any{"role": raw})
		}
		filters.Role = &role
	}
	if teamID := c.Query("team_id"); teamID != "" {
		filters.TeamID = &teamID
	}
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return apperrors.NewValidationError("invalid active filter", map[string]any{"active": raw})
		}
		filters.ActiveOnly = active
	}

	workers, err := h.directory.ListWorkers(c.UserContext(), actor, filters)
	if err != nil {
		return err
	}
	out := make([]dto.WorkerResponse, 0, len(workers))
	for i := range workers {
		out = append(out, workerResponse(&workers[i]))
	}
	return respond(c, fiber.StatusOK, out)
}

// CreateWorker handles POST /hr/workers.
func (h *HRHandler) CreateWorker(c *fiber.Ctx) error {
	actor, err := currentWorker(c)
	if err != nil {
		return err
	}
	var req dto.CreateWorkerRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	worker, err := h.directory.CreateWorker(c.UserContext(), actor, service.CreateWorkerInput{
		Name:           req.Name,
		Email:          req.Email,
		Password:       req.Password,
		Role:           domain.Role(req.Role),
		TeamID:         req.TeamID,
		Position:       req.Position,
		Skills:         req.Skills,
		ManagedTeamIDs: req.ManagedTeamIDs,
	})
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, workerResponse(worker))
}

// UpdateWorker handles PUT /hr/workers/:id.
func (h *HRHandler) UpdateWorker(c *fiber.Ctx) error {
	actor, err := currentWorker(c)
	if err != nil {
		return err
	}
	var req dto.UpdateWorkerRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	input := service.UpdateWorkerInput{
		Name:           req.Name,
		Email:          req.Email,
		TeamID:         req.TeamID,
		ClearTeam:      req.ClearTeam,
		Position:       req.Position,
		Skills:         req.Skills,
		ManagedTeamIDs: req.ManagedTeamIDs,
		Active:         req.Active,
	}
	if req.Role != nil {
		role := domain.Role(*req.Role)
		input.Role = &role
	}

	worker, err := h.directory.UpdateWorker(c.UserContext(), actor, c.Params("id"), input)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, workerResponse(worker))
}

// ListTeams handles GET /hr/teams.
func (h *HRHandler) ListTeams(c *fiber.Ctx) error {
	actor, err := currentWorker(c)
	if err != nil {
		return err
	}
	teams, err := h.directory.ListTeams(c.UserContext(), actor)
	if err != nil {
		return err
	}
	out := make([]dto.TeamResponse, 0, len(teams))
	for _, t := range teams {
		out = append(out, teamResponse(t))
	}
	return respond(c, fiber.StatusOK, out)
}

// CreateTeam handles POST /hr/teams.
func (h *HRHandler) CreateTeam(c *fiber.Ctx) error {
	actor, err := currentWorker(c)
	if err != nil {
		return err
	}
	var req dto.CreateTeamRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	team, err := h.directory.CreateTeam(c.UserContext(), actor, req.Name, req.Department)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, teamResponse(*team))
}
