package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/workforce-service/internal/api/dto"
	"github.com/spec-kit/workforce-service/internal/domain"
	"github.com/spec-kit/workforce-service/internal/service"
)

// ManagerHandler exposes team wellness, assignment and leave review endpoints.
type ManagerHandler struct {
	teams       *service.TeamService
	assignments *service.AssignmentService
	leave       *service.LeaveService
}

// NewManagerHandler constructs handler.
func NewManagerHandler(teams *service.TeamService, assignments *service.AssignmentService, leave *service.LeaveService) *ManagerHandler {
	return &ManagerHandler{teams: teams, assignments: assignments, leave: leave}
}

// Heatmap handles GET /manager/team/heatmap.
func (h *ManagerHandler) Heatmap(c *fiber.Ctx) error {
	manager, err := currentWorker(c)
	if err != nil {
		return err
	}
	heat, err := h.teams.Heatmap(c.UserContext(), manager)
	if err != nil {
		return err
	}

	out := make([]dto.TeamHeatResponse, 0, len(heat))
	for _, t := range heat {
		members := make([]dto.MemberStressResponse, 0, len(t.Summary.Members))
		for _, m := range t.Summary.Members {
			members = append(members, memberResponse(m))
		}
		out = append(out, dto.TeamHeatResponse{
			TeamID:           t.Team.ID,
			TeamName:         t.Team.Name,
			Department:       t.Team.Department,
			AverageStress:    t.Summary.AverageStress,
			Status:           t.Summary.Status,
			TotalActiveItems: t.Summary.TotalActiveItems,
			Members:          members,
		})
	}
	return respond(c, fiber.StatusOK, out)
}

// MemberLoad handles GET /manager/team/members/:id/load.
func (h *ManagerHandler) MemberLoad(c *fiber.Ctx) error {
	manager, err := currentWorker(c)
	if err != nil {
		return err
	}
	load, err := h.teams.MemberLoad(c.UserContext(), manager, c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, dto.MemberLoadResponse{
		Member:  memberResponse(load.Member),
		Warning: load.Warning,
	})
}

// Suggest handles POST /manager/assignments/suggest.
func (h *ManagerHandler) Suggest(c *fiber.Ctx) error {
	manager, err := currentWorker(c)
	if err != nil {
		return err
	}
	var req dto.SuggestRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	suggestions, err := h.assignments.Suggest(c.UserContext(), manager, service.SuggestInput{
		Title:       req.Title,
		Description: req.Description,
		Deadline:    req.Deadline,
		Limit:       req.Limit,
	})
	if err != nil {
		return err
	}

	out := make([]dto.SuggestionResponse, 0, len(suggestions))
	for _, s := range suggestions {
		out = append(out, dto.SuggestionResponse{
			WorkerID:        s.Worker.ID,
			Name:            s.Worker.Name,
			Position:        s.Worker.Position,
			MatchReason:     s.MatchReason,
			StressScore:     s.StressScore,
			ConflictWarning: s.ConflictWarning,
		})
	}
	return respond(c, fiber.StatusOK, out)
}

// Assign handles POST /manager/assignments.
func (h *ManagerHandler) Assign(c *fiber.Ctx) error {
	manager, err := currentWorker(c)
	if err != nil {
		return err
	}
	var req dto.AssignRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	result, err := h.assignments.Assign(c.UserContext(), manager, service.AssignInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Deadline:    req.Deadline,
		AssigneeID:  req.AssigneeID,
	})
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, dto.AssignResponse{
		Item:            workItemResponse(*result.Item),
		ConflictWarning: result.ConflictWarning,
		LoadWarning:     result.LoadWarning,
	})
}

// PendingLeave handles GET /manager/leave/pending.
func (h *ManagerHandler) PendingLeave(c *fiber.Ctx) error {
	manager, err := currentWorker(c)
	if err != nil {
		return err
	}
	pending, err := h.leave.ListPending(c.UserContext(), manager)
	if err != nil {
		return err
	}

	out := make([]dto.PendingLeaveResponse, 0, len(pending))
	for _, p := range pending {
		out = append(out, dto.PendingLeaveResponse{
			Leave:     leaveResponse(p.Leave),
			Worker:    dto.MemberStressResponse{WorkerID: p.Worker.ID, Name: p.Worker.Name, Stress: p.Stress},
			Conflicts: nonNilStrings(p.Conflicts),
		})
	}
	return respond(c, fiber.StatusOK, out)
}

// Handover handles GET /manager/leave/:id/handover.
func (h *ManagerHandler) Handover(c *fiber.Ctx) error {
	manager, err := currentWorker(c)
	if err != nil {
		return err
	}
	suggestion, err := h.leave.SuggestHandover(c.UserContext(), manager, c.Params("id"))
	if err != nil {
		return err
	}

	resp := dto.HandoverResponse{LeaveID: suggestion.Leave.ID}
	if suggestion.Candidate != nil {
		candidate := memberResponse(*suggestion.Candidate)
		resp.Candidate = &candidate
	}
	return respond(c, fiber.StatusOK, resp)
}

// ReviewLeave handles POST /manager/leave/:id/review.
func (h *ManagerHandler) ReviewLeave(c *fiber.Ctx) error {
	manager, err := currentWorker(c)
	if err != nil {
		return err
	}
	var req dto.ReviewLeaveRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	result, err := h.leave.Review(c.UserContext(), manager, c.Params("id"), service.LeaveReviewInput{
		Decision:   domain.LeaveStatus(req.Decision),
		Reason:     req.Reason,
		HandoverTo: req.HandoverTo,
	})
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, dto.ReviewLeaveResponse{
		Leave:       leaveResponse(*result.Leave),
		Reassigned:  workItemResponses(result.Reassigned),
		LoadWarning: result.LoadWarning,
	})
}
