package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/workforce-service/internal/api/dto"
	"github.com/spec-kit/workforce-service/internal/service"
)

// MeHandler serves the signed-in worker's own wellness, items and leave.
type MeHandler struct {
	wellness *service.WellnessService
	leave    *service.LeaveService
}

// NewMeHandler constructs handler.
func NewMeHandler(wellness *service.WellnessService, leave *service.LeaveService) *MeHandler {
	return &MeHandler{wellness: wellness, leave: leave}
}

// Wellness handles GET /me/wellness.
func (h *MeHandler) Wellness(c *fiber.Ctx) error {
	worker, err := currentWorker(c)
	if err != nil {
		return err
	}
	stress, err := h.wellness.WorkerStress(c.UserContext(), worker.ID)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, dto.WellnessResponse{WorkerID: worker.ID, Stress: stress})
}

// Items handles GET /me/items.
func (h *MeHandler) Items(c *fiber.Ctx) error {
	worker, err := currentWorker(c)
	if err != nil {
		return err
	}
	items, err := h.wellness.ListItems(c.UserContext(), worker)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, workItemResponses(items))
}

// UpdateItemStatus handles PATCH /me/items/:id/status.
func (h *MeHandler) UpdateItemStatus(c *fiber.Ctx) error {
	worker, err := currentWorker(c)
	if err != nil {
		return err
	}
	var req dto.UpdateItemStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	item, err := h.wellness.UpdateItemStatus(c.UserContext(), worker, c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, workItemResponse(*item))
}

// PreviewLeave handles POST /me/leave/preview.
func (h *MeHandler) PreviewLeave(c *fiber.Ctx) error {
	worker, err := currentWorker(c)
	if err != nil {
		return err
	}
	var req dto.LeaveWindowRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	preview, err := h.leave.Preview(c.UserContext(), worker, req.StartDate, req.EndDate)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, dto.LeavePreviewResponse{
		Conflicts: nonNilStrings(preview.Conflicts),
		Stress:    preview.Stress,
	})
}

// RequestLeave handles POST /me/leave.
func (h *MeHandler) RequestLeave(c *fiber.Ctx) error {
	worker, err := currentWorker(c)
	if err != nil {
		return err
	}
	var req dto.LeaveRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	result, err := h.leave.Request(c.UserContext(), worker, service.LeaveRequestInput{
		Type:      req.Type,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Reason:    req.Reason,
	})
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, dto.LeaveCreatedResponse{
		Leave:     leaveResponse(*result.Leave),
		Conflicts: nonNilStrings(result.Conflicts),
		Stress:    result.Stress,
	})
}

// ListLeave handles GET /me/leave.
func (h *MeHandler) ListLeave(c *fiber.Ctx) error {
	worker, err := currentWorker(c)
	if err != nil {
		return err
	}
	leaves, err := h.leave.ListMine(c.UserContext(), worker)
	if err != nil {
		return err
	}
	out := make([]dto.LeaveResponse, 0, len(leaves))
	for _, l := range leaves {
		out = append(out, leaveResponse(l))
	}
	return respond(c, fiber.StatusOK, out)
}
