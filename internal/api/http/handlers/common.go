package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/workforce-service/internal/api/dto"
	"github.com/spec-kit/workforce-service/internal/auth"
	"github.com/spec-kit/workforce-service/internal/domain"
	"github.com/spec-kit/workforce-service/internal/scoring"
	apperrors "github.com/spec-kit/workforce-service/pkg/util/errorutil"
)

// bind decodes the JSON body into req and runs its validate tags.
func bind(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}
	return dto.Validate(req)
}

func currentWorker(c *fiber.Ctx) (*domain.Worker, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return principal.Worker, nil
}

func respond(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(fiber.Map{"data": data})
}

func workerResponse(w *domain.Worker) dto.WorkerResponse {
	skills := w.Skills
	if skills == nil {
		skills = []string{}
	}
	return dto.WorkerResponse{
		ID:             w.ID,
		Name:           w.Name,
		Email:          w.Email,
		Role:           w.Role,
		TeamID:         w.TeamID,
		Position:       w.Position,
		Skills:         skills,
		ManagedTeamIDs: w.ManagedTeamIDs,
		Active:         w.Active,
		CreatedAt:      w.CreatedAt,
		UpdatedAt:      w.UpdatedAt,
	}
}

func teamResponse(t domain.Team) dto.TeamResponse {
	return dto.TeamResponse{ID: t.ID, Name: t.Name, Department: t.Department}
}

func workItemResponse(item domain.WorkItem) dto.WorkItemResponse {
	return dto.WorkItemResponse{
		ID:          item.ID,
		Title:       item.Title,
		Description: item.Description,
		Status:      item.Status,
		Priority:    item.Priority,
		Deadline:    item.Deadline,
		AssigneeID:  item.AssigneeID,
		CreatedByID: item.CreatedByID,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}

func workItemResponses(items []domain.WorkItem) []dto.WorkItemResponse {
	out := make([]dto.WorkItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, workItemResponse(item))
	}
	return out
}

func leaveResponse(l domain.LeaveWindow) dto.LeaveResponse {
	return dto.LeaveResponse{
		ID:             l.ID,
		WorkerID:       l.WorkerID,
		Type:           l.Type,
		StartDate:      l.StartDate,
		EndDate:        l.EndDate,
		Reason:         l.Reason,
		Status:         l.Status,
		BurnoutFlag:    l.BurnoutFlag,
		DecisionReason: l.DecisionReason,
		ReviewedByID:   l.ReviewedByID,
		CreatedAt:      l.CreatedAt,
	}
}

func memberResponse(m scoring.MemberMetrics) dto.MemberStressResponse {
	return dto.MemberStressResponse{WorkerID: m.Worker.ID, Name: m.Worker.Name, Stress: m.StressMetrics}
}

func nonNilStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
