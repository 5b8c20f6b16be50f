package service

import (
	"context"
	"errors"
	"strings"

	"github.com/spec-kit/workforce-service/internal/auth"
	"github.com/spec-kit/workforce-service/internal/config"
	"github.com/spec-kit/workforce-service/internal/domain"
	"github.com/spec-kit/workforce-service/internal/repository"
	apperrors "github.com/spec-kit/workforce-service/pkg/util/errorutil"
)

// DirectoryService lets HR maintain teams and worker records.
type DirectoryService struct {
	teams      repository.TeamRepository
	workers    repository.WorkerRepository
	bcryptCost int
}

// DirectoryDependencies encapsulates repositories required for the directory.
type DirectoryDependencies struct {
	TeamRepo   repository.TeamRepository
	WorkerRepo repository.WorkerRepository
}

// WorkerListFilters define listing parameters.
type WorkerListFilters struct {
	Role       *domain.Role
	TeamID     *string
	ActiveOnly bool
}

// CreateWorkerInput describes a new worker record.
type CreateWorkerInput struct {
	Name           string
	Email          string
	Password       string
	Role           domain.Role
	TeamID         *string
	Position       string
	Skills         []string
	ManagedTeamIDs []string
}

// UpdateWorkerInput carries optional changes; nil fields are left as is.
type UpdateWorkerInput struct {
	Name           *string
	Email          *string
	Role           *domain.Role
	TeamID         *string
	ClearTeam      bool
	Position       *string
	Skills         []string
	ManagedTeamIDs []string
	Active         *bool
}

// NewDirectoryService constructs the service.
func NewDirectoryService(cfg config.Config, deps DirectoryDependencies) *DirectoryService {
	return &DirectoryService{
		teams:      deps.TeamRepo,
		workers:    deps.WorkerRepo,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// CreateTeam adds a team.
func (s *DirectoryService) CreateTeam(ctx context.Context, actor *domain.Worker, name, department string) (*domain.Team, error) {
	if err := requireHR(actor); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("team name is required", nil)
	}
	team := &domain.Team{Name: name, Department: strings.TrimSpace(department)}
	if err := s.teams.Create(ctx, team); err != nil {
		return nil, apperrors.MapError(err)
	}
	return team, nil
}

// ListTeams returns all teams.
func (s *DirectoryService) ListTeams(ctx context.Context, actor *domain.Worker) ([]domain.Team, error) {
	if err := requireHR(actor); err != nil {
		return nil, err
	}
	teams, err := s.teams.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return teams, nil
}

// ListWorkers returns workers matching filters.
func (s *DirectoryService) ListWorkers(ctx context.Context, actor *domain.Worker, filters WorkerListFilters) ([]domain.Worker, error) {
	if err := requireHR(actor); err != nil {
		return nil, err
	}
	filter := repository.WorkerFilter{Role: filters.Role, ActiveOnly: filters.ActiveOnly}
	if filters.TeamID != nil {
		filter.TeamIDs = []string{*filters.TeamID}
	}
	workers, err := s.workers.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return workers, nil
}

// CreateWorker stores a new worker with a bcrypt-hashed password.
func (s *DirectoryService) CreateWorker(ctx context.Context, actor *domain.Worker, input CreateWorkerInput) (*domain.Worker, error) {
	if err := requireHR(actor); err != nil {
		return nil, err
	}
	if !input.Role.Valid() {
		return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": input.Role})
	}
	if err := s.checkTeams(ctx, input.TeamID, input.ManagedTeamIDs); err != nil {
		return nil, err
	}
	if input.Role != domain.RoleManager && len(input.ManagedTeamIDs) > 0 {
		return nil, apperrors.NewValidationError("only managers can manage teams", nil)
	}

	if err := auth.CheckPasswordPolicy(input.Password); err != nil {
		return nil, apperrors.NewValidationError(err.Error(), nil)
	}
	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	worker := &domain.Worker{
		Name:           strings.TrimSpace(input.Name),
		Email:          strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash:   hash,
		Role:           input.Role,
		TeamID:         input.TeamID,
		Position:       strings.TrimSpace(input.Position),
		Skills:         domain.NormalizeSkills(input.Skills),
		ManagedTeamIDs: input.ManagedTeamIDs,
		Active:         true,
	}
	if err := s.workers.Create(ctx, worker); err != nil {
		return nil, mapDuplicateEmail(err, worker.Email)
	}
	return worker, nil
}

// UpdateWorker applies changes to an existing worker.
func (s *DirectoryService) UpdateWorker(ctx context.Context, actor *domain.Worker, workerID string, input UpdateWorkerInput) (*domain.Worker, error) {
	if err := requireHR(actor); err != nil {
		return nil, err
	}
	worker, err := s.workers.GetByID(ctx, workerID)
	if err != nil {
		return nil, apperrors.NotFoundOr(err, "worker", map[string]any{"worker_id": workerID})
	}

	if input.Name != nil {
		worker.Name = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		worker.Email = strings.ToLower(strings.TrimSpace(*input.Email))
	}
	if input.Role != nil {
		if !input.Role.Valid() {
			return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": *input.Role})
		}
		worker.Role = *input.Role
	}
	if input.ClearTeam {
		worker.TeamID = nil
	} else if input.TeamID != nil {
		worker.TeamID = input.TeamID
	}
	if input.Position != nil {
		worker.Position = strings.TrimSpace(*input.Position)
	}
	if input.Skills != nil {
		worker.Skills = domain.NormalizeSkills(input.Skills)
	}
	if input.ManagedTeamIDs != nil {
		worker.ManagedTeamIDs = input.ManagedTeamIDs
	}
	if input.Active != nil {
		worker.Active = *input.Active
	}
	if worker.Role != domain.RoleManager && len(worker.ManagedTeamIDs) > 0 {
		worker.ManagedTeamIDs = nil
	}
	if err := s.checkTeams(ctx, worker.TeamID, worker.ManagedTeamIDs); err != nil {
		return nil, err
	}

	if err := s.workers.Update(ctx, worker); err != nil {
		return nil, mapDuplicateEmail(err, worker.Email)
	}
	return worker, nil
}

func (s *DirectoryService) checkTeams(ctx context.Context, teamID *string, managed []string) error {
	ids := append([]string{}, managed...)
	if teamID != nil {
		ids = append(ids, *teamID)
	}
	for _, id := range ids {
		if _, err := s.teams.GetByID(ctx, id); err != nil {
			return apperrors.NotFoundOr(err, "team", map[string]any{"team_id": id})
		}
	}
	return nil
}

func mapDuplicateEmail(err error, email string) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return apperrors.NewConflict("email already registered", map[string]any{"email": email})
	}
	return apperrors.MapError(err)
}
