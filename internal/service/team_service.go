package service

import (
	"context"

	"github.com/spec-kit/workforce-service/internal/config"
	"github.com/spec-kit/workforce-service/internal/domain"
	"github.com/spec-kit/workforce-service/internal/repository"
	"github.com/spec-kit/workforce-service/internal/scoring"
	apperrors "github.com/spec-kit/workforce-service/pkg/util/errorutil"
)

// TeamService builds the manager's team views.
type TeamService struct {
	workers repository.WorkerRepository
	teams   repository.TeamRepository
	items   repository.WorkItemRepository
	engine  *scoring.Engine
	policy  scoring.LoadPolicy
}

// TeamDependencies bundles repositories.
type TeamDependencies struct {
	WorkerRepo   repository.WorkerRepository
	TeamRepo     repository.TeamRepository
	WorkItemRepo repository.WorkItemRepository
	Engine       *scoring.Engine
}

// TeamHeat is one row of the heat map.
type TeamHeat struct {
	Team    domain.Team
	Summary scoring.TeamSummary
}

// MemberLoad is one member's stress with the assignment guard applied.
type MemberLoad struct {
	Member  scoring.MemberMetrics
	Warning *scoring.LoadWarning
}

// NewTeamService creates the service.
func NewTeamService(cfg config.ScoringConfig, deps TeamDependencies) *TeamService {
	return &TeamService{
		workers: deps.WorkerRepo,
		teams:   deps.TeamRepo,
		items:   deps.WorkItemRepo,
		engine:  engineOrDefault(deps.Engine),
		policy:  cfg.LoadPolicy(),
	}
}

// Heatmap summarizes stress per managed team.
func (s *TeamService) Heatmap(ctx context.Context, manager *domain.Worker) ([]TeamHeat, error) {
	if err := requireManager(manager); err != nil {
		return nil, err
	}
	members, err := managedWorkers(ctx, s.workers, manager, nil)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	itemsByWorker, err := loadItemsByWorker(ctx, s.items, members)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	summaries := scoring.SummarizeTeams(s.engine.Members(members, itemsByWorker))
	out := make([]TeamHeat, 0, len(summaries))
	for _, summary := range summaries {
		team, err := s.teams.GetByID(ctx, summary.TeamID)
		if err != nil {
			if !apperrors.IsNotFound(err) {
				return nil, apperrors.MapError(err)
			}
			team = &domain.Team{ID: summary.TeamID, Name: summary.TeamID}
		}
		out = append(out, TeamHeat{Team: *team, Summary: summary})
	}
	return out, nil
}

// MemberLoad reports whether memberID can safely take more work.
func (s *TeamService) MemberLoad(ctx context.Context, manager *domain.Worker, memberID string) (*MemberLoad, error) {
	if err := requireManager(manager); err != nil {
		return nil, err
	}
	member, err := s.workers.GetByID(ctx, memberID)
	if err != nil {
		return nil, apperrors.NotFoundOr(err, "worker", map[string]any{"worker_id": memberID})
	}
	if !manager.ManagesWorker(member) {
		return nil, apperrors.NewForbidden("worker is outside your teams")
	}
	itemsByWorker, err := loadItemsByWorker(ctx, s.items, []domain.Worker{*member})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	metrics := s.engine.Members([]domain.Worker{*member}, itemsByWorker)[0]
	return &MemberLoad{Member: metrics, Warning: scoring.CheckLoad(metrics, s.policy)}, nil
}
