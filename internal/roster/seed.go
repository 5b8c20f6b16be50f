package roster

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/workforce-service/internal/auth"
	"github.com/spec-kit/workforce-service/internal/domain"
	"github.com/spec-kit/workforce-service/internal/repository"
	apperrors "github.com/spec-kit/workforce-service/pkg/util/errorutil"
)

// Repositories are the write targets of a seed run.
type Repositories struct {
	Teams   repository.TeamRepository
	Workers repository.WorkerRepository
	Items   repository.WorkItemRepository
	Leaves  repository.LeaveRepository
}

// Count tallies rows written for one table.
type Count struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

// Report summarises a seed run.
type Report struct {
	Teams   Count `json:"teams"`
	Workers Count `json:"workers"`
	Items   Count `json:"items"`
	Leaves  Count `json:"leaves"`
}

// Seeder upserts a Dataset: existing rows (by ID) are updated, the rest created.
type Seeder struct {
	repos      Repositories
	bcryptCost int
	logger     *zap.Logger
}

// NewSeeder constructs a Seeder.
func NewSeeder(repos Repositories, bcryptCost int, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{repos: repos, bcryptCost: bcryptCost, logger: logger}
}

// CheckStorable reports rows the database would refuse: priorities outside
// 1..5 and leave windows without a valid date range.
func CheckStorable(d *Dataset) error {
	var problems []error
	for _, item := range d.Items {
		if item.Priority < domain.MinPriority || item.Priority > domain.MaxPriority {
			problems = append(problems, fmt.Errorf("item %q: priority %d outside %d..%d", item.Title, item.Priority, domain.MinPriority, domain.MaxPriority))
		}
	}
	for _, l := range d.Leaves {
		if l.StartDate.IsZero() || l.EndDate.IsZero() {
			problems = append(problems, fmt.Errorf("leave %s: start and end dates are required", l.ID))
		} else if l.EndDate.Before(l.StartDate) {
			problems = append(problems, fmt.Errorf("leave %s: end %s before start %s", l.ID, l.EndDate, l.StartDate))
		}
	}
	return errors.Join(problems...)
}

// Seed writes teams, workers, items and leaves in dependency order.
func (s *Seeder) Seed(ctx context.Context, d *Dataset) (Report, error) {
	var report Report
	if err := CheckStorable(d); err != nil {
		return report, err
	}

	for i := range d.Teams {
		team := d.Teams[i]
		created, err := upsert(ctx, team.ID, s.repos.Teams.GetByID, func() error {
			return s.repos.Teams.Create(ctx, &team)
		}, func() error {
			return s.repos.Teams.Update(ctx, &team)
		})
		if err != nil {
			return report, fmt.Errorf("team %s: %w", team.Name, err)
		}
		report.Teams.add(created)
	}

	for i := range d.Workers {
		worker := d.Workers[i]
		if err := s.setPassword(ctx, &worker, d.Passwords[worker.ID]); err != nil {
			return report, fmt.Errorf("worker %s: %w", worker.Email, err)
		}
		created, err := upsert(ctx, worker.ID, s.repos.Workers.GetByID, func() error {
			return s.repos.Workers.Create(ctx, &worker)
		}, func() error {
			return s.repos.Workers.Update(ctx, &worker)
		})
		if err != nil {
			return report, fmt.Errorf("worker %s: %w", worker.Email, err)
		}
		report.Workers.add(created)
	}

	for i := range d.Items {
		item := d.Items[i]
		created, err := upsert(ctx, item.ID, s.repos.Items.GetByID, func() error {
			return s.repos.Items.Create(ctx, &item)
		}, func() error {
			return s.repos.Items.Update(ctx, &item)
		})
		if err != nil {
			return report, fmt.Errorf("item %s: %w", item.Title, err)
		}
		report.Items.add(created)
	}

	for i := range d.Leaves {
		leave := d.Leaves[i]
		created, err := upsert(ctx, leave.ID, s.repos.Leaves.GetByID, func() error {
			return s.repos.Leaves.Create(ctx, &leave)
		}, func() error {
			return s.repos.Leaves.Update(ctx, &leave)
		})
		if err != nil {
			return report, fmt.Errorf("leave %s: %w", leave.ID, err)
		}
		report.Leaves.add(created)
	}

	s.logger.Info("roster seeded",
		zap.Int("teams", len(d.Teams)),
		zap.Int("workers", len(d.Workers)),
		zap.Int("items", len(d.Items)),
		zap.Int("leaves", len(d.Leaves)),
	)
	return report, nil
}

// setPassword hashes the roster password, or keeps the stored hash when the
// roster has none.
func (s *Seeder) setPassword(ctx context.Context, worker *domain.Worker, password string) error {
	if password != "" {
		hash, err := auth.HashPassword(password, s.bcryptCost)
		if err != nil {
			return err
		}
		worker.PasswordHash = hash
		return nil
	}
	existing, err := s.repos.Workers.GetByID(ctx, worker.ID)
	switch {
	case err == nil:
		worker.PasswordHash = existing.PasswordHash
	case !apperrors.IsNotFound(err):
		return err
	default:
		s.logger.Warn("worker seeded without a password", zap.String("email", worker.Email))
	}
	return nil
}

func upsert[T any](ctx context.Context, id string, get func(context.Context, string) (T, error), create, update func() error) (bool, error) {
	_, err := get(ctx, id)
	switch {
	case err == nil:
		return false, update()
	case apperrors.IsNotFound(err):
		return true, create()
	default:
		return false, err
	}
}

func (c *Count) add(created bool) {
	if created {
		c.Created++
	} else {
		c.Updated++
	}
}
