// Package memstore is an in-memory implementation of the repository
// interfaces. It backs the offline CLI and the service tests.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/workforce-service/internal/domain"
	"github.com/spec-kit/workforce-service/internal/repository"
)

// Store holds every collection behind one lock. Missing rows surface as
// pgx.ErrNoRows so callers map them exactly as they would for Postgres.
type Store struct {
	mu      sync.RWMutex
	now     func() time.Time
	seq     int64
	teams   map[string]domain.Team
	workers map[string]domain.Worker
	items   map[string]domain.WorkItem
	history []domain.WorkItemHistory
	leaves  map[string]domain.LeaveWindow
	order   map[string]int64
}

// New returns an empty store.
func New() *Store {
	return &Store{
		now:     time.Now,
		teams:   map[string]domain.Team{},
		workers: map[string]domain.Worker{},
		items:   map[string]domain.WorkItem{},
		leaves:  map[string]domain.LeaveWindow{},
		order:   map[string]int64{},
	}
}

// Teams returns a TeamRepository view of the store.
func (s *Store) Teams() repository.TeamRepository { return teamRepo{s} }

// Workers returns a WorkerRepository view of the store.
func (s *Store) Workers() repository.WorkerRepository { return workerRepo{s} }

// WorkItems returns a WorkItemRepository view of the store.
func (s *Store) WorkItems() repository.WorkItemRepository { return workItemRepo{s} }

// History returns a WorkItemHistoryRepository view of the store.
func (s *Store) History() repository.WorkItemHistoryRepository { return historyRepo{s} }

// Leaves returns a LeaveRepository view of the store.
func (s *Store) Leaves() repository.LeaveRepository { return leaveRepo{s} }

// stamp assigns an ID when missing and records insertion order. Callers hold mu.
func (s *Store) stamp(id *string) time.Time {
	if *id == "" {
		*id = uuid.NewString()
	}
	s.seq++
	s.order[*id] = s.seq
	return s.now().UTC()
}

func (s *Store) byInsertion(ids []string) {
	sort.SliceStable(ids, func(i, j int) bool { return s.order[ids[i]] < s.order[ids[j]] })
}

type teamRepo struct{ s *Store }

func (r teamRepo) Create(_ context.Context, team *domain.Team) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ts := r.s.stamp(&team.ID)
	team.CreatedAt, team.UpdatedAt = ts, ts
	r.s.teams[team.ID] = *team
	return nil
}

func (r teamRepo) Update(_ context.Context, team *domain.Team) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.teams[team.ID]; !ok {
		return pgx.ErrNoRows
	}
	team.UpdatedAt = r.s.now().UTC()
	r.s.teams[team.ID] = *team
	return nil
}

func (r teamRepo) GetByID(_ context.Context, id string) (*domain.Team, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	team, ok := r.s.teams[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &team, nil
}

func (r teamRepo) List(_ context.Context) ([]domain.Team, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]domain.Team, 0, len(r.s.teams))
	for _, t := range r.s.teams {
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type workerRepo struct{ s *Store }

func (r workerRepo) Create(_ context.Context, worker *domain.Worker) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	email := strings.ToLower(worker.Email)
	for _, w := range r.s.workers {
		if w.Email == email {
			return repository.ErrDuplicate
		}
	}
	worker.Email = email
	ts := r.s.stamp(&worker.ID)
	worker.CreatedAt, worker.UpdatedAt = ts, ts
	r.s.workers[worker.ID] = cloneWorker(*worker)
	return nil
}

func (r workerRepo) Update(_ context.Context, worker *domain.Worker) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.workers[worker.ID]; !ok {
		return pgx.ErrNoRows
	}
	email := strings.ToLower(worker.Email)
	for id, w := range r.s.workers {
		if id != worker.ID && w.Email == email {
			return repository.ErrDuplicate
		}
	}
	worker.Email = email
	worker.UpdatedAt = r.s.now().UTC()
	r.s.workers[worker.ID] = cloneWorker(*worker)
	return nil
}

func (r workerRepo) GetByID(_ context.Context, id string) (*domain.Worker, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	w, ok := r.s.workers[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	w = cloneWorker(w)
	return &w, nil
}

func (r workerRepo) GetByEmail(_ context.Context, email string) (*domain.Worker, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	email = strings.ToLower(email)
	for _, w := range r.s.workers {
		if w.Email == email {
			w = cloneWorker(w)
			return &w, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r workerRepo) List(_ context.Context, filter repository.WorkerFilter) ([]domain.Worker, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]domain.Worker, 0, len(r.s.workers))
	for _, w := range r.s.workers {
		if filter.Matches(w) {
			out = append(out, cloneWorker(w))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

type workItemRepo struct{ s *Store }

func (r workItemRepo) Create(_ context.Context, item *domain.WorkItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ts := r.s.stamp(&item.ID)
	item.CreatedAt, item.UpdatedAt = ts, ts
	r.s.items[item.ID] = *item
	return nil
}

func (r workItemRepo) Update(_ context.Context, item *domain.WorkItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.items[item.ID]; !ok {
		return pgx.ErrNoRows
	}
	item.UpdatedAt = r.s.now().UTC()
	r.s.items[item.ID] = *item
	return nil
}

func (r workItemRepo) GetByID(_ context.Context, id string) (*domain.WorkItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	item, ok := r.s.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &item, nil
}

// List returns matches in insertion order, which keeps scoring output
// deterministic for callers that depend on input order.
func (r workItemRepo) List(_ context.Context, filter repository.WorkItemFilter) ([]domain.WorkItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ids := make([]string, 0, len(r.s.items))
	for id, item := range r.s.items {
		if filter.Matches(item) {
			ids = append(ids, id)
		}
	}
	r.s.byInsertion(ids)
	out := make([]domain.WorkItem, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.s.items[id])
	}
	return out, nil
}

type historyRepo struct{ s *Store }

func (r historyRepo) Create(_ context.Context, history *domain.WorkItemHistory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	history.CreatedAt = r.s.stamp(&history.ID)
	r.s.history = append(r.s.history, *history)
	return nil
}

func (r historyRepo) ListByWorkItem(_ context.Context, workItemID string) ([]domain.WorkItemHistory, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.WorkItemHistory
	for _, h := range r.s.history {
		if h.WorkItemID == workItemID {
			out = append(out, h)
		}
	}
	return out, nil
}

type leaveRepo struct{ s *Store }

func (r leaveRepo) Create(_ context.Context, leave *domain.LeaveWindow) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ts := r.s.stamp(&leave.ID)
	leave.CreatedAt, leave.UpdatedAt = ts, ts
	r.s.leaves[leave.ID] = *leave
	return nil
}

func (r leaveRepo) Update(_ context.Context, leave *domain.LeaveWindow) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.leaves[leave.ID]; !ok {
		return pgx.ErrNoRows
	}
	leave.UpdatedAt = r.s.now().UTC()
	r.s.leaves[leave.ID] = *leave
	return nil
}

func (r leaveRepo) GetByID(_ context.Context, id string) (*domain.LeaveWindow, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	leave, ok := r.s.leaves[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &leave, nil
}

func (r leaveRepo) List(_ context.Context, filter repository.LeaveFilter) ([]domain.LeaveWindow, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ids := make([]string, 0, len(r.s.leaves))
	for id, l := range r.s.leaves {
		if filter.Matches(l) {
			ids = append(ids, id)
		}
	}
	r.s.byInsertion(ids)
	out := make([]domain.LeaveWindow, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.s.leaves[id])
	}
	return out, nil
}

func cloneWorker(w domain.Worker) domain.Worker {
	w.Skills = append([]string(nil), w.Skills...)
	w.ManagedTeamIDs = append([]string(nil), w.ManagedTeamIDs...)
	if w.TeamID != nil {
		id := *w.TeamID
		w.TeamID = &id
	}
	return w
}
