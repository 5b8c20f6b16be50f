package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/workforce-service/internal/auth"
	"github.com/spec-kit/workforce-service/internal/config"
	"github.com/spec-kit/workforce-service/internal/domain"
	"github.com/spec-kit/workforce-service/internal/events"
	"github.com/spec-kit/workforce-service/internal/repository/memstore"
	"github.com/spec-kit/workforce-service/internal/scoring"
	apperrors "github.com/spec-kit/workforce-service/pkg/util/errorutil"
)

const testPassword = "password123"

var fixedNow = time.Date(2024, time.June, 10, 15, 30, 0, 0, time.UTC)

var (
	hashOnce sync.Once
	testHash string
)

func passwordHash(t *testing.T) string {
	t.Helper()
	hashOnce.Do(func() {
		h, err := auth.HashPassword(testPassword, 4)
		if err != nil {
			t.Fatalf("hash: %v", err)
		}
		testHash = h
	})
	return testHash
}

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) handle(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) ofType(t events.EventType) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// fixture seeds two teams. Team Platform (t1) holds Ana (RED, five items
// due in two days), Ben (GREEN, one item), Eve (critical, nine items due
// today) and the inactive Dee. Cid sits in Data (t2). Mia manages t1 and
// Hal is HR.
type fixture struct {
	ctx    context.Context
	store  *memstore.Store
	engine *scoring.Engine
	events *recorder
	cfg    *config.Config

	platform, data domain.Team
	mia, hal       *domain.Worker
	ana, ben, eve  *domain.Worker
	cid, dee       *domain.Worker
	benItem        *domain.WorkItem

	wellness   *WellnessService
	leave      *LeaveService
	assignment *AssignmentService
	team       *TeamService
	directory  *DirectoryService
	authSvc    *AuthService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		ctx:    context.Background(),
		store:  memstore.New(),
		engine: &scoring.Engine{Now: func() time.Time { return fixedNow }},
		events: &recorder{},
		cfg: &config.Config{
			Auth:    config.AuthConfig{JWTSecret: "test", AccessTokenTTLMinutes: 5, BcryptCost: 4},
			Scoring: config.ScoringConfig{SuggestionLimit: 3, LoadCritical: 95, LoadHigh: 75, LoadMaxActiveItems: 5},
		},
	}

	f.platform = domain.Team{Name: "Platform", Department: "Engineering"}
	f.data = domain.Team{Name: "Data", Department: "Engineering"}
	for _, team := range []*domain.Team{&f.platform, &f.data} {
		if err := f.store.Teams().Create(f.ctx, team); err != nil {
			t.Fatal(err)
		}
	}

	f.mia = f.addWorker(t, "Mia Manager", domain.RoleManager, nil, nil, true)
	f.mia.ManagedTeamIDs = []string{f.platform.ID}
	if err := f.store.Workers().Update(f.ctx, f.mia); err != nil {
		t.Fatal(err)
	}
	f.hal = f.addWorker(t, "Hal HR", domain.RoleHR, nil, nil, true)
	f.ana = f.addWorker(t, "Ana Lee", domain.RoleEmployee, &f.platform.ID, []string{"Go", "Postgres"}, true)
	f.ben = f.addWorker(t, "Ben Ortiz", domain.RoleEmployee, &f.platform.ID, []string{"React"}, true)
	f.eve = f.addWorker(t, "Eve Stone", domain.RoleEmployee, &f.platform.ID, []string{"Go"}, true)
	f.dee = f.addWorker(t, "Dee Quinn", domain.RoleEmployee, &f.platform.ID, []string{"Go"}, false)
	f.cid = f.addWorker(t, "Cid Park", domain.RoleEmployee, &f.data.ID, []string{"Go"}, true)

	for i := 0; i < 5; i++ {
		f.addItem(t, f.ana.ID, "Ana task", 3, 2, domain.WorkItemStatusOpen)
	}
	f.benItem = f.addItem(t, f.ben.ID, "Ben task", 2, 10, domain.WorkItemStatusInProgress)
	for i := 0; i < 9; i++ {
		f.addItem(t, f.eve.ID, "Eve task", 5, 0, domain.WorkItemStatusOpen)
	}

	dispatcher := events.NewInMemoryDispatcher()
	events.SubscribeAll(dispatcher, f.events.handle)
	logger := zap.NewNop()

	f.wellness = NewWellnessService(WellnessDependencies{
		WorkerRepo:   f.store.Workers(),
		WorkItemRepo: f.store.WorkItems(),
		HistoryRepo:  f.store.History(),
		Engine:       f.engine,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	f.leave = NewLeaveService(f.cfg.Scoring, LeaveDependencies{
		WorkerRepo:   f.store.Workers(),
		WorkItemRepo: f.store.WorkItems(),
		HistoryRepo:  f.store.History(),
		LeaveRepo:    f.store.Leaves(),
		Engine:       f.engine,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	f.assignment = NewAssignmentService(f.cfg.Scoring, AssignmentDependencies{
		WorkerRepo:   f.store.Workers(),
		WorkItemRepo: f.store.WorkItems(),
		HistoryRepo:  f.store.History(),
		LeaveRepo:    f.store.Leaves(),
		Engine:       f.engine,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	f.team = NewTeamService(f.cfg.Scoring, TeamDependencies{
		WorkerRepo:   f.store.Workers(),
		TeamRepo:     f.store.Teams(),
		WorkItemRepo: f.store.WorkItems(),
		Engine:       f.engine,
	})
	f.directory = NewDirectoryService(*f.cfg, DirectoryDependencies{
		TeamRepo:   f.store.Teams(),
		WorkerRepo: f.store.Workers(),
	})
	f.authSvc = NewAuthService(*f.cfg, AuthDependencies{WorkerRepo: f.store.Workers()})
	return f
}

func (f *fixture) addWorker(t *testing.T, name string, role domain.Role, teamID *string, skills []string, active bool) *domain.Worker {
	t.Helper()
	w := &domain.Worker{
		Name:         name,
		Email:        emailFor(name),
		PasswordHash: passwordHash(t),
		Role:         role,
		TeamID:       teamID,
		Skills:       skills,
		Active:       active,
	}
	if err := f.store.Workers().Create(f.ctx, w); err != nil {
		t.Fatal(err)
	}
	return w
}

func (f *fixture) addItem(t *testing.T, assignee, title string, priority, dueInDays int, status domain.WorkItemStatus) *domain.WorkItem {
	t.Helper()
	item := &domain.WorkItem{
		Title:      title,
		Status:     status,
		Priority:   priority,
		Deadline:   domain.DateOf(fixedNow).AddDays(dueInDays),
		AssigneeID: assignee,
	}
	if err := f.store.WorkItems().Create(f.ctx, item); err != nil {
		t.Fatal(err)
	}
	return item
}

func (f *fixture) date(offset int) domain.Date {
	return domain.DateOf(fixedNow).AddDays(offset)
}

func emailFor(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r == ' ':
			out = append(out, '.')
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		default:
			out = append(out, r)
		}
	}
	return string(out) + "@example.com"
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	if got := apperrors.ToDomainError(err).Code; got != code {
		t.Fatalf("error code = %s (%v), want %s", got, err, code)
	}
}
