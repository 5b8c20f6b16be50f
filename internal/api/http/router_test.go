package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/workforce-service/internal/api/http/handlers"
	"github.com/spec-kit/workforce-service/internal/auth"
	"github.com/spec-kit/workforce-service/internal/config"
	"github.com/spec-kit/workforce-service/internal/domain"
	"github.com/spec-kit/workforce-service/internal/events"
	"github.com/spec-kit/workforce-service/internal/observability"
	"github.com/spec-kit/workforce-service/internal/repository/memstore"
	"github.com/spec-kit/workforce-service/internal/scoring"
	"github.com/spec-kit/workforce-service/internal/service"
)

const password = "password123"

var now = time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

type apiError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}

type envelope[T any] struct {
	Data  T         `json:"data"`
	Error *apiError `json:"error"`
}

type testServer struct {
	app      *fiber.App
	metrics  *observability.Metrics
	store    *memstore.Store
	platform domain.Team
	mia      *domain.Worker
	ana      *domain.Worker
	ben      *domain.Worker
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()
	s := &testServer{store: memstore.New(), metrics: observability.NewMetrics()}

	cfg := config.Config{
		App:     config.AppConfig{Name: "workforce-service", Version: "test"},
		Auth:    config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 5, BcryptCost: 4},
		Scoring: config.ScoringConfig{SuggestionLimit: 3, LoadCritical: 95, LoadHigh: 75, LoadMaxActiveItems: 5},
	}

	s.platform = domain.Team{Name: "Platform", Department: "Engineering"}
	if err := s.store.Teams().Create(ctx, &s.platform); err != nil {
		t.Fatal(err)
	}

	hash, err := auth.HashPassword(password, 4)
	if err != nil {
		t.Fatal(err)
	}
	add := func(name, email string, role domain.Role, teamID *string, skills ...string) *domain.Worker {
		w := &domain.Worker{Name: name, Email: email, PasswordHash: hash, Role: role, TeamID: teamID, Skills: skills, Active: true}
		if role == domain.RoleManager {
			w.ManagedTeamIDs = []string{s.platform.ID}
		}
		if err := s.store.Workers().Create(ctx, w); err != nil {
			t.Fatal(err)
		}
		return w
	}
	s.mia = add("Mia", "mia@example.com", domain.RoleManager, nil)
	add("Hal", "hal@example.com", domain.RoleHR, nil)
	s.ana = add("Ana", "ana@example.com", domain.RoleEmployee, &s.platform.ID, "Go")
	s.ben = add("Ben", "ben@example.com", domain.RoleEmployee, &s.platform.ID, "React")

	today := domain.DateOf(now)
	item := &domain.WorkItem{Title: "Ship API", Status: domain.WorkItemStatusOpen, Priority: 3, Deadline: today.AddDays(5), AssigneeID: s.ana.ID}
	if err := s.store.WorkItems().Create(ctx, item); err != nil {
		t.Fatal(err)
	}

	engine := &scoring.Engine{Now: func() time.Time { return now }}
	dispatcher := events.NewInMemoryDispatcher()
	logger := zap.NewNop()

	authSvc := service.NewAuthService(cfg, service.AuthDependencies{WorkerRepo: s.store.Workers()})
	wellness := service.NewWellnessService(service.WellnessDependencies{
		WorkerRepo:   s.store.Workers(),
		WorkItemRepo: s.store.WorkItems(),
		HistoryRepo:  s.store.History(),
		Engine:       engine,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	leave := service.NewLeaveService(cfg.Scoring, service.LeaveDependencies{
		WorkerRepo:   s.store.Workers(),
		WorkItemRepo: s.store.WorkItems(),
		HistoryRepo:  s.store.History(),
		LeaveRepo:    s.store.Leaves(),
		Engine:       engine,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	assignments := service.NewAssignmentService(cfg.Scoring, service.AssignmentDependencies{
		WorkerRepo:   s.store.Workers(),
		WorkItemRepo: s.store.WorkItems(),
		HistoryRepo:  s.store.History(),
		LeaveRepo:    s.store.Leaves(),
		Engine:       engine,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	teams := service.NewTeamService(cfg.Scoring, service.TeamDependencies{
		WorkerRepo:   s.store.Workers(),
		TeamRepo:     s.store.Teams(),
		WorkItemRepo: s.store.WorkItems(),
		Engine:       engine,
	})
	directory := service.NewDirectoryService(cfg, service.DirectoryDependencies{
		TeamRepo:   s.store.Teams(),
		WorkerRepo: s.store.Workers(),
	})

	s.app = fiber.New()
	RegisterMiddlewares(s.app, logger, s.metrics, time.Second)
	RegisterRoutes(s.app, RouteConfig{
		Health:         handlers.NewHealthHandler("workforce-service", "test", stubPinger{}, stubPinger{err: errors.New("connection refused")}),
		Auth:           handlers.NewAuthHandler(authSvc),
		Me:             handlers.NewMeHandler(wellness, leave),
		Manager:        handlers.NewManagerHandler(teams, assignments, leave),
		HR:             handlers.NewHRHandler(directory),
		AuthMiddleware: auth.NewAuthMiddleware(authSvc.TokenManager(), s.store.Workers()),
	})
	return s
}

func (s *testServer) call(t *testing.T, method, path, token string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, out
}

func (s *testServer) login(t *testing.T, email string) string {
	t.Helper()
	status, body := s.call(t, fiber.MethodPost, "/auth/login", "", map[string]string{"email": email, "password": password})
	if status != fiber.StatusOK {
		t.Fatalf("login %s: %d %s", email, status, body)
	}
	var resp envelope[struct {
		Auth struct {
			Token string `json:"token"`
		} `json:"auth"`
	}]
	decode(t, body, &resp)
	return resp.Data.Auth.Token
}

func decode(t *testing.T, body []byte, v any) {
	t.Helper()
	if err := json.Unmarshal(body, v); err != nil {
		t.Fatalf("decode %s: %v", body, err)
	}
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	var resp envelope[json.RawMessage]
	decode(t, body, &resp)
	if resp.Error == nil {
		t.Fatalf("expected error body, got %s", body)
	}
	return resp.Error.Code
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	status, _ := s.call(t, fiber.MethodGet, "/health/live", "", nil)
	if status != fiber.StatusOK {
		t.Fatalf("live status = %d", status)
	}

	status, body := s.call(t, fiber.MethodGet, "/health/ready", "", nil)
	if status != fiber.StatusServiceUnavailable {
		t.Fatalf("ready status = %d", status)
	}
	var resp envelope[json.RawMessage]
	decode(t, body, &resp)
	if resp.Error == nil || resp.Error.Code != "DEPENDENCY_UNAVAILABLE" {
		t.Fatalf("ready body = %s", body)
	}
	if resp.Error.Details["postgres"] != "ok" || resp.Error.Details["redis"] != "connection refused" {
		t.Fatalf("details = %v", resp.Error.Details)
	}
}

func TestErrorRendering(t *testing.T) {
	s := newTestServer(t)
	employee := s.login(t, "ana@example.com")

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
		status int
		code   string
	}{
		{"unknown route", fiber.MethodGet, "/nope", "", nil, fiber.StatusNotFound, "NOT_FOUND"},
		{"missing token", fiber.MethodGet, "/me/wellness", "", nil, fiber.StatusUnauthorized, "UNAUTHORIZED"},
		{"garbage token", fiber.MethodGet, "/me/wellness", "abc", nil, fiber.StatusUnauthorized, "UNAUTHORIZED"},
		{"wrong role", fiber.MethodGet, "/manager/team/heatmap", employee, nil, fiber.StatusForbidden, "FORBIDDEN"},
		{"hr only", fiber.MethodGet, "/hr/workers", employee, nil, fiber.StatusForbidden, "FORBIDDEN"},
		{"bad credentials", fiber.MethodPost, "/auth/login", "", map[string]string{"email": "ana@example.com", "password": "nope"}, fiber.StatusUnauthorized, "UNAUTHORIZED"},
		{"invalid status", fiber.MethodPatch, "/me/items/whatever/status", employee, map[string]string{"status": "LATER"}, fiber.StatusBadRequest, "VALIDATION_FAILED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := s.call(t, tt.method, tt.path, tt.token, tt.body)
			if status != tt.status {
				t.Fatalf("status = %d want %d (%s)", status, tt.status, body)
			}
			if code := errorCode(t, body); code != tt.code {
				t.Fatalf("code = %s want %s", code, tt.code)
			}
		})
	}

	var unauthorized int64
	for key, n := range s.metrics.Snapshot().Errors {
		if strings.HasSuffix(key, "|UNAUTHORIZED") {
			unauthorized += n
		}
	}
	if unauthorized != 3 {
		t.Fatalf("unauthorized error count = %d", unauthorized)
	}
}

func TestLogin_ValidationDetails(t *testing.T) {
	s := newTestServer(t)
	status, body := s.call(t, fiber.MethodPost, "/auth/login", "", map[string]string{"email": "not-an-email"})
	if status != fiber.StatusBadRequest {
		t.Fatalf("status = %d", status)
	}
	var resp envelope[json.RawMessage]
	decode(t, body, &resp)
	if resp.Error.Details["email"] != "email" || resp.Error.Details["password"] != "required" {
		t.Fatalf("details = %v", resp.Error.Details)
	}
}

func TestEmployeeWellnessAndItems(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "ana@example.com")

	status, body := s.call(t, fiber.MethodGet, "/me/wellness", token, nil)
	if status != fiber.StatusOK {
		t.Fatalf("wellness: %d %s", status, body)
	}
	var wellness envelope[struct {
		Stress scoring.StressMetrics `json:"stress"`
	}]
	decode(t, body, &wellness)
	// 1 active item * 10 + priority 3 - 5 days.
	if wellness.Data.Stress.Score != 8 || wellness.Data.Stress.Status != scoring.StatusGreen {
		t.Fatalf("stress = %+v", wellness.Data.Stress)
	}

	status, body = s.call(t, fiber.MethodGet, "/me/items", token, nil)
	if status != fiber.StatusOK {
		t.Fatalf("items: %d %s", status, body)
	}
	var items envelope[[]struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}]
	decode(t, body, &items)
	if len(items.Data) != 1 {
		t.Fatalf("items = %s", body)
	}

	status, body = s.call(t, fiber.MethodPatch, "/me/items/"+items.Data[0].ID+"/status", token, map[string]string{"status": "done"})
	if status != fiber.StatusOK {
		t.Fatalf("patch: %d %s", status, body)
	}

	_, body = s.call(t, fiber.MethodGet, "/me/wellness", token, nil)
	decode(t, body, &wellness)
	if wellness.Data.Stress.ActiveItemCount != 0 || wellness.Data.Stress.Score != 0 {
		t.Fatalf("stress after done = %+v", wellness.Data.Stress)
	}
}

func TestLeaveRequestReviewAndHandover(t *testing.T) {
	s := newTestServer(t)
	ana := s.login(t, "ana@example.com")
	mia := s.login(t, "mia@example.com")
	today := domain.DateOf(now)

	window := map[string]string{"start_date": today.AddDays(3).String(), "end_date": today.AddDays(7).String()}
	status, body := s.call(t, fiber.MethodPost, "/me/leave/preview", ana, window)
	if status != fiber.StatusOK {
		t.Fatalf("preview: %d %s", status, body)
	}
	var preview envelope[struct {
		Conflicts []string `json:"conflicts"`
	}]
	decode(t, body, &preview)
	if len(preview.Data.Conflicts) != 1 {
		t.Fatalf("preview conflicts = %v", preview.Data.Conflicts)
	}

	status, body = s.call(t, fiber.MethodPost, "/me/leave", ana, map[string]string{
		"type":       "Vacation",
		"start_date": window["start_date"],
		"end_date":   window["end_date"],
	})
	if status != fiber.StatusCreated {
		t.Fatalf("request: %d %s", status, body)
	}
	var created envelope[struct {
		Leave struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"leave"`
		Conflicts []string `json:"conflicts"`
	}]
	decode(t, body, &created)
	if created.Data.Leave.Status != "PENDING" || len(created.Data.Conflicts) != 1 {
		t.Fatalf("created = %s", body)
	}
	leaveID := created.Data.Leave.ID

	_, body = s.call(t, fiber.MethodGet, "/manager/leave/pending", mia, nil)
	var pending envelope[[]struct {
		Worker struct {
			WorkerID string `json:"worker_id"`
		} `json:"worker"`
	}]
	decode(t, body, &pending)
	if len(pending.Data) != 1 || pending.Data[0].Worker.WorkerID != s.ana.ID {
		t.Fatalf("pending = %s", body)
	}

	_, body = s.call(t, fiber.MethodGet, "/manager/leave/"+leaveID+"/handover", mia, nil)
	var handover envelope[struct {
		Candidate *struct {
			WorkerID string `json:"worker_id"`
		} `json:"candidate"`
	}]
	decode(t, body, &handover)
	if handover.Data.Candidate == nil || handover.Data.Candidate.WorkerID != s.ben.ID {
		t.Fatalf("handover = %s", body)
	}

	status, body = s.call(t, fiber.MethodPost, "/manager/leave/"+leaveID+"/review", mia, map[string]string{"decision": "MAYBE"})
	if status != fiber.StatusBadRequest || errorCode(t, body) != "VALIDATION_FAILED" {
		t.Fatalf("bad decision: %d %s", status, body)
	}

	status, body = s.call(t, fiber.MethodPost, "/manager/leave/"+leaveID+"/review", mia, map[string]string{
		"decision":    "APPROVED",
		"handover_to": s.ben.ID,
	})
	if status != fiber.StatusOK {
		t.Fatalf("review: %d %s", status, body)
	}
	var reviewed envelope[struct {
		Leave struct {
			Status string `json:"status"`
		} `json:"leave"`
		Reassigned []struct {
			AssigneeID string `json:"assignee_id"`
		} `json:"reassigned"`
	}]
	decode(t, body, &reviewed)
	if reviewed.Data.Leave.Status != "APPROVED" || len(reviewed.Data.Reassigned) != 1 || reviewed.Data.Reassigned[0].AssigneeID != s.ben.ID {
		t.Fatalf("reviewed = %s", body)
	}

	status, body = s.call(t, fiber.MethodPost, "/manager/leave/"+leaveID+"/review", mia, map[string]string{"decision": "REJECTED", "reason": "late"})
	if status != fiber.StatusConflict {
		t.Fatalf("second review: %d %s", status, body)
	}
}

func TestManagerSuggestAndAssign(t *testing.T) {
	s := newTestServer(t)
	mia := s.login(t, "mia@example.com")
	deadline := domain.DateOf(now).AddDays(4).String()

	status, body := s.call(t, fiber.MethodPost, "/manager/assignments/suggest", mia, map[string]any{
		"title":    "Go worker pool",
		"deadline": deadline,
	})
	if status != fiber.StatusOK {
		t.Fatalf("suggest: %d %s", status, body)
	}
	var suggestions envelope[[]struct {
		WorkerID    string `json:"worker_id"`
		MatchReason string `json:"match_reason"`
	}]
	decode(t, body, &suggestions)
	if len(suggestions.Data) != 2 || suggestions.Data[0].WorkerID != s.ana.ID {
		t.Fatalf("suggestions = %s", body)
	}

	status, body = s.call(t, fiber.MethodPost, "/manager/assignments", mia, map[string]any{
		"title":       "Go worker pool",
		"priority":    9,
		"assignee_id": s.ben.ID,
	})
	if status != fiber.StatusBadRequest {
		t.Fatalf("priority 9: %d %s", status, body)
	}
	var invalid envelope[json.RawMessage]
	decode(t, body, &invalid)
	if invalid.Error.Details["priority"] != "max=5" {
		t.Fatalf("details = %v", invalid.Error.Details)
	}

	status, body = s.call(t, fiber.MethodPost, "/manager/assignments", mia, map[string]any{
		"title":       "Go worker pool",
		"priority":    2,
		"deadline":    deadline,
		"assignee_id": s.ben.ID,
	})
	if status != fiber.StatusCreated {
		t.Fatalf("assign: %d %s", status, body)
	}

	_, body = s.call(t, fiber.MethodGet, "/manager/team/members/"+s.ben.ID+"/load", mia, nil)
	var load envelope[struct {
		Member struct {
			Stress scoring.StressMetrics `json:"stress"`
		} `json:"member"`
	}]
	decode(t, body, &load)
	if load.Data.Member.Stress.ActiveItemCount != 1 {
		t.Fatalf("load = %s", body)
	}

	_, body = s.call(t, fiber.MethodGet, "/manager/team/heatmap", mia, nil)
	var heat envelope[[]struct {
		TeamID           string `json:"team_id"`
		TotalActiveItems int    `json:"total_active_items"`
	}]
	decode(t, body, &heat)
	if len(heat.Data) != 1 || heat.Data[0].TeamID != s.platform.ID || heat.Data[0].TotalActiveItems != 2 {
		t.Fatalf("heatmap = %s", body)
	}
}

func TestHRDirectory(t *testing.T) {
	s := newTestServer(t)
	hal := s.login(t, "hal@example.com")

	status, body := s.call(t, fiber.MethodPost, "/hr/teams", hal, map[string]string{"name": "Data"})
	if status != fiber.StatusCreated {
		t.Fatalf("team: %d %s", status, body)
	}
	var team envelope[struct {
		ID string `json:"id"`
	}]
	decode(t, body, &team)

	newWorker := map[string]any{
		"name":     "Cid Park",
		"email":    "cid@example.com",
		"password": "longenough",
		"role":     "EMPLOYEE",
		"team_id":  team.Data.ID,
		"skills":   []string{"SQL", " sql ", ""},
	}
	status, body = s.call(t, fiber.MethodPost, "/hr/workers", hal, newWorker)
	if status != fiber.StatusCreated {
		t.Fatalf("worker: %d %s", status, body)
	}
	var created envelope[struct {
		ID     string   `json:"id"`
		Skills []string `json:"skills"`
	}]
	decode(t, body, &created)
	if len(created.Data.Skills) != 1 {
		t.Fatalf("skills = %v", created.Data.Skills)
	}
	if bytes.Contains(body, []byte("password")) {
		t.Fatalf("response leaks credentials: %s", body)
	}

	status, body = s.call(t, fiber.MethodPost, "/hr/workers", hal, newWorker)
	if status != fiber.StatusConflict {
		t.Fatalf("duplicate: %d %s", status, body)
	}

	status, body = s.call(t, fiber.MethodPut, "/hr/workers/"+created.Data.ID, hal, map[string]any{"active": false})
	if status != fiber.StatusOK {
		t.Fatalf("update: %d %s", status, body)
	}

	_, body = s.call(t, fiber.MethodGet, "/hr/workers?active=true&team_id="+team.Data.ID, hal, nil)
	var listed envelope[[]json.RawMessage]
	decode(t, body, &listed)
	if len(listed.Data) != 0 {
		t.Fatalf("active workers in new team = %s", body)
	}

	status, _ = s.call(t, fiber.MethodGet, "/hr/workers?role=BOSS", hal, nil)
	if status != fiber.StatusBadRequest {
		t.Fatalf("bad role filter status = %d", status)
	}
}
