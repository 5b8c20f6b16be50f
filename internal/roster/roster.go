// Package roster reads YAML descriptions of teams, workers, work items and
// leave windows and turns them into domain records with stable IDs.
package roster

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/spec-kit/workforce-service/internal/domain"
	"github.com/spec-kit/workforce-service/internal/scoring"
)

var idNamespace = uuid.MustParse("6f1c2a4e-8b3d-4f5a-9c7e-2d1b0a9e8f71")

// Roster mirrors the YAML file layout.
type Roster struct {
	Teams   []Team   `yaml:"teams"`
	Workers []Worker `yaml:"workers"`
	Items   []Item   `yaml:"items"`
	Leaves  []Leave  `yaml:"leaves"`
}

type Team struct {
	ID         string `yaml:"id"`
	Name       string `yaml:"name"`
	Department string `yaml:"department"`
}

type Worker struct {
	ID       string   `yaml:"id"`
	Name     string   `yaml:"name"`
	Email    string   `yaml:"email"`
	Password string   `yaml:"password"`
	Role     string   `yaml:"role"`
	Team     string   `yaml:"team"`
	Position string   `yaml:"position"`
	Skills   []string `yaml:"skills"`
	Manages  []string `yaml:"manages"`
	Active   *bool    `yaml:"active"`
}

// Item is a work item. Assignee holds a worker id or, for older rosters,
// the worker's display name.
type Item struct {
	ID          string      `yaml:"id"`
	Title       string      `yaml:"title"`
	Description string      `yaml:"description"`
	Status      string      `yaml:"status"`
	Priority    int         `yaml:"priority"`
	Deadline    domain.Date `yaml:"deadline"`
	Assignee    string      `yaml:"assignee"`
}

type Leave struct {
	ID     string      `yaml:"id"`
	Worker string      `yaml:"worker"`
	Type   string      `yaml:"type"`
	Start  domain.Date `yaml:"start"`
	End    domain.Date `yaml:"end"`
	Reason string      `yaml:"reason"`
	Status string      `yaml:"status"`
}

// Load reads and decodes a roster file.
func Load(path string) (*Roster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open roster: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes a roster document. Unknown keys are rejected; dates that do
// not parse decode as absent.
func Parse(r io.Reader) (*Roster, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var out Roster
	if err := dec.Decode(&out); err != nil {
		if errors.Is(err, io.EOF) {
			return &out, nil
		}
		return nil, fmt.Errorf("decode roster: %w", err)
	}
	return &out, nil
}

// StableID maps a roster key to a UUID. Keys that already are UUIDs are
// kept; others hash to the same UUID on every run.
func StableID(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	if id, err := uuid.Parse(key); err == nil {
		return id.String()
	}
	return uuid.NewSHA1(idNamespace, []byte(key)).String()
}

func (w Worker) key() string {
	if strings.TrimSpace(w.ID) != "" {
		return strings.TrimSpace(w.ID)
	}
	return strings.ToLower(strings.TrimSpace(w.Email))
}

func (t Team) key() string {
	if strings.TrimSpace(t.ID) != "" {
		return strings.TrimSpace(t.ID)
	}
	return strings.TrimSpace(t.Name)
}

// Dataset is a validated roster converted to domain records.
type Dataset struct {
	Teams   []domain.Team
	Workers []domain.Worker
	Items   []domain.WorkItem
	Leaves  []domain.LeaveWindow

	// Passwords holds plain-text passwords by worker ID for seeding.
	Passwords map[string]string

	byKey map[string]string
}

// Dataset validates the roster and converts it. All problems are reported
// together.
func (r *Roster) Dataset() (*Dataset, error) {
	var problems []error
	d := &Dataset{Passwords: map[string]string{}, byKey: map[string]string{}}

	teamIDs := map[string]bool{}
	for i, t := range r.Teams {
		key := t.key()
		switch {
		case strings.TrimSpace(t.Name) == "":
			problems = append(problems, fmt.Errorf("teams[%d]: name is required", i))
			continue
		case teamIDs[StableID(key)]:
			problems = append(problems, fmt.Errorf("teams[%d]: duplicate id %q", i, key))
			continue
		}
		id := StableID(key)
		teamIDs[id] = true
		d.Teams = append(d.Teams, domain.Team{ID: id, Name: strings.TrimSpace(t.Name), Department: strings.TrimSpace(t.Department)})
	}

	names := map[string]string{}
	emails := map[string]bool{}
	for i, w := range r.Workers {
		worker, err := w.toDomain(teamIDs)
		if err != nil {
			problems = append(problems, fmt.Errorf("workers[%d]: %w", i, err))
			continue
		}
		if _, dup := d.byKey[w.key()]; dup {
			problems = append(problems, fmt.Errorf("workers[%d]: duplicate id %q", i, w.key()))
			continue
		}
		if emails[worker.Email] {
			problems = append(problems, fmt.Errorf("workers[%d]: duplicate email %q", i, worker.Email))
			continue
		}
		emails[worker.Email] = true
		d.byKey[w.key()] = worker.ID
		d.byKey[worker.ID] = worker.ID
		names[strings.ToLower(worker.Name)] = worker.ID
		if w.Password != "" {
			d.Passwords[worker.ID] = w.Password
		}
		d.Workers = append(d.Workers, worker)
	}

	for i, it := range r.Items {
		item, err := it.toDomain(i, d.byKey)
		if err != nil {
			problems = append(problems, fmt.Errorf("items[%d]: %w", i, err))
			continue
		}
		d.Items = append(d.Items, item)
	}

	for i, l := range r.Leaves {
		workerID, ok := d.byKey[strings.TrimSpace(l.Worker)]
		if !ok {
			workerID, ok = names[strings.ToLower(strings.TrimSpace(l.Worker))]
		}
		if !ok {
			problems = append(problems, fmt.Errorf("leaves[%d]: unknown worker %q", i, l.Worker))
			continue
		}
		leave, err := l.toDomain(i, workerID)
		if err != nil {
			problems = append(problems, fmt.Errorf("leaves[%d]: %w", i, err))
			continue
		}
		d.Leaves = append(d.Leaves, leave)
	}

	if len(problems) > 0 {
		return nil, errors.Join(problems...)
	}
	return d, nil
}

func (w Worker) toDomain(teamIDs map[string]bool) (domain.Worker, error) {
	name := strings.TrimSpace(w.Name)
	email := strings.ToLower(strings.TrimSpace(w.Email))
	if name == "" || email == "" {
		return domain.Worker{}, errors.New("name and email are required")
	}
	role := domain.Role(strings.ToUpper(strings.TrimSpace(w.Role)))
	if role == "" {
		role = domain.RoleEmployee
	}
	if !role.Valid() {
		return domain.Worker{}, fmt.Errorf("invalid role %q", w.Role)
	}

	worker := domain.Worker{
		ID:       StableID(w.key()),
		Name:     name,
		Email:    email,
		Role:     role,
		Position: strings.TrimSpace(w.Position),
		Skills:   domain.NormalizeSkills(w.Skills),
		Active:   w.Active == nil || *w.Active,
	}
	if w.Team != "" {
		teamID := StableID(w.Team)
		if !teamIDs[teamID] {
			return domain.Worker{}, fmt.Errorf("unknown team %q", w.Team)
		}
		worker.TeamID = &teamID
	}
	for _, managed := range w.Manages {
		teamID := StableID(managed)
		if !teamIDs[teamID] {
			return domain.Worker{}, fmt.Errorf("unknown managed team %q", managed)
		}
		worker.ManagedTeamIDs = append(worker.ManagedTeamIDs, teamID)
	}
	if role != domain.RoleManager && len(worker.ManagedTeamIDs) > 0 {
		return domain.Worker{}, errors.New("only managers can manage teams")
	}
	return worker, nil
}

func (it Item) toDomain(index int, workers map[string]string) (domain.WorkItem, error) {
	title := strings.TrimSpace(it.Title)
	if title == "" {
		return domain.WorkItem{}, errors.New("title is required")
	}
	assignee := strings.TrimSpace(it.Assignee)
	if assignee == "" {
		return domain.WorkItem{}, errors.New("assignee is required")
	}
	if id, ok := workers[assignee]; ok {
		assignee = id
	}
	status := domain.WorkItemStatusOpen
	if it.Status != "" {
		parsed, ok := domain.ParseWorkItemStatus(it.Status)
		if !ok {
			return domain.WorkItem{}, fmt.Errorf("invalid status %q", it.Status)
		}
		status = parsed
	}
	key := it.ID
	if strings.TrimSpace(key) == "" {
		key = fmt.Sprintf("item#%d", index)
	}
	return domain.WorkItem{
		ID:          StableID(key),
		Title:       title,
		Description: strings.TrimSpace(it.Description),
		Status:      status,
		Priority:    it.Priority,
		Deadline:    it.Deadline,
		AssigneeID:  assignee,
	}, nil
}

func (l Leave) toDomain(index int, workerID string) (domain.LeaveWindow, error) {
	leaveType := strings.TrimSpace(l.Type)
	if leaveType == "" {
		return domain.LeaveWindow{}, errors.New("type is required")
	}
	status := domain.LeaveStatusPending
	if l.Status != "" {
		status = domain.LeaveStatus(strings.ToUpper(strings.TrimSpace(l.Status)))
		switch status {
		case domain.LeaveStatusPending, domain.LeaveStatusApproved, domain.LeaveStatusRejected:
		default:
			return domain.LeaveWindow{}, fmt.Errorf("invalid status %q", l.Status)
		}
	}
	key := l.ID
	if strings.TrimSpace(key) == "" {
		key = fmt.Sprintf("leave#%d", index)
	}
	return domain.LeaveWindow{
		ID:          StableID(key),
		WorkerID:    workerID,
		Type:        leaveType,
		StartDate:   l.Start,
		EndDate:     l.End,
		Reason:      strings.TrimSpace(l.Reason),
		Status:      status,
		BurnoutFlag: strings.EqualFold(leaveType, domain.LeaveTypeBurnout),
	}, nil
}

// WorkerID resolves a roster key, stored ID or display name to a worker ID.
func (d *Dataset) WorkerID(key string) (string, bool) {
	key = strings.TrimSpace(key)
	if id, ok := d.byKey[key]; ok {
		return id, true
	}
	for _, w := range d.Workers {
		if strings.EqualFold(w.Name, key) {
			return w.ID, true
		}
	}
	return "", false
}

// Worker returns the worker with the given ID.
func (d *Dataset) Worker(id string) (domain.Worker, bool) {
	for _, w := range d.Workers {
		if w.ID == id {
			return w, true
		}
	}
	return domain.Worker{}, false
}

// TeamName returns the name of teamID, or "" when unknown.
func (d *Dataset) TeamName(teamID *string) string {
	if teamID == nil {
		return ""
	}
	for _, t := range d.Teams {
		if t.ID == *teamID {
			return t.Name
		}
	}
	return ""
}

// ItemsByWorker groups items under each worker's ID, matching by ID or name.
func (d *Dataset) ItemsByWorker() map[string][]domain.WorkItem {
	return scoring.GroupItemsByWorker(d.Items, d.Workers)
}

// LeavesByWorker groups leave windows in one of statuses by worker ID.
func (d *Dataset) LeavesByWorker(statuses ...domain.LeaveStatus) map[string][]domain.LeaveWindow {
	var kept []domain.LeaveWindow
	for _, l := range d.Leaves {
		for _, s := range statuses {
			if l.Status == s {
				kept = append(kept, l)
				break
			}
		}
	}
	return scoring.GroupLeavesByWorker(kept)
}
