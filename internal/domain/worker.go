package domain

import (
	"strings"
	"time"
)

// Role enumerates dashboard roles.
type Role string

const (
	RoleEmployee Role = "EMPLOYEE"
	RoleManager  Role = "MANAGER"
	RoleHR       Role = "HR"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleEmployee, RoleManager, RoleHR:
		return true
	}
	return false
}

// Worker is a directory entry for a person who can receive work items.
type Worker struct {
	ID             string
	Name           string
	Email          string
	PasswordHash   string
	Role           Role
	TeamID         *string
	Position       string
	Skills         []string
	ManagedTeamIDs []string
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// InTeam reports whether the worker belongs to the given team.
func (w *Worker) InTeam(teamID string) bool {
	return w != nil && w.TeamID != nil && *w.TeamID == teamID
}

// Manages reports whether the worker manages the given team.
func (w *Worker) Manages(teamID string) bool {
	if w == nil {
		return false
	}
	for _, id := range w.ManagedTeamIDs {
		if id == teamID {
			return true
		}
	}
	return false
}

// ManagesWorker reports whether other sits in one of w's managed teams.
func (w *Worker) ManagesWorker(other *Worker) bool {
	if other == nil || other.TeamID == nil {
		return false
	}
	return w.Manages(*other.TeamID)
}

// NormalizeSkills trims, drops empties and de-duplicates case-insensitively,
// preserving the first spelling and the original order.
func NormalizeSkills(skills []string) []string {
	seen := make(map[string]struct{}, len(skills))
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}
