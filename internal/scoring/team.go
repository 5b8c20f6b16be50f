package scoring

import (
	"fmt"
	"math"
	"sort"

	"github.com/spec-kit/workforce-service/internal/domain"
)

// GroupItemsByWorker joins items to workers on the assignee ID.
//
// Older rows stored the assignee's display name instead of an ID. An item
// whose AssigneeID matches no worker ID is attached to every worker with
// that exact name; it is never matched by name when an ID hit exists.
func GroupItemsByWorker(items []domain.WorkItem, workers []domain.Worker) map[string][]domain.WorkItem {
	ids := make(map[string]struct{}, len(workers))
	byName := make(map[string][]string, len(workers))
	for _, w := range workers {
		ids[w.ID] = struct{}{}
		if w.Name != "" {
			byName[w.Name] = append(byName[w.Name], w.ID)
		}
	}

	grouped := make(map[string][]domain.WorkItem, len(workers))
	for _, item := range items {
		if _, ok := ids[item.AssigneeID]; ok {
			grouped[item.AssigneeID] = append(grouped[item.AssigneeID], item)
			continue
		}
		for _, id := range byName[item.AssigneeID] {
			grouped[id] = append(grouped[id], item)
		}
	}
	return grouped
}

// GroupLeavesByWorker indexes leave windows by owner.
func GroupLeavesByWorker(leaves []domain.LeaveWindow) map[string][]domain.LeaveWindow {
	grouped := make(map[string][]domain.LeaveWindow)
	for _, l := range leaves {
		grouped[l.WorkerID] = append(grouped[l.WorkerID], l)
	}
	return grouped
}

// MemberMetrics pairs a worker with their current stress breakdown.
type MemberMetrics struct {
	Worker domain.Worker
	StressMetrics
}

// Members computes metrics for each worker in order.
func (e *Engine) Members(workers []domain.Worker, itemsByWorker map[string][]domain.WorkItem) []MemberMetrics {
	out := make([]MemberMetrics, 0, len(workers))
	for _, w := range workers {
		out = append(out, MemberMetrics{Worker: w, StressMetrics: e.ComputeStress(itemsByWorker[w.ID])})
	}
	return out
}

// TeamSummary aggregates one team for the heat map.
type TeamSummary struct {
	TeamID           string
	Members          []MemberMetrics
	AverageStress    int
	TotalActiveItems int
	Status           StressStatus
}

// SummarizeTeams groups members by team in first-seen order. Members
// without a team are left out.
func SummarizeTeams(members []MemberMetrics) []TeamSummary {
	index := map[string]int{}
	var teams []TeamSummary
	for _, m := range members {
		if m.Worker.TeamID == nil || *m.Worker.TeamID == "" {
			continue
		}
		teamID := *m.Worker.TeamID
		i, ok := index[teamID]
		if !ok {
			i = len(teams)
			index[teamID] = i
			teams = append(teams, TeamSummary{TeamID: teamID})
		}
		teams[i].Members = append(teams[i].Members, m)
	}

	for i := range teams {
		total := 0
		for _, m := range teams[i].Members {
			total += m.Score
			teams[i].TotalActiveItems += m.ActiveItemCount
		}
		teams[i].AverageStress = int(math.Round(float64(total) / float64(len(teams[i].Members))))
		teams[i].Status = Classify(teams[i].AverageStress)
	}
	return teams
}

// LoadPolicy holds the reassignment guard thresholds.
type LoadPolicy struct {
	Critical       int
	High           int
	MaxActiveItems int
}

// DefaultLoadPolicy mirrors the dashboard defaults.
var DefaultLoadPolicy = LoadPolicy{Critical: 95, High: 75, MaxActiveItems: 5}

// LoadWarning flags a member who should not silently receive more work.
type LoadWarning struct {
	Level   StressStatus `json:"level"`
	Message string       `json:"message"`
}

// Blocking reports whether the warning forbids the assignment outright.
func (w *LoadWarning) Blocking() bool {
	return w != nil && w.Level == StatusRed
}

// CheckLoad returns nil when m can take more work under p.
func CheckLoad(m MemberMetrics, p LoadPolicy) *LoadWarning {
	switch {
	case m.Score > p.Critical:
		return &LoadWarning{
			Level:   StatusRed,
			Message: fmt.Sprintf("CRITICAL: %s is at critical burnout risk (Score: %d). Cannot assign.", m.Worker.Name, m.Score),
		}
	case m.Score > p.High:
		return &LoadWarning{
			Level:   StatusYellow,
			Message: fmt.Sprintf("Warning: %s is at high stress (Score: %d). Risk of burnout.", m.Worker.Name, m.Score),
		}
	case m.ActiveItemCount >= p.MaxActiveItems:
		return &LoadWarning{
			Level:   StatusYellow,
			Message: fmt.Sprintf("Warning: %s has high workload (%d tasks).", m.Worker.Name, m.ActiveItemCount),
		}
	}
	return nil
}

// PickHandover chooses who should absorb an absent worker's items: the
// least stressed member, then the one with fewest active items, among those
// under p.High and p.MaxActiveItems. excludeID is never picked.
func PickHandover(members []MemberMetrics, excludeID string, p LoadPolicy) (MemberMetrics, bool) {
	pool := make([]MemberMetrics, 0, len(members))
	for _, m := range members {
		if m.Worker.ID != excludeID {
			pool = append(pool, m)
		}
	}
	sort.SliceStable(pool, func(i, j int) bool {
		if pool[i].Score != pool[j].Score {
			return pool[i].Score < pool[j].Score
		}
		return pool[i].ActiveItemCount < pool[j].ActiveItemCount
	})
	for _, m := range pool {
		if m.Score < p.High && m.ActiveItemCount < p.MaxActiveItems {
			return m, true
		}
	}
	return MemberMetrics{}, false
}
