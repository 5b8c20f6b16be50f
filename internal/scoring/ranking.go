package scoring

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spec-kit/workforce-service/internal/domain"
)

// GeneralAvailability is the match reason for candidates without a skill hit.
const GeneralAvailability = "General Availability"

// TaskDraft is the manager's not-yet-created work item.
type TaskDraft struct {
	Title       string
	Description string
	Deadline    domain.Date
}

// AssignmentSuggestion is one ranked candidate.
type AssignmentSuggestion struct {
	Worker          domain.Worker
	MatchReason     string
	MatchedSkill    string
	StressScore     int
	ConflictWarning string
}

// SkillMatched reports whether the candidate matched on a skill.
func (s AssignmentSuggestion) SkillMatched() bool {
	return s.MatchedSkill != ""
}

// LeaveConflictWarning is set on a suggestion whose worker is away on the
// draft's deadline.
func LeaveConflictWarning(name string) string {
	return fmt.Sprintf("Alert: High-priority conflict detected. %s is scheduled for leave during this period.", name)
}

// RankCandidates scores every candidate for draft and orders them: skill
// matches first, then ascending stress. Ties keep candidate order.
//
// Conflict warnings are informational and never drop or demote a candidate.
// When several leave windows cover the deadline, the last one in
// leavesByWorker wins. The result is not truncated.
func (e *Engine) RankCandidates(
	draft TaskDraft,
	candidates []domain.Worker,
	itemsByWorker map[string][]domain.WorkItem,
	leavesByWorker map[string][]domain.LeaveWindow,
) []AssignmentSuggestion {
	search := strings.ToLower(draft.Title + " " + draft.Description)

	suggestions := make([]AssignmentSuggestion, 0, len(candidates))
	for _, worker := range candidates {
		s := AssignmentSuggestion{
			Worker:      worker,
			MatchReason: GeneralAvailability,
			StressScore: e.ComputeStress(itemsByWorker[worker.ID]).Score,
		}
		if skill, ok := firstMatchingSkill(worker.Skills, search); ok {
			s.MatchedSkill = skill
			s.MatchReason = "Matches skill: " + skill
		}
		for _, leave := range leavesByWorker[worker.ID] {
			if leave.Covers(draft.Deadline) {
				s.ConflictWarning = LeaveConflictWarning(worker.Name)
			}
		}
		suggestions = append(suggestions, s)
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		if a.SkillMatched() != b.SkillMatched() {
			return a.SkillMatched()
		}
		return a.StressScore < b.StressScore
	})
	return suggestions
}

// firstMatchingSkill returns the first skill, in the worker's own order,
// that occurs in search. Blank skills never match.
func firstMatchingSkill(skills []string, search string) (string, bool) {
	for _, skill := range skills {
		needle := strings.ToLower(strings.TrimSpace(skill))
		if needle == "" {
			continue
		}
		if strings.Contains(search, needle) {
			return skill, true
		}
	}
	return "", false
}

// Top returns at most n suggestions. n <= 0 returns all of them.
func Top(suggestions []AssignmentSuggestion, n int) []AssignmentSuggestion {
	if n <= 0 || n >= len(suggestions) {
		return suggestions
	}
	return suggestions[:n]
}
