package scoring

import (
	"fmt"

	"github.com/spec-kit/workforce-service/internal/domain"
)

// ConflictMessage describes an item due inside a proposed absence.
func ConflictMessage(title string) string {
	return fmt.Sprintf("High Priority Task: '%s' is due during these dates.", title)
}

// CheckConflicts lists, in input order, every active item whose deadline
// falls inside [start, end]. A window with a missing or inverted bound has no
// conflicts.
func (e *Engine) CheckConflicts(items []domain.WorkItem, start, end domain.Date) []string {
	window := domain.LeaveWindow{StartDate: start, EndDate: end}
	conflicts := []string{}
	for _, item := range items {
		if !item.Active() || item.Deadline.IsZero() {
			continue
		}
		if window.Covers(item.Deadline) {
			conflicts = append(conflicts, ConflictMessage(item.Title))
		}
	}
	return conflicts
}
