package scoring

import "github.com/spec-kit/workforce-service/internal/domain"

// StressStatus buckets a stress score.
type StressStatus string

const (
	StatusGreen  StressStatus = "GREEN"
	StatusYellow StressStatus = "YELLOW"
	StatusRed    StressStatus = "RED"
)

const (
	// DefaultDeadlineBuffer stands in for the nearest deadline when no
	// active item has one.
	DefaultDeadlineBuffer = 30

	MinScore = 0
	MaxScore = 100

	perItemWeight   = 10
	yellowThreshold = 30
	redThreshold    = 50
)

// StressMetrics is the derived load breakdown for one worker.
type StressMetrics struct {
	Score                 int          `json:"score"`
	Status                StressStatus `json:"status"`
	ActiveItemCount       int          `json:"active_item_count"`
	SumPriority           int          `json:"sum_priority"`
	DaysToNearestDeadline int          `json:"days_to_nearest_deadline"`
}

// ComputeStress scores the active (not DONE) items in items:
//
//	score = active*10 + sum(priority) - daysToNearestDeadline
//
// clamped to [0, 100]. The deadline term is subtracted, so an overdue item
// (negative day count) raises the score and a distant one lowers it.
func (e *Engine) ComputeStress(items []domain.WorkItem) StressMetrics {
	today := e.today()

	var active, sumPriority int
	minDays := DefaultDeadlineBuffer
	for _, item := range items {
		if !item.Active() {
			continue
		}
		active++
		sumPriority += item.Priority
		if item.Deadline.IsZero() {
			continue
		}
		if days := item.Deadline.DaysSince(today); days < minDays {
			minDays = days
		}
	}

	score := clamp(active*perItemWeight+sumPriority-minDays, MinScore, MaxScore)
	return StressMetrics{
		Score:                 score,
		Status:                Classify(score),
		ActiveItemCount:       active,
		SumPriority:           sumPriority,
		DaysToNearestDeadline: minDays,
	}
}

// Classify maps a score onto GREEN (<30), YELLOW (30..50) or RED (>50).
func Classify(score int) StressStatus {
	switch {
	case score > redThreshold:
		return StatusRed
	case score >= yellowThreshold:
		return StatusYellow
	default:
		return StatusGreen
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
