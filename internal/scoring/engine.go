package scoring

import (
	"time"

	"github.com/spec-kit/workforce-service/internal/domain"
)

// Engine evaluates scoring rules against a clock.
type Engine struct {
	Now func() time.Time
}

// New returns an Engine reading the wall clock.
func New() *Engine {
	return &Engine{Now: time.Now}
}

func (e *Engine) today() domain.Date {
	if e == nil || e.Now == nil {
		return domain.DateOf(time.Now())
	}
	return domain.DateOf(e.Now())
}
