package domain

import "time"

// Team groups workers under a manager.
type Team struct {
	ID         string
	Name       string
	Department string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
