package goal

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusNotStarted Status = "not started"
	StatusInProgress Status = "in progress"
	StatusDone       Status = "done"
)

type Goal struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	UserID     uuid.UUID  `json:"userId" db:"user_id"`
	Title      string     `json:"title" db:"title"`
	Description string    `json:"description,omitempty" db:"description"`
	TargetDate *time.Time `json:"targetDate,omitempty" db:"target_date"`
	Status     Status     `json:"status" db:"status"`
	CreatedAt  time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time  `json:"updatedAt" db:"updated_at"`
}

type CreateGoalRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	TargetDate  *time.Time `json:"targetDate,omitempty"`
}

type UpdateGoalRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	TargetDate  *time.Time `json:"targetDate,omitempty"`
	Status      *Status    `json:"status,omitempty"`
}
