package event

import (
	"time"

	"github.com/SwarupDevkota/ghumna-sub000/internal/workflow"
)

// Event is a community listing (festival, trek meetup, ...) that appears
// publicly once a moderator approves it.
type Event struct {
	ID           string          `json:"id"`
	SubmitterID  *string         `json:"submitterId,omitempty"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Location     string          `json:"location"`
	ContactEmail string          `json:"contactEmail"`
	StartsAt     time.Time       `json:"startsAt"`
	EndsAt       *time.Time      `json:"endsAt,omitempty"`
	ImageURL     string          `json:"imageUrl"`
	Status       workflow.Status `json:"status"`
	ReviewedAt   *time.Time      `json:"reviewedAt,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

type Submission struct {
	Title        string `json:"title" validate:"required,max=200"`
	Description  string `json:"description" validate:"max=5000"`
	Location     string `json:"location" validate:"max=300"`
	ContactEmail string `json:"contactEmail" validate:"required,email"`
	StartsAt     string `json:"startsAt" validate:"required"`
	EndsAt       string `json:"endsAt"`
	ImageURL     string `json:"imageUrl" validate:"omitempty,url"`
}

type NewEvent struct {
	SubmitterID  string
	Title        string
	Description  string
	Location     string
	ContactEmail string
	StartsAt     time.Time
	EndsAt       *time.Time
	ImageURL     string
}
