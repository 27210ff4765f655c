package availability

import (
	"time"

	"github.com/SwarupDevkota/ghumna-sub000/internal/workflow"
)

// Request asks a hotel whether rooms are free for a stay. The hotel answers
// by approving or rejecting it.
type Request struct {
	ID          string          `json:"id"`
	HotelID     string          `json:"hotelId"`
	UserID      string          `json:"userId"`
	CheckIn     time.Time       `json:"checkIn"`
	CheckOut    time.Time       `json:"checkOut"`
	Guests      int             `json:"guests"`
	Rooms       int             `json:"rooms"`
	Criteria    string          `json:"criteria"`
	Status      workflow.Status `json:"status"`
	RespondedAt *time.Time      `json:"respondedAt,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type HotelSummary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	OwnerID string `json:"-"`
}

type View struct {
	Request
	User  UserSummary  `json:"user"`
	Hotel HotelSummary `json:"hotel"`
}

// CreateRequest leaves userId optional; it defaults to the caller.
type CreateRequest struct {
	HotelID  string `json:"hotelId" validate:"required,uuid"`
	UserID   string `json:"userId" validate:"omitempty,uuid"`
	CheckIn  string `json:"checkIn" validate:"required"`
	CheckOut string `json:"checkOut" validate:"required"`
	Guests   int    `json:"guests" validate:"required,min=1"`
	Rooms    int    `json:"rooms" validate:"omitempty,min=1"`
	Criteria string `json:"criteria" validate:"max=2000"`
	Status   string `json:"status"`
}

type NewRequest struct {
	HotelID  string
	UserID   string
	CheckIn  time.Time
	CheckOut time.Time
	Guests   int
	Rooms    int
	Criteria string
	Status   workflow.Status
}
