package hotel

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/SwarupDevkota/ghumna-sub000/internal/workflow"
)

type Hotel struct {
	ID             string                     `json:"id"`
	OwnerID        string                     `json:"ownerId"`
	Name           string                     `json:"name"`
	Email          string                     `json:"email"`
	Phone          string                     `json:"phone"`
	Address        string                     `json:"address"`
	City           string                     `json:"city"`
	Description    string                     `json:"description"`
	RoomTypes      []string                   `json:"roomTypes"`
	Prices         map[string]decimal.Decimal `json:"prices"`
	RoomsAvailable map[string]int             `json:"roomsAvailable"`
	Amenities      []string                   `json:"amenities"`
	Documents      []string                   `json:"documents"`
	Images         []string                   `json:"images"`
	PaymentOptions []string                   `json:"paymentOptions"`
	Status         workflow.Status            `json:"status"`
	ReviewedAt     *time.Time                 `json:"reviewedAt,omitempty"`
	CreatedAt      time.Time                  `json:"createdAt"`
	UpdatedAt      time.Time                  `json:"updatedAt"`
}

// Submission is the payload of a new hotel listing. Status is always Pending.
type Submission struct {
	Name           string                     `json:"name" validate:"required,max=200"`
	Email          string                     `json:"email" validate:"required,email"`
	Phone          string                     `json:"phone" validate:"max=40"`
	Address        string                     `json:"address" validate:"required,max=300"`
	City           string                     `json:"city" validate:"max=120"`
	Description    string                     `json:"description"`
	RoomTypes      []string                   `json:"roomTypes" validate:"required,min=1,dive,required"`
	Prices         map[string]decimal.Decimal `json:"prices" validate:"required"`
	RoomsAvailable map[string]int             `json:"roomsAvailable" validate:"omitempty,dive,min=0"`
	Amenities      []string                   `json:"amenities"`
	Documents      []string                   `json:"documents" validate:"omitempty,dive,url"`
	Images         []string                   `json:"images" validate:"omitempty,dive,url"`
	PaymentOptions []string                   `json:"paymentOptions"`
}

// Changes is a partial profile update; nil fields are left alone.
type Changes struct {
	Name           *string                    `json:"name" validate:"omitempty,min=1,max=200"`
	Email          *string                    `json:"email" validate:"omitempty,email"`
	Phone          *string                    `json:"phone" validate:"omitempty,max=40"`
	Address        *string                    `json:"address" validate:"omitempty,max=300"`
	City           *string                    `json:"city" validate:"omitempty,max=120"`
	Description    *string                    `json:"description"`
	RoomTypes      []string                   `json:"roomTypes" validate:"omitempty,dive,required"`
	Prices         map[string]decimal.Decimal `json:"prices"`
	RoomsAvailable map[string]int             `json:"roomsAvailable" validate:"omitempty,dive,min=0"`
	Amenities      []string                   `json:"amenities"`
	PaymentOptions []string                   `json:"paymentOptions"`
}

type MediaKind string

const (
	MediaImage    MediaKind = "image"
	MediaDocument MediaKind = "document"
)

type Media struct {
	URL  string    `json:"url" validate:"required,url"`
	Kind MediaKind `json:"kind" validate:"omitempty,oneof=image document"`
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
