package booking

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/SwarupDevkota/ghumna-sub000/internal/workflow"
)

type Booking struct {
	ID              string          `json:"id"`
	HotelID         string          `json:"hotelId"`
	UserID          string          `json:"userId"`
	RoomIDs         []string        `json:"roomIds"`
	CheckIn         time.Time       `json:"checkIn"`
	CheckOut        time.Time       `json:"checkOut"`
	Guests          int             `json:"guests"`
	TotalPrice      decimal.Decimal `json:"totalPrice"`
	SpecialRequests string          `json:"specialRequests"`
	PaymentStatus   workflow.Status `json:"paymentStatus"`
	PaymentRef      *string         `json:"paymentRef,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
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

type RoomSummary struct {
	ID    string          `json:"id"`
	Type  string          `json:"type"`
	Price decimal.Decimal `json:"price"`
}

// View is a booking with its user, hotel and rooms populated.
type View struct {
	Booking
	User  UserSummary   `json:"user"`
	Hotel HotelSummary  `json:"hotel"`
	Rooms []RoomSummary `json:"rooms"`
}

// CreateRequest only checks that every required key is present. Dates are not
// ordered and the total is not recomputed.
type CreateRequest struct {
	HotelID         string           `json:"hotelId" validate:"required,uuid"`
	UserID          string           `json:"userId" validate:"required,uuid"`
	RoomIDs         []string         `json:"roomIds" validate:"required,min=1,dive,uuid"`
	CheckIn         string           `json:"checkIn" validate:"required"`
	CheckOut        string           `json:"checkOut" validate:"required"`
	Guests          int              `json:"guests" validate:"required,min=1"`
	TotalPrice      *decimal.Decimal `json:"totalPrice" validate:"required"`
	SpecialRequests string           `json:"specialRequests" validate:"max=2000"`
}

type NewBooking struct {
	HotelID         string
	UserID          string
	RoomIDs         []string
	CheckIn         time.Time
	CheckOut        time.Time
	Guests          int
	TotalPrice      decimal.Decimal
	SpecialRequests string
}

type QuoteRequest struct {
	HotelID  string   `json:"hotelId" validate:"required,uuid"`
	RoomIDs  []string `json:"roomIds" validate:"required,min=1,dive,uuid"`
	CheckIn  string   `json:"checkIn" validate:"required"`
	CheckOut string   `json:"checkOut" validate:"required"`
}

type Page struct {
	Items []View `json:"items"`
	Total int    `json:"total"`
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
}
