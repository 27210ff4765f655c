package role

import (
	"errors"
	"fmt"
)

type Role string

const (
	User     Role = "user"
	Hotelier Role = "hotelier"
	Admin    Role = "admin"
)

func Parse(s string) (Role, error) {
	switch Role(s) {
	case User, Hotelier, Admin:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role: %s", s)
	}
}

type Capability string

const (
	ReviewHotels      Capability = "review_hotels"
	ModerateEvents    Capability = "moderate_events"
	ManageUsers       Capability = "manage_users"
	ManageContacts    Capability = "manage_contacts"
	ViewAllBookings   Capability = "view_all_bookings"
	ViewStats         Capability = "view_stats"
	ManageInventory   Capability = "manage_inventory"
	ManageAnyHotel    Capability = "manage_any_hotel"
	RespondToRequests Capability = "respond_to_requests"
	Book              Capability = "book"
)

var capabilities = map[Role]map[Capability]bool{
	User: {
		Book: true,
	},
	Hotelier: {
		Book:              true,
		ManageInventory:   true,
		RespondToRequests: true,
	},
	Admin: {
		Book:              true,
		ManageInventory:   true,
		RespondToRequests: true,
		ReviewHotels:      true,
		ModerateEvents:    true,
		ManageUsers:       true,
		ManageContacts:    true,
		ViewAllBookings:   true,
		ViewStats:         true,
		ManageAnyHotel:    true,
	},
}

func (r Role) Can(c Capability) bool {
	return capabilities[r][c]
}

// ErrForbidden is returned when the caller lacks a capability or ownership.
var ErrForbidden = errors.New("forbidden")
