package user

import (
	"time"

	"github.com/SwarupDevkota/ghumna-sub000/internal/role"
)

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         role.Role `json:"role"`
	Phone        string    `json:"phone"`
	Address      string    `json:"address"`
	AvatarURL    string    `json:"avatarUrl"`
	OwnedHotelID *string   `json:"ownedHotelId"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	PasswordHash string `json:"-"`
}

type NewUser struct {
	Name         string
	Email        string
	PasswordHash string
	Role         role.Role
}

// Profile holds the self-editable fields. Role is never writable through it.
type Profile struct {
	Name      *string `json:"name" validate:"omitempty,min=1,max=120"`
	Phone     *string `json:"phone" validate:"omitempty,max=40"`
	Address   *string `json:"address" validate:"omitempty,max=300"`
	AvatarURL *string `json:"avatarUrl" validate:"omitempty,url"`
}
