package entity

import (
	"time"
)

// User is the identity aggregate.
// Password holds the bcrypt hash and is never serialized outward; handlers
// build their own response views from the other fields.
type User struct {
	ID         string
	Name       string
	Email      string
	Password   string
	University string
	Address    string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// SafeUser is the identity with the password hash stripped. It is what the
// authentication gate attaches to a request.
type SafeUser struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	University string    `json:"university,omitempty"`
	Address    string    `json:"address,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Safe returns a copy without the password hash.
func (u *User) Safe() *SafeUser {
	return &SafeUser{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		University: u.University,
		Address:    u.Address,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}
