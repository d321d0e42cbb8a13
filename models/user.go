package models

import "time"

// User is the public profile attached to a session.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// Registration is the input to sign-up.
type Registration struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Account is a registry entry. PasswordHash is a bcrypt hash.
type Account struct {
	ID           string    `json:"id" gorm:"type:uuid;primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"password_hash" gorm:"not null"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// Profile strips credentials from an account.
func (a Account) Profile() User {
	return User{
		ID:        a.ID,
		Email:     a.Email,
		FirstName: a.FirstName,
		LastName:  a.LastName,
	}
}
