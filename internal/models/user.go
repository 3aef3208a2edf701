package models

import "time"

// DefaultStatus is the status line assigned to newly registered users.
const DefaultStatus = "I am new!"

// User represents a registered account.
type User struct {
	ID           string    `json:"_id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose this to the client
	Name         string    `json:"name"`
	Status       string    `json:"status"`
	Posts        []Post    `json:"posts"`
	CreatedAt    time.Time `json:"createdAt"`
}

// AuthData is the result of a successful login.
type AuthData struct {
	UserID string `json:"userId"`
	Token  string `json:"token"`
}
