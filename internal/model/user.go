// Package model defines the records folio persists.
package model

import "time"

// User is a registered account. It is created at registration and never mutated.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
