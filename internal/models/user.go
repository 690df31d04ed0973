package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"-"` // Don't return password hash in JSON
	CreatedAt time.Time `json:"created_at"`
	IsActive  bool      `json:"is_active"`
}
