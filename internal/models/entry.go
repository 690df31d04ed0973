package models

import "time"

// JournalEntry is a single private journal record for a user.
// IDs are opaque strings assigned by the persistence layer at insert time.
// Images holds opaque storage references (not URLs) in append order.
type JournalEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Mood      Mood      `json:"mood,omitempty"`
	Images    []string  `json:"images"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
