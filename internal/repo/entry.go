package repo

import (
	"context"
	"errors"
	"time"

	"github.com/reverie-app/reverie-backend/internal/models"
)

// ErrNotFound is returned when an entry does not exist or is not owned by
// the requesting user. The two cases are deliberately indistinguishable.
var ErrNotFound = errors.New("entry not found")

// EntryUpdate describes a partial update. Nil fields are left unchanged.
// A Mood pointer to the empty string clears the mood.
type EntryUpdate struct {
	Title   *string
	Content *string
	Mood    *models.Mood
	Images  *[]string
}

// EntryRepository is the remote persistence collaborator for journal
// entries. Every operation is scoped to an owner; implementations must
// never return or touch entries across owners.
type EntryRepository interface {
	// ListByOwner returns all entries owned by userID, newest CreatedAt first.
	ListByOwner(ctx context.Context, userID string) ([]models.JournalEntry, error)
	// Insert persists the entry, assigning ID, CreatedAt and UpdatedAt in place.
	Insert(ctx context.Context, entry *models.JournalEntry) error
	// Update applies a partial update to the entry with the given id owned by
	// userID and returns the refreshed UpdatedAt timestamp.
	Update(ctx context.Context, userID, id string, upd EntryUpdate) (time.Time, error)
	// Delete removes the entry with the given id owned by userID.
	Delete(ctx context.Context, userID, id string) error
}
