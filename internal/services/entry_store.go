package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/reverie-app/reverie-backend/internal/models"
	"github.com/reverie-app/reverie-backend/internal/repo"
)

// EntryStore holds the canonical entry list for one signed-in user. It is a
// read-through cache over the entry repository: every mutation goes to the
// remote first and the cache is only touched after the remote acknowledges,
// so the cache never runs ahead of durable state. Instances are scoped to a
// session via the ScopeRegistry and are never reused across identities.
type EntryStore struct {
	userID string
	repo   repo.EntryRepository

	mu      sync.Mutex
	entries []models.JournalEntry // newest CreatedAt first
}

// NewEntryStore loads the owner's entries and returns a store over them.
func NewEntryStore(ctx context.Context, r repo.EntryRepository, userID string) (*EntryStore, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	entries, err := r.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load entries: %w", err)
	}
	return &EntryStore{userID: userID, repo: r, entries: entries}, nil
}

// UserID returns the identity this store is bound to.
func (s *EntryStore) UserID() string {
	return s.userID
}

// List returns the cached entries, newest first. The returned slice is a
// copy; callers cannot mutate the cache through it.
func (s *EntryStore) List() []models.JournalEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyEntries(s.entries)
}

// Create inserts a new entry remotely and, on success, prepends it to the
// cache. Empty title and content are accepted here; rejecting fully empty
// entries is the caller's concern.
func (s *EntryStore) Create(ctx context.Context, title, content string, mood models.Mood, images []string) (*models.JournalEntry, error) {
	if mood != "" && !mood.Valid() {
		return nil, fmt.Errorf("%w: invalid mood %q", ErrValidation, mood)
	}

	entry := models.JournalEntry{
		UserID:  s.userID,
		Title:   title,
		Content: content,
		Mood:    mood,
		Images:  copyImages(images),
	}
	if err := s.repo.Insert(ctx, &entry); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.entries = append([]models.JournalEntry{entry}, s.entries...)
	s.mu.Unlock()

	created := entry
	created.Images = copyImages(entry.Images)
	return &created, nil
}

// Update applies a partial update. The cache is only modified after the
// remote acknowledges; UpdatedAt takes the remote's timestamp. Returns
// repo.ErrNotFound when the id is not owned by this store's user.
func (s *EntryStore) Update(ctx context.Context, id string, upd repo.EntryUpdate) error {
	if upd.Mood != nil && *upd.Mood != "" && !upd.Mood.Valid() {
		return fmt.Errorf("%w: invalid mood %q", ErrValidation, *upd.Mood)
	}

	updatedAt, err := s.repo.Update(ctx, s.userID, id, upd)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.entries {
		if s.entries[i].ID != id {
			continue
		}
		if upd.Title != nil {
			s.entries[i].Title = *upd.Title
		}
		if upd.Content != nil {
			s.entries[i].Content = *upd.Content
		}
		if upd.Mood != nil {
			s.entries[i].Mood = *upd.Mood
		}
		if upd.Images != nil {
			s.entries[i].Images = copyImages(*upd.Images)
		}
		s.entries[i].UpdatedAt = updatedAt
		break
	}
	return nil
}

// Delete removes the entry remotely, then drops it from the cache.
func (s *EntryStore) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, s.userID, id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.entries {
		if s.entries[i].ID == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			break
		}
	}
	return nil
}

// Search returns cached entries whose title or content contains the query,
// case-insensitively. An empty or whitespace-only query returns everything.
func (s *EntryStore) Search(query string) []models.JournalEntry {
	return s.Query(query, "")
}

// FilterByMood returns cached entries with exactly the given mood. The
// empty mood returns the unfiltered list.
func (s *EntryStore) FilterByMood(mood models.Mood) []models.JournalEntry {
	return s.Query("", mood)
}

// Query combines Search and FilterByMood in one pass over the cache.
func (s *EntryStore) Query(query string, mood models.Mood) []models.JournalEntry {
	query = strings.TrimSpace(strings.ToLower(query))

	s.mu.Lock()
	defer s.mu.Unlock()

	matched := make([]models.JournalEntry, 0, len(s.entries))
	for _, e := range s.entries {
		if mood != "" && e.Mood != mood {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(e.Title), query) &&
			!strings.Contains(strings.ToLower(e.Content), query) {
			continue
		}
		matched = append(matched, e)
	}
	return copyEntries(matched)
}

func copyEntries(entries []models.JournalEntry) []models.JournalEntry {
	out := make([]models.JournalEntry, len(entries))
	copy(out, entries)
	for i := range out {
		out[i].Images = copyImages(out[i].Images)
	}
	return out
}

func copyImages(images []string) []string {
	out := make([]string, len(images))
	copy(out, images)
	return out
}
