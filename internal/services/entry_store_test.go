package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reverie-app/reverie-backend/internal/models"
	"github.com/reverie-app/reverie-backend/internal/repo"
)

// fakeEntryRepo is an in-memory EntryRepository used as the remote
// persistence collaborator in tests.
type fakeEntryRepo struct {
	mu      sync.Mutex
	nextID  int
	entries map[string]models.JournalEntry
	failErr error // when set, every operation fails with it
}

func newFakeEntryRepo() *fakeEntryRepo {
	return &fakeEntryRepo{entries: make(map[string]models.JournalEntry)}
}

var fakeEpoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func (f *fakeEntryRepo) ListByOwner(ctx context.Context, userID string) ([]models.JournalEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return nil, f.failErr
	}
	var out []models.JournalEntry
	for _, e := range f.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeEntryRepo) Insert(ctx context.Context, entry *models.JournalEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return f.failErr
	}
	f.nextID++
	entry.ID = fmt.Sprintf("entry-%d", f.nextID)
	entry.CreatedAt = fakeEpoch.Add(time.Duration(f.nextID) * time.Minute)
	entry.UpdatedAt = entry.CreatedAt
	if entry.Images == nil {
		entry.Images = []string{}
	}
	f.entries[entry.ID] = *entry
	return nil
}

func (f *fakeEntryRepo) Update(ctx context.Context, userID, id string, upd repo.EntryUpdate) (time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return time.Time{}, f.failErr
	}
	e, ok := f.entries[id]
	if !ok || e.UserID != userID {
		return time.Time{}, repo.ErrNotFound
	}
	if upd.Title != nil {
		e.Title = *upd.Title
	}
	if upd.Content != nil {
		e.Content = *upd.Content
	}
	if upd.Mood != nil {
		e.Mood = *upd.Mood
	}
	if upd.Images != nil {
		e.Images = append([]string(nil), (*upd.Images)...)
	}
	e.UpdatedAt = e.UpdatedAt.Add(time.Minute)
	f.entries[id] = e
	return e.UpdatedAt, nil
}

func (f *fakeEntryRepo) Delete(ctx context.Context, userID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return f.failErr
	}
	e, ok := f.entries[id]
	if !ok || e.UserID != userID {
		return repo.ErrNotFound
	}
	delete(f.entries, id)
	return nil
}

var _ repo.EntryRepository = (*fakeEntryRepo)(nil)

func entryIDs(entries []models.JournalEntry) []string {
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	return ids
}

// requireCacheMatchesRemote asserts the consistency property: after every
// confirmed operation the cache equals what the remote would return.
func requireCacheMatchesRemote(t *testing.T, store *EntryStore, r *fakeEntryRepo) {
	t.Helper()
	remote, err := r.ListByOwner(context.Background(), store.UserID())
	require.NoError(t, err)
	require.Equal(t, entryIDs(remote), entryIDs(store.List()))
}

func TestEntryStoreCreateAndList(t *testing.T) {
	r := newFakeEntryRepo()
	store, err := NewEntryStore(context.Background(), r, "user-a")
	require.NoError(t, err)
	require.Empty(t, store.List())

	first, err := store.Create(context.Background(), "Day 1", "it begins", models.MoodHappy, nil)
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)
	assert.Equal(t, first.CreatedAt, first.UpdatedAt)
	requireCacheMatchesRemote(t, store, r)

	second, err := store.Create(context.Background(), "Day 2", "still going", models.MoodCalm, []string{"user-a/pic.png"})
	require.NoError(t, err)

	// Newest createdAt first
	list := store.List()
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
	requireCacheMatchesRemote(t, store, r)
}

func TestEntryStoreCreateAcceptsEmptyTitleAndContent(t *testing.T) {
	// Rejecting fully empty drafts is the editor's job, not the store's
	r := newFakeEntryRepo()
	store, err := NewEntryStore(context.Background(), r, "user-a")
	require.NoError(t, err)

	entry, err := store.Create(context.Background(), "", "", "", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.Len(t, store.List(), 1)
}

func TestEntryStoreCreateRejectsUnknownMood(t *testing.T) {
	r := newFakeEntryRepo()
	store, err := NewEntryStore(context.Background(), r, "user-a")
	require.NoError(t, err)

	_, err = store.Create(context.Background(), "x", "y", models.Mood("wistful"), nil)
	require.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, store.List())
}

func TestEntryStoreUpdatePartial(t *testing.T) {
	r := newFakeEntryRepo()
	store, err := NewEntryStore(context.Background(), r, "user-a")
	require.NoError(t, err)

	entry, err := store.Create(context.Background(), "Draft", "original content", models.MoodSad, nil)
	require.NoError(t, err)

	newTitle := "Final"
	err = store.Update(context.Background(), entry.ID, repo.EntryUpdate{Title: &newTitle})
	require.NoError(t, err)

	got := store.List()[0]
	assert.Equal(t, "Final", got.Title)
	assert.Equal(t, "original content", got.Content, "unsupplied fields stay unchanged")
	assert.Equal(t, models.MoodSad, got.Mood)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt))
	requireCacheMatchesRemote(t, store, r)

	// A mood pointer to the empty string clears the mood
	cleared := models.Mood("")
	err = store.Update(context.Background(), entry.ID, repo.EntryUpdate{Mood: &cleared})
	require.NoError(t, err)
	assert.Equal(t, models.Mood(""), store.List()[0].Mood)
}

func TestEntryStoreUpdateNotFoundLeavesCache(t *testing.T) {
	r := newFakeEntryRepo()
	store, err := NewEntryStore(context.Background(), r, "user-a")
	require.NoError(t, err)

	entry, err := store.Create(context.Background(), "Keep me", "content", "", nil)
	require.NoError(t, err)

	title := "hijacked"
	err = store.Update(context.Background(), "no-such-id", repo.EntryUpdate{Title: &title})
	require.ErrorIs(t, err, repo.ErrNotFound)

	assert.Equal(t, "Keep me", store.List()[0].Title)
	assert.Equal(t, entry.UpdatedAt, store.List()[0].UpdatedAt)
}

func TestEntryStoreRemoteFailureLeavesCacheUntouched(t *testing.T) {
	r := newFakeEntryRepo()
	store, err := NewEntryStore(context.Background(), r, "user-a")
	require.NoError(t, err)

	entry, err := store.Create(context.Background(), "Stable", "content", "", nil)
	require.NoError(t, err)
	before := store.List()

	r.failErr = errors.New("network down")

	_, err = store.Create(context.Background(), "New", "nope", "", nil)
	require.Error(t, err)

	title := "nope"
	err = store.Update(context.Background(), entry.ID, repo.EntryUpdate{Title: &title})
	require.Error(t, err)

	err = store.Delete(context.Background(), entry.ID)
	require.Error(t, err)

	assert.Equal(t, before, store.List(), "no optimistic updates, no partial state")
}

func TestEntryStoreDelete(t *testing.T) {
	r := newFakeEntryRepo()
	store, err := NewEntryStore(context.Background(), r, "user-a")
	require.NoError(t, err)

	entry, err := store.Create(context.Background(), "Gone soon", "", "", nil)
	require.NoError(t, err)
	keep, err := store.Create(context.Background(), "Stays", "", "", nil)
	require.NoError(t, err)

	require.NoError(t, store.Delete(context.Background(), entry.ID))
	assert.NotContains(t, entryIDs(store.List()), entry.ID)
	assert.Contains(t, entryIDs(store.List()), keep.ID)
	requireCacheMatchesRemote(t, store, r)

	// Hard delete: a second attempt reports not found
	require.ErrorIs(t, store.Delete(context.Background(), entry.ID), repo.ErrNotFound)
}

func TestEntryStoreSearch(t *testing.T) {
	r := newFakeEntryRepo()
	store, err := NewEntryStore(context.Background(), r, "user-a")
	require.NoError(t, err)

	byTitle, err := store.Create(context.Background(), "Morning walk", "fresh air", "", nil)
	require.NoError(t, err)
	byContent, err := store.Create(context.Background(), "Afternoon", "took a long WALK", "", nil)
	require.NoError(t, err)
	_, err = store.Create(context.Background(), "Dinner", "pasta again", "", nil)
	require.NoError(t, err)

	// Case-insensitive, matches title OR content
	got := store.Search("walk")
	require.Len(t, got, 2)
	assert.ElementsMatch(t, []string{byTitle.ID, byContent.ID}, entryIDs(got))

	// Empty and whitespace-only queries return the unfiltered list
	assert.Equal(t, entryIDs(store.List()), entryIDs(store.Search("")))
	assert.Equal(t, entryIDs(store.List()), entryIDs(store.Search("   ")))

	assert.Empty(t, store.Search("nonexistent"))
}

func TestEntryStoreFilterByMood(t *testing.T) {
	r := newFakeEntryRepo()
	store, err := NewEntryStore(context.Background(), r, "user-a")
	require.NoError(t, err)

	happy, err := store.Create(context.Background(), "Good day", "", models.MoodHappy, nil)
	require.NoError(t, err)
	_, err = store.Create(context.Background(), "Rough day", "", models.MoodSad, nil)
	require.NoError(t, err)
	_, err = store.Create(context.Background(), "No mood", "", "", nil)
	require.NoError(t, err)

	got := store.FilterByMood(models.MoodHappy)
	require.Len(t, got, 1)
	assert.Equal(t, happy.ID, got[0].ID)

	// Empty mood returns everything
	assert.Len(t, store.FilterByMood(""), 3)

	assert.Empty(t, store.FilterByMood(models.MoodExcited))
}

func TestEntryStoreQueryCombines(t *testing.T) {
	r := newFakeEntryRepo()
	store, err := NewEntryStore(context.Background(), r, "user-a")
	require.NoError(t, err)

	match, err := store.Create(context.Background(), "Beach walk", "", models.MoodCalm, nil)
	require.NoError(t, err)
	_, err = store.Create(context.Background(), "City walk", "", models.MoodAnxious, nil)
	require.NoError(t, err)

	got := store.Query("walk", models.MoodCalm)
	require.Len(t, got, 1)
	assert.Equal(t, match.ID, got[0].ID)
}

func TestEntryStoreListReturnsCopies(t *testing.T) {
	r := newFakeEntryRepo()
	store, err := NewEntryStore(context.Background(), r, "user-a")
	require.NoError(t, err)

	_, err = store.Create(context.Background(), "Original", "", "", []string{"user-a/a.png"})
	require.NoError(t, err)

	list := store.List()
	list[0].Title = "mutated"
	list[0].Images[0] = "mutated"

	fresh := store.List()
	assert.Equal(t, "Original", fresh[0].Title)
	assert.Equal(t, "user-a/a.png", fresh[0].Images[0])
}

func TestScopeRegistryIsolatesUsers(t *testing.T) {
	r := newFakeEntryRepo()
	reg := NewScopeRegistry(r, nil)

	scopeA, err := reg.ForUser(context.Background(), "user-a")
	require.NoError(t, err)
	created, err := scopeA.Entries.Create(context.Background(), "Day 1", "", models.MoodHappy, nil)
	require.NoError(t, err)
	assert.Equal(t, created.ID, scopeA.Entries.List()[0].ID)

	// A different identity sees an empty journal even though user A's entry
	// still exists remotely
	scopeB, err := reg.ForUser(context.Background(), "user-b")
	require.NoError(t, err)
	assert.Empty(t, scopeB.Entries.List())

	remote, err := r.ListByOwner(context.Background(), "user-a")
	require.NoError(t, err)
	assert.Len(t, remote, 1)
}

func TestScopeRegistryDropCreatesFreshStore(t *testing.T) {
	r := newFakeEntryRepo()
	reg := NewScopeRegistry(r, nil)

	scope1, err := reg.ForUser(context.Background(), "user-a")
	require.NoError(t, err)

	// Same session, same scope
	again, err := reg.ForUser(context.Background(), "user-a")
	require.NoError(t, err)
	assert.Same(t, scope1, again)

	// Sign-out drops the scope; the next sign-in gets a fresh instance
	// reloaded from the remote, never a mutated-in-place one
	reg.Drop("user-a")
	scope2, err := reg.ForUser(context.Background(), "user-a")
	require.NoError(t, err)
	assert.NotSame(t, scope1, scope2)
}
