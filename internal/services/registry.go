package services

import (
	"context"
	"sync"

	"github.com/reverie-app/reverie-backend/internal/repo"
)

// SessionScope bundles the per-session store and attachment manager for one
// identity. A scope is created lazily on first use after sign-in and
// dropped whole on sign-out, so an identity switch always gets a fresh
// instance instead of a mutated one.
type SessionScope struct {
	Entries     *EntryStore
	Attachments *AttachmentManager
}

// ScopeRegistry owns the live SessionScopes, keyed by user id.
type ScopeRegistry struct {
	repo    repo.EntryRepository
	storage ObjectStorage // nil when uploads are unavailable

	mu     sync.Mutex
	scopes map[string]*SessionScope
}

func NewScopeRegistry(r repo.EntryRepository, storage ObjectStorage) *ScopeRegistry {
	return &ScopeRegistry{
		repo:    r,
		storage: storage,
		scopes:  make(map[string]*SessionScope),
	}
}

// ForUser returns the scope for userID, creating and loading it if needed.
func (g *ScopeRegistry) ForUser(ctx context.Context, userID string) (*SessionScope, error) {
	g.mu.Lock()
	if scope, ok := g.scopes[userID]; ok {
		g.mu.Unlock()
		return scope, nil
	}
	g.mu.Unlock()

	// Load outside the lock; entry lists can be large
	store, err := NewEntryStore(ctx, g.repo, userID)
	if err != nil {
		return nil, err
	}

	scope := &SessionScope{Entries: store}
	if g.storage != nil {
		scope.Attachments = NewAttachmentManager(g.storage, userID)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	// Another request may have won the race; keep the first scope
	if existing, ok := g.scopes[userID]; ok {
		return existing, nil
	}
	g.scopes[userID] = scope
	return scope, nil
}

// Drop discards the user's scope (cache, signed-URL map and all). Called on
// sign-out and on sign-in so a returning identity starts clean.
func (g *ScopeRegistry) Drop(userID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.scopes, userID)
}

// Scopes is the process-wide registry, wired up in main.
var Scopes *ScopeRegistry

// InitScopes sets up the global registry.
func InitScopes(r repo.EntryRepository, storage ObjectStorage) {
	Scopes = NewScopeRegistry(r, storage)
}
