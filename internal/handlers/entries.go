package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/reverie-app/reverie-backend/internal/models"
	"github.com/reverie-app/reverie-backend/internal/repo"
	"github.com/reverie-app/reverie-backend/internal/services"
)

type CreateEntryRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Mood    string   `json:"mood,omitempty"`
	Images  []string `json:"images,omitempty"`
}

type UpdateEntryRequest struct {
	Title   *string   `json:"title,omitempty"`
	Content *string   `json:"content,omitempty"`
	Mood    *string   `json:"mood,omitempty"` // "" clears the mood
	Images  *[]string `json:"images,omitempty"`
}

type EntryResponse struct {
	Success bool                 `json:"success"`
	Message string               `json:"message,omitempty"`
	Entry   *models.JournalEntry `json:"entry,omitempty"`
}

type ListEntriesResponse struct {
	Success bool                  `json:"success"`
	Message string                `json:"message,omitempty"`
	Entries []models.JournalEntry `json:"entries"`
	Total   int                   `json:"total"`
}

// entryScope resolves the session scope for the request, writing the error
// response itself when that fails.
func entryScope(w http.ResponseWriter, r *http.Request) *services.SessionScope {
	userID, ok := requireAuth(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return nil
	}

	scope, err := services.Scopes.ForUser(r.Context(), userID)
	if err != nil {
		log.Printf("Failed to load journal for %s: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "Failed to load journal")
		return nil
	}
	return scope
}

// ListEntries returns the user's entries, newest first. Supports ?q= for
// case-insensitive title/content search and ?mood= for an exact mood
// filter; both combine.
func ListEntries(w http.ResponseWriter, r *http.Request) {
	scope := entryScope(w, r)
	if scope == nil {
		return
	}

	mood, err := models.ParseMood(r.URL.Query().Get("mood"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries := scope.Entries.Query(r.URL.Query().Get("q"), mood)

	writeJSON(w, http.StatusOK, ListEntriesResponse{
		Success: true,
		Entries: entries,
		Total:   len(entries),
	})
}

// CreateEntry creates a new journal entry for the authenticated user.
// Empty title and content are allowed; the editor decides what counts as
// an empty draft.
func CreateEntry(w http.ResponseWriter, r *http.Request) {
	scope := entryScope(w, r)
	if scope == nil {
		return
	}

	var req CreateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	mood, err := models.ParseMood(req.Mood)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entry, err := scope.Entries.Create(r.Context(), req.Title, req.Content, mood, req.Images)
	if err != nil {
		log.Printf("Failed to create entry: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to create entry")
		return
	}

	writeJSON(w, http.StatusCreated, EntryResponse{
		Success: true,
		Message: "Entry created",
		Entry:   entry,
	})
}

// UpdateEntry applies a partial update to one of the user's entries.
func UpdateEntry(w http.ResponseWriter, r *http.Request) {
	scope := entryScope(w, r)
	if scope == nil {
		return
	}

	var req UpdateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	upd := repo.EntryUpdate{
		Title:   req.Title,
		Content: req.Content,
		Images:  req.Images,
	}
	if req.Mood != nil {
		mood, err := models.ParseMood(*req.Mood)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		upd.Mood = &mood
	}

	id := chi.URLParam(r, "id")
	if err := scope.Entries.Update(r.Context(), id, upd); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Entry not found")
			return
		}
		log.Printf("Failed to update entry %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "Failed to update entry")
		return
	}

	writeJSON(w, http.StatusOK, EntryResponse{
		Success: true,
		Message: "Entry updated",
	})
}

// DeleteEntry removes one of the user's entries (hard delete).
func DeleteEntry(w http.ResponseWriter, r *http.Request) {
	scope := entryScope(w, r)
	if scope == nil {
		return
	}

	id := chi.URLParam(r, "id")
	if err := scope.Entries.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Entry not found")
			return
		}
		log.Printf("Failed to delete entry %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "Failed to delete entry")
		return
	}

	writeJSON(w, http.StatusOK, EntryResponse{
		Success: true,
		Message: "Entry deleted",
	})
}

// GetMoods returns the mood palette for the editor's mood selector.
func GetMoods(w http.ResponseWriter, r *http.Request) {
	moods := make([]map[string]string, 0, len(models.Moods))
	for _, m := range models.Moods {
		moods = append(moods, map[string]string{
			"value": string(m),
			"label": models.MoodLabels[m],
			"emoji": models.MoodEmojis[m],
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"moods":   moods,
	})
}
