package handlers

import (
	"log"
	"mime/multipart"
	"net/http"

	"github.com/reverie-app/reverie-backend/internal/services"
)

type UploadImagesResponse struct {
	Success    bool                    `json:"success"`
	Message    string                  `json:"message,omitempty"`
	References []string                `json:"references"`
	Results    []services.UploadResult `json:"results"`
}

// UploadImages accepts a multipart batch under the "files" field, stores
// the acceptable images in the user's private namespace and reports a
// per-file result. Rejected files never abort the batch.
func UploadImages(w http.ResponseWriter, r *http.Request) {
	scope := entryScope(w, r)
	if scope == nil {
		return
	}
	if scope.Attachments == nil {
		writeError(w, http.StatusServiceUnavailable, "Image uploads are not available")
		return
	}

	// 64MB form cap; individual files are limited to 5MB each by the manager
	if err := r.ParseMultipartForm(64 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		writeError(w, http.StatusBadRequest, "No files provided")
		return
	}

	files := make([]services.UploadFile, 0, len(headers))
	var opened []multipart.File
	defer func() {
		for _, f := range opened {
			f.Close()
		}
	}()

	for _, h := range headers {
		f, err := h.Open()
		if err != nil {
			log.Printf("Failed to open uploaded file %s: %v", h.Filename, err)
			continue
		}
		opened = append(opened, f)
		files = append(files, services.UploadFile{
			Name:        h.Filename,
			ContentType: h.Header.Get("Content-Type"),
			Size:        h.Size,
			Reader:      f,
		})
	}

	results := scope.Attachments.Upload(r.Context(), files)

	writeJSON(w, http.StatusOK, UploadImagesResponse{
		Success:    true,
		References: services.References(results),
		Results:    results,
	})
}

// ResolveImage exchanges a storage reference (?ref=) for a short-lived
// signed display URL. Missing or unresolvable references yield 404; the
// client renders a placeholder.
func ResolveImage(w http.ResponseWriter, r *http.Request) {
	scope := entryScope(w, r)
	if scope == nil {
		return
	}
	if scope.Attachments == nil {
		writeError(w, http.StatusServiceUnavailable, "Image uploads are not available")
		return
	}

	ref := r.URL.Query().Get("ref")
	if ref == "" {
		writeError(w, http.StatusBadRequest, "Missing ref parameter")
		return
	}

	url := scope.Attachments.Resolve(r.Context(), ref)
	if url == "" {
		writeError(w, http.StatusNotFound, "Image not available")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"url":     url,
	})
}
