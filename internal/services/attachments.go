package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	// MaxAttachmentSize is the per-file upload limit (5 MiB)
	MaxAttachmentSize = 5 << 20
	// SignedURLTTL is how long a resolved display URL stays valid
	SignedURLTTL = time.Hour
)

// UploadFile is one file in an upload batch.
type UploadFile struct {
	Name        string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// UploadResult reports the outcome for a single file in a batch.
type UploadResult struct {
	Name      string `json:"name"`
	Reference string `json:"reference,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Accepted reports whether the file was stored.
func (r UploadResult) Accepted() bool {
	return r.Error == ""
}

// AttachmentManager validates and uploads journal images for one user and
// resolves stored references to short-lived signed URLs. Objects are keyed
// under the user's id so storage-level access rules can scope by owner; raw
// storage paths are never exposed as URLs. Like the EntryStore, instances
// are session-scoped and dropped on sign-out, which also bounds the
// signed-URL cache (references are write-once, so entries never go stale).
type AttachmentManager struct {
	userID  string
	storage ObjectStorage

	mu   sync.Mutex
	urls map[string]string // reference -> signed URL
}

func NewAttachmentManager(storage ObjectStorage, userID string) *AttachmentManager {
	return &AttachmentManager{
		userID:  userID,
		storage: storage,
		urls:    make(map[string]string),
	}
}

// Upload stores each acceptable file and returns one result per input file,
// in input order. Files that are not images or exceed the size limit are
// skipped and reported individually; one bad file never aborts the batch.
func (m *AttachmentManager) Upload(ctx context.Context, files []UploadFile) []UploadResult {
	results := make([]UploadResult, 0, len(files))
	for _, f := range files {
		results = append(results, m.uploadOne(ctx, f))
	}
	return results
}

func (m *AttachmentManager) uploadOne(ctx context.Context, f UploadFile) UploadResult {
	res := UploadResult{Name: f.Name}

	if !strings.HasPrefix(f.ContentType, "image/") {
		res.Error = fmt.Sprintf("%s is not an image", f.Name)
		return res
	}
	if f.Size > MaxAttachmentSize {
		res.Error = fmt.Sprintf("%s is too large (max 5MB)", f.Name)
		return res
	}

	// Collision-resistant name; the owner id prefix is what storage access
	// rules key on
	reference := m.userID + "/" + newObjectName(f.Name)

	if err := m.storage.Put(ctx, reference, f.Reader, f.Size, f.ContentType); err != nil {
		log.Printf("Upload failed for %s: %v", f.Name, err)
		res.Error = fmt.Sprintf("Failed to upload %s", f.Name)
		return res
	}

	res.Reference = reference
	return res
}

// References extracts the stored references from a batch result, upload order preserved.
func References(results []UploadResult) []string {
	refs := make([]string, 0, len(results))
	for _, r := range results {
		if r.Accepted() {
			refs = append(refs, r.Reference)
		}
	}
	return refs
}

// Resolve exchanges a storage reference for a signed display URL valid for
// about an hour. Results are cached per reference for the manager's
// lifetime. Returns "" when the reference cannot be resolved; the caller is
// expected to render a placeholder rather than fail.
func (m *AttachmentManager) Resolve(ctx context.Context, reference string) string {
	// Only resolve references inside this user's namespace
	if !strings.HasPrefix(reference, m.userID+"/") {
		log.Printf("Refusing to resolve foreign reference %q for user %s", reference, m.userID)
		return ""
	}

	m.mu.Lock()
	if url, ok := m.urls[reference]; ok {
		m.mu.Unlock()
		return url
	}
	m.mu.Unlock()

	url, err := m.storage.SignedURL(ctx, reference, SignedURLTTL)
	if err != nil {
		log.Printf("Failed to resolve %q: %v", reference, err)
		return ""
	}

	m.mu.Lock()
	m.urls[reference] = url
	m.mu.Unlock()
	return url
}

// RemoveAt drops the reference at index i from refs and returns the rest.
// The stored object is left in place; orphan cleanup is out of scope here.
func RemoveAt(refs []string, i int) []string {
	if i < 0 || i >= len(refs) {
		return refs
	}
	out := make([]string, 0, len(refs)-1)
	out = append(out, refs[:i]...)
	out = append(out, refs[i+1:]...)
	return out
}

// newObjectName builds a collision-resistant object name preserving the
// original extension, e.g. 1714070324581-9f2c41d8a03b.png
func newObjectName(original string) string {
	token := make([]byte, 6)
	rand.Read(token)
	ext := strings.ToLower(filepath.Ext(original))
	return fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), hex.EncodeToString(token), ext)
}
