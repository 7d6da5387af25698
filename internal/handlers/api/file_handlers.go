package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pavitra297/Doc-Repo-Service-FP/internal/blobstore"
	"github.com/pavitra297/Doc-Repo-Service-FP/internal/registry"
)

// maxUploadMemory bounds how much of a multipart body is buffered in
// memory before spilling to temp files.
const maxUploadMemory = 32 << 20

// FileHandlers manages HTTP endpoints for file operations
// It coordinates file uploads, downloads, listings, and deletions
// using the registry and the underlying blob store.
type FileHandlers struct {
	registry  *registry.Registry
	blobs     *blobstore.Store
	startTime time.Time
}

// NewFileHandlers creates a new file handlers instance
func NewFileHandlers(reg *registry.Registry, blobs *blobstore.Store) *FileHandlers {
	return &FileHandlers{
		registry:  reg,
		blobs:     blobs,
		startTime: time.Now(),
	}
}

// HandleUpload processes file upload requests
//
// Pre-conditions:
//   - Request is a POST multipart/form-data request
//   - Request contains one or more files in the "files" field
//
// Post-conditions:
//   - Each uploaded file is stored under a freshly generated id and a
//     registry record is created for it
//   - Returns 200 OK with the created records on success
//   - Returns 400 if no files are attached, 500 on a storage failure
//
// Files are processed independently: a failure partway through the batch
// does not roll back files already stored (partial success).
func (h *FileHandlers) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to parse form")
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "No files attached")
		return
	}

	uploaded := make([]registry.FileRecord, 0, len(files))
	for _, fileHeader := range files {
		file, err := fileHeader.Open()
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to open uploaded file")
			return
		}

		id := uuid.NewString()
		storedName := id + filepath.Ext(fileHeader.Filename)

		if _, err := h.blobs.Put(file, storedName); err != nil {
			file.Close()
			log.Printf("[ERROR] Failed to store upload %q: %v", fileHeader.Filename, err)
			writeError(w, http.StatusInternalServerError, "Failed to save file")
			return
		}
		file.Close()

		mimeType := fileHeader.Header.Get("Content-Type")
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}

		rec := registry.FileRecord{
			ID:           id,
			OriginalName: fileHeader.Filename,
			StoredName:   storedName,
			Size:         fileHeader.Size,
			MimeType:     mimeType,
			UploadedAt:   time.Now().UTC(),
		}

		if err := h.registry.Insert(rec); err != nil {
			// The record is live in memory; the snapshot catches up
			// on the next successful mutation.
			log.Printf("[WARN] Registry persist failed after upload of %s: %v", rec.ID, err)
		}

		uploaded = append(uploaded, rec)
	}

	writeJSON(w, http.StatusOK, UploadResponse{
		Message: fmt.Sprintf("Uploaded %d file(s)", len(uploaded)),
		Files:   uploaded,
	})
}

// HandleFileList returns all registered files as JSON, newest first.
// Ordering is a presentation choice applied here, not a registry promise.
func (h *FileHandlers) HandleFileList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	records := h.registry.List()
	sort.Slice(records, func(i, j int) bool {
		return records[i].UploadedAt.After(records[j].UploadedAt)
	})

	writeJSON(w, http.StatusOK, records)
}

// HandleDownload streams a stored file back to the client
//
// Pre-conditions:
//   - Request is a GET request
//   - Request URL contains the file id after "/download/"
//
// Post-conditions:
//   - The blob is streamed with the recorded Content-Type, size and an
//     attachment disposition carrying the original filename
//   - Returns 404 if the id is unknown
//   - If the backing blob is missing on disk, the stale record is removed
//     from the registry (self-healing) and 404 is returned
func (h *FileHandlers) HandleDownload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/download/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "File id is required")
		return
	}

	rec, err := h.registry.Get(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "File not found")
		return
	}

	blob, err := h.blobs.Open(rec.StoredName)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			log.Printf("[WARN] Blob missing for record %s, removing stale entry", rec.ID)
			if rerr := h.registry.ReconcileMissing(rec.ID); rerr != nil {
				log.Printf("[WARN] Failed to persist registry repair for %s: %v", rec.ID, rerr)
			}
			writeError(w, http.StatusNotFound, "File not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to read file")
		return
	}
	defer blob.Close()

	w.Header().Set("Content-Type", rec.MimeType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="%s"`, url.PathEscape(rec.OriginalName)))
	w.Header().Set("Content-Length", strconv.FormatInt(rec.Size, 10))

	// Headers are out the door once the first byte is written; a failed
	// copy just terminates the connection.
	if _, err := io.Copy(w, blob); err != nil {
		log.Printf("[ERROR] Download of %s aborted mid-stream: %v", rec.ID, err)
	}
}

// HandleFileDelete removes a file from the blob store and the registry
//
// Pre-conditions:
//   - Request is a DELETE request
//   - Request URL contains the file id after "/files/"
//
// Post-conditions:
//   - The blob and the registry record are removed
//   - Returns 404 if the id is unknown, so a repeated delete fails
//   - The blob delete is idempotent; a blob that is already gone does not
//     fail the request
func (h *FileHandlers) HandleFileDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/files/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "File id is required")
		return
	}

	rec, err := h.registry.Get(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "File not found")
		return
	}

	if err := h.blobs.Delete(rec.StoredName); err != nil {
		log.Printf("[ERROR] Failed to delete blob for %s: %v", rec.ID, err)
		writeError(w, http.StatusInternalServerError, "Failed to delete file")
		return
	}

	if err := h.registry.Remove(rec.ID); err != nil {
		log.Printf("[WARN] Registry persist failed after delete of %s: %v", rec.ID, err)
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "File deleted"})
}

// HandleHealth reports server liveness for the web console.
func (h *FileHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Files:  h.registry.Len(),
		Uptime: time.Since(h.startTime).Round(time.Second).String(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[ERROR] Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
