package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"
)

var (
	// ErrNotFound indicates no record exists for the requested id.
	ErrNotFound = errors.New("record not found")

	// ErrPersist indicates the in-memory mutation succeeded but the
	// snapshot could not be written. The in-memory state is kept; the
	// snapshot catches up on the next successful mutation.
	ErrPersist = errors.New("failed to persist registry snapshot")
)

// FileRecord describes one uploaded file tracked by the registry.
// Records are immutable once created; they only ever get deleted.
type FileRecord struct {
	ID           string    `json:"id"`
	OriginalName string    `json:"originalFilename"`
	StoredName   string    `json:"storedFilename"`
	Size         int64     `json:"size"`
	MimeType     string    `json:"mimeType"`
	UploadedAt   time.Time `json:"uploadTime"`
}

// Registry maintains the authoritative mapping from file id to metadata.
// Every mutation rewrites the full JSON snapshot on disk; the mapping is
// assumed small enough for that to be cheap. All mutations are serialized
// through a single mutex, which also covers the snapshot write.
type Registry struct {
	path    string
	mu      sync.RWMutex
	records map[string]FileRecord
}

// New creates a registry backed by the snapshot file at path.
// Call Load before use to pick up a previous snapshot.
func New(path string) *Registry {
	return &Registry{
		path:    path,
		records: make(map[string]FileRecord),
	}
}

// Load reads the persisted snapshot. A missing snapshot starts the
// registry empty. A malformed snapshot is logged and discarded; the
// registry starts empty rather than failing startup.
func (r *Registry) Load() {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[WARN] Failed to read registry snapshot %s: %v", r.path, err)
		}
		r.records = make(map[string]FileRecord)
		return
	}

	records := make(map[string]FileRecord)
	if err := json.Unmarshal(data, &records); err != nil {
		log.Printf("[WARN] Discarding malformed registry snapshot %s: %v", r.path, err)
		r.records = make(map[string]FileRecord)
		return
	}

	r.records = records
}

// Insert adds a record and persists the snapshot. On a persist failure
// the record stays live in memory and the returned error wraps ErrPersist.
func (r *Registry) Insert(rec FileRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records[rec.ID] = rec
	return r.persistLocked()
}

// Get returns the record for id, or ErrNotFound.
func (r *Registry) Get(id string) (FileRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[id]
	if !ok {
		return FileRecord{}, fmt.Errorf("record %q: %w", id, ErrNotFound)
	}
	return rec, nil
}

// List returns all live records. No ordering is guaranteed; ordering is
// a presentation concern left to the caller.
func (r *Registry) List() []FileRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]FileRecord, 0, len(r.records))
	for _, rec := range r.records {
		records = append(records, rec)
	}
	return records
}

// Remove deletes the record for id (no-op if absent) and persists the
// snapshot.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.records, id)
	return r.persistLocked()
}

// ReconcileMissing removes a record whose backing blob was discovered
// missing on disk. Invoked by the API layer as a self-healing step.
func (r *Registry) ReconcileMissing(id string) error {
	return r.Remove(id)
}

// Len returns the number of live records.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// persistLocked serializes the full mapping and overwrites the snapshot
// file. Callers must hold the write lock.
func (r *Registry) persistLocked() error {
	data, err := json.MarshalIndent(r.records, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}

	if err := os.WriteFile(r.path, data, 0644); err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}

	return nil
}
