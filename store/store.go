// Package store keeps each browser session's uploaded files in memory.
package store

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"edadash/config"
	"edadash/models"
)

// Store is a bounded set of session workspaces; the least recently used one
// is evicted when the limit is reached.
type Store struct {
	cache *lru.Cache[string, *Workspace]
}

// Workspace holds the uploads of one session.
type Workspace struct {
	ID string

	mu        sync.RWMutex
	files     map[models.InputKind]file
	updatedAt time.Time
}

type file struct {
	name string
	data []byte
}

var defaultStore *Store

// Init sets up the global store.
func Init(limit int) {
	s, err := New(limit)
	if err != nil {
		config.GetLogger().Fatalf("Unable to create session store: %v", err)
	}
	defaultStore = s
	config.GetLogger().WithField("limit", limit).Info("Session store ready")
}

// GetStore returns the global store.
func GetStore() *Store {
	return defaultStore
}

// Close drops every workspace of the global store.
func Close() {
	if defaultStore != nil {
		defaultStore.cache.Purge()
		config.GetLogger().Info("Session store purged")
	}
}

// New creates a store holding at most limit workspaces.
func New(limit int) (*Store, error) {
	cache, err := lru.NewWithEvict[string, *Workspace](limit, func(id string, _ *Workspace) {
		config.GetLogger().WithField("session", id).Debug("session evicted")
	})
	if err != nil {
		return nil, fmt.Errorf("create session cache: %w", err)
	}
	return &Store{cache: cache}, nil
}

// Get returns the workspace for id, or false when unknown or evicted.
func (s *Store) Get(id string) (*Workspace, bool) {
	return s.cache.Get(id)
}

// Create starts a new workspace with a fresh id.
func (s *Store) Create() *Workspace {
	ws := &Workspace{
		ID:        uuid.NewString(),
		files:     make(map[models.InputKind]file),
		updatedAt: time.Now(),
	}
	s.cache.Add(ws.ID, ws)
	return ws
}

// GetOrCreate returns the workspace for id, creating a new one when id is
// empty, unknown or evicted.
func (s *Store) GetOrCreate(id string) (ws *Workspace, created bool) {
	if id != "" {
		if ws, ok := s.cache.Get(id); ok {
			return ws, false
		}
	}
	return s.Create(), true
}

// Len is the number of live workspaces.
func (s *Store) Len() int {
	return s.cache.Len()
}

// Put stores (or replaces) the upload of kind.
func (w *Workspace) Put(kind models.InputKind, name string, data []byte) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.files[kind] = file{name: name, data: data}
	w.updatedAt = time.Now()
}

// Remove drops the upload of kind.
func (w *Workspace) Remove(kind models.InputKind) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.files, kind)
	w.updatedAt = time.Now()
}

// Clear drops every upload.
func (w *Workspace) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.files = make(map[models.InputKind]file)
	w.updatedAt = time.Now()
}

// Has reports whether kind was uploaded.
func (w *Workspace) Has(kind models.InputKind) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.files[kind]
	return ok
}

// Open returns a reader over the uploaded bytes of kind.
func (w *Workspace) Open(kind models.InputKind) (io.ReadCloser, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	f, ok := w.files[kind]
	if !ok {
		return nil, fmt.Errorf("%s has not been uploaded", kind)
	}
	return io.NopCloser(bytes.NewReader(f.data)), nil
}

// Status lists every input kind and whether it is present.
func (w *Workspace) Status() models.UploadStatus {
	w.mu.RLock()
	defer w.mu.RUnlock()
	st := models.UploadStatus{SessionID: w.ID, UpdatedAt: w.updatedAt, Files: make([]models.UploadedFile, 0, len(models.AllKinds))}
	for _, k := range models.AllKinds {
		f, ok := w.files[k]
		st.Files = append(st.Files, models.UploadedFile{
			Kind:     k,
			Label:    k.Label(),
			FileName: f.name,
			Size:     len(f.data),
			Present:  ok,
			Required: k != models.KindSubmission,
		})
	}
	return st
}
