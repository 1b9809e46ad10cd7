package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// MemoryStore keeps objects in process memory. It backs the memory storage
// driver used for local development and tests.
type MemoryStore struct {
	mu      sync.Mutex
	baseURL string
	objects map[string]MemoryObject
}

type MemoryObject struct {
	ContentType string
	Data        []byte
}

func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		objects: make(map[string]MemoryObject),
	}
}

func (s *MemoryStore) Put(ctx context.Context, key, contentType string, body io.ReadSeeker, size int64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := io.ReadAll(io.LimitReader(body, size))
	if err != nil {
		return "", fmt.Errorf("memory put %s: %w", key, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = MemoryObject{ContentType: contentType, Data: data}
	return objectURL(s.baseURL, key), nil
}

func (s *MemoryStore) Delete(ctx context.Context, objectURL string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key, err := keyFromURL(s.baseURL, objectURL)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

// Object returns the stored object for key.
func (s *MemoryStore) Object(key string) (MemoryObject, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[key]
	return obj, ok
}

// Len returns the number of stored objects.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

// ServeHTTP serves stored objects by key. It expects the mount prefix to be
// stripped from the request path.
func (s *MemoryStore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	obj, ok := s.Object(strings.TrimPrefix(r.URL.Path, "/"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", obj.ContentType)
	http.ServeContent(w, r, "", time.Time{}, bytes.NewReader(obj.Data))
}

var (
	_ ObjectStore = (*S3Store)(nil)
	_ ObjectStore = (*MemoryStore)(nil)
)
