package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"
)

// Memory is an in-memory Store for tests and local development.
type Memory struct {
	mu      sync.Mutex
	objects map[string][]byte
	puts    int
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{objects: make(map[string][]byte)}
}

// Put stores the object bytes in memory.
func (m *Memory) Put(ctx context.Context, key string, r io.Reader, size int64, opts PutOptions) error {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = buf.Bytes()
	m.puts++
	return nil
}

// PresignGet returns a synthetic URL naming the object.
func (m *Memory) PresignGet(ctx context.Context, key, filename, disposition string, expiry time.Duration) (*url.URL, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[key]; !ok {
		return nil, fmt.Errorf("object %q does not exist", key)
	}

	params := url.Values{}
	params.Set("response-content-disposition", fmt.Sprintf("%s; filename=%q", disposition, filename))
	return &url.URL{
		Scheme:   "https",
		Host:     "blob.invalid",
		Path:     "/" + key,
		RawQuery: params.Encode(),
	}, nil
}

// Remove deletes the object if present.
func (m *Memory) Remove(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

// Get returns the stored bytes for key.
func (m *Memory) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.objects[key]
	return b, ok
}

// Len returns the number of stored objects.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

// PutCount returns how many Put calls have been made, successful or
// overwritten. Tests use it to assert that no upload was attempted.
func (m *Memory) PutCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.puts
}
