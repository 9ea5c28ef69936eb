package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/talenthub/careers-api/internal/app/storage"
)

// Blob is an in-memory file store. Uploads are held in a map and download
// links point at a placeholder host, which is enough for tests and for
// running the API without object storage configured.
type Blob struct {
	mu    sync.RWMutex
	files map[string][]byte
}

var _ storage.FileStore = (*Blob)(nil)

// NewBlob creates an empty in-memory file store.
func NewBlob() *Blob {
	return &Blob{files: make(map[string][]byte)}
}

func (b *Blob) Upload(_ context.Context, filename, _ string, data []byte) (string, error) {
	key := fmt.Sprintf("applications/%s-%s", uuid.NewString(), filename)

	b.mu.Lock()
	defer b.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	b.files[key] = buf
	return key, nil
}

func (b *Blob) DownloadURL(_ context.Context, key string) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if _, ok := b.files[key]; !ok {
		return "", storage.ErrNotFound
	}
	return "https://files.invalid/" + key, nil
}
