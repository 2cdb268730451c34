package memory

import (
	"context"
	"sync"

	"github.com/secmon-lab/storevoice/pkg/domain/model"
)

type memoryRepository struct {
	mu  sync.RWMutex
	doc *model.Memory
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{}
}

func (r *memoryRepository) Load(ctx context.Context) (*model.Memory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.doc == nil {
		return model.NewMemory(), nil
	}
	return r.doc.Clone().Normalize(), nil
}

func (r *memoryRepository) Save(ctx context.Context, mem *model.Memory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.doc = mem.Clone()
	return nil
}
