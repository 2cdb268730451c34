package file

import (
	"context"

	"github.com/secmon-lab/storevoice/pkg/domain/model"
)

type memoryRepository struct {
	f *File
}

func (r *memoryRepository) Load(ctx context.Context) (*model.Memory, error) {
	r.f.memoryMu.Lock()
	defer r.f.memoryMu.Unlock()

	mem := model.NewMemory()
	if err := r.f.readJSON(ctx, memoryFile, mem); err != nil {
		return nil, err
	}
	return mem.Normalize(), nil
}

func (r *memoryRepository) Save(ctx context.Context, mem *model.Memory) error {
	r.f.memoryMu.Lock()
	defer r.f.memoryMu.Unlock()

	return r.f.writeJSON(ctx, memoryFile, mem)
}
