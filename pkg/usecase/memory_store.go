package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/storevoice/pkg/domain/interfaces"
	"github.com/secmon-lab/storevoice/pkg/domain/model"
	"github.com/secmon-lab/storevoice/pkg/utils/errutil"
)

// MemoryStore is the failure-tolerant view of the memory document used by turns.
// Concurrent turns are not serialized; the last save wins.
type MemoryStore struct {
	repo interfaces.Repository
}

func NewMemoryStore(repo interfaces.Repository) *MemoryStore {
	return &MemoryStore{repo: repo}
}

// Load never fails. Read or parse errors are logged and yield an empty Memory.
func (s *MemoryStore) Load(ctx context.Context) *model.Memory {
	mem, err := s.repo.Memory().Load(ctx)
	if err != nil {
		errutil.Handle(ctx, goerr.Wrap(err, "failed to load memory, starting empty"), "memory load failed")
		return model.NewMemory()
	}
	if mem == nil {
		return model.NewMemory()
	}
	return mem.Normalize()
}

// Save is best effort. Failures are logged and never returned.
func (s *MemoryStore) Save(ctx context.Context, mem *model.Memory) {
	if err := s.repo.Memory().Save(ctx, mem); err != nil {
		errutil.Handle(ctx, goerr.Wrap(err, "failed to save memory"), "memory save failed")
	}
}

// Replace validates and stores mem, returning errors to the caller. Used by the memory endpoint.
func (s *MemoryStore) Replace(ctx context.Context, snap *model.MemorySnapshot) error {
	if snap == nil || snap.UserProfile == nil || snap.Projects == nil || snap.Notes == nil || snap.Conversations == nil {
		return goerr.Wrap(ErrInvalidMemory, "memory must carry userProfile, projects, notes and conversations")
	}

	mem := snap.Merge(nil)
	if err := mem.Validate(); err != nil {
		return goerr.Wrap(ErrInvalidMemory, err.Error())
	}

	if err := s.repo.Memory().Save(ctx, mem); err != nil {
		return goerr.Wrap(err, "failed to save memory")
	}
	return nil
}
