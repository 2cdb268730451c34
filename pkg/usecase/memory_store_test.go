package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/storevoice/pkg/domain/model"
	"github.com/secmon-lab/storevoice/pkg/repository/memory"
	"github.com/secmon-lab/storevoice/pkg/usecase"
)

func TestMemoryStore_LoadNeverFails(t *testing.T) {
	store := usecase.NewMemoryStore(&brokenMemoryRepository{Repository: memory.New()})

	mem := store.Load(context.Background())
	gt.Value(t, mem).Equal(model.NewMemory())

	// Save failure is logged only
	store.Save(context.Background(), mem)
}

func TestMemoryStore_SaveLoadIdempotent(t *testing.T) {
	ctx := context.Background()
	store := usecase.NewMemoryStore(memory.New())

	mem := model.NewMemory()
	mem.UserProfile.Name = "Hala"
	mem.AppendTurn("hi", "hello", fixedNow)
	store.Save(ctx, mem)

	first := store.Load(ctx)
	store.Save(ctx, first)
	second := store.Load(ctx)
	gt.Value(t, second).Equal(first)
	gt.Value(t, first).Equal(mem)
}

func TestMemoryStore_Replace(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	store := usecase.NewMemoryStore(repo)

	t.Run("valid document", func(t *testing.T) {
		err := store.Replace(ctx, &model.MemorySnapshot{
			UserProfile:   &model.UserProfile{Name: "Hala", Preferences: map[string]any{"vip": true}},
			Projects:      []model.Project{},
			Notes:         []model.Note{{ID: "n1", Content: "likes green"}},
			Conversations: []model.Conversation{},
		})
		gt.NoError(t, err).Required()

		mem, err := repo.Memory().Load(ctx)
		gt.NoError(t, err).Required()
		gt.Value(t, mem.UserProfile.Name).Equal("Hala")
		gt.Array(t, mem.Notes).Length(1)
	})

	t.Run("missing keys", func(t *testing.T) {
		err := store.Replace(ctx, &model.MemorySnapshot{UserProfile: &model.UserProfile{}})
		gt.Bool(t, errors.Is(err, usecase.ErrInvalidMemory)).True()

		err = store.Replace(ctx, nil)
		gt.Bool(t, errors.Is(err, usecase.ErrInvalidMemory)).True()
	})

	t.Run("non scalar preference", func(t *testing.T) {
		err := store.Replace(ctx, &model.MemorySnapshot{
			UserProfile:   &model.UserProfile{Preferences: map[string]any{"sizes": []any{"M", "L"}}},
			Projects:      []model.Project{},
			Notes:         []model.Note{},
			Conversations: []model.Conversation{},
		})
		gt.Bool(t, errors.Is(err, usecase.ErrInvalidMemory)).True()
	})
}
