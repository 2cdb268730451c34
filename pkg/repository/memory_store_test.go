package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/storevoice/pkg/domain/model"
)

func TestMemoryRepository(t *testing.T) {
	runAllBackends(t, func(t *testing.T, newRepo repoFactory) {
		t.Run("Load returns empty memory when nothing is stored", func(t *testing.T) {
			repo := newRepo(t)
			ctx := context.Background()

			mem, err := repo.Memory().Load(ctx)
			gt.NoError(t, err).Required()
			gt.Value(t, mem).Equal(model.NewMemory())
		})

		t.Run("save of load round-trips", func(t *testing.T) {
			repo := newRepo(t)
			ctx := context.Background()

			mem := model.NewMemory()
			mem.UserProfile.Name = "Layla"
			mem.UserProfile.Preferences = map[string]any{"language": "ar", "vip": true}
			mem.Projects = []model.Project{{ID: "p1", Name: "Wedding gift", Description: "Budget 200", UpdatedAt: "2026-01-01T00:00:00Z"}}
			mem.Notes = []model.Note{{ID: "n1", Content: "prefers gold", CreatedAt: "2026-01-01T00:00:00Z"}}
			mem.AppendTurn("hello", "welcome", time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC))
			gt.NoError(t, repo.Memory().Save(ctx, mem)).Required()

			first, err := repo.Memory().Load(ctx)
			gt.NoError(t, err).Required()
			gt.NoError(t, repo.Memory().Save(ctx, first)).Required()
			second, err := repo.Memory().Load(ctx)
			gt.NoError(t, err).Required()

			gt.Value(t, second).Equal(first)
			gt.Value(t, second.UserProfile.Name).Equal("Layla")
			gt.Array(t, second.ActiveConversation().Messages).Length(2)
		})

		t.Run("Load returns a copy", func(t *testing.T) {
			repo := newRepo(t)
			ctx := context.Background()

			gt.NoError(t, repo.Memory().Save(ctx, model.NewMemory())).Required()
			mem, err := repo.Memory().Load(ctx)
			gt.NoError(t, err).Required()
			mem.AppendTurn("q", "a", time.Now())

			reloaded, err := repo.Memory().Load(ctx)
			gt.NoError(t, err).Required()
			gt.Array(t, reloaded.Conversations).Length(0)
		})
	})
}
