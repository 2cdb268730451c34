package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/storevoice/pkg/repository/file"
)

func TestLoadCorruptMemory(t *testing.T) {
	dir := t.TempDir()
	gt.NoError(t, os.WriteFile(filepath.Join(dir, "memory.json"), []byte("{not json"), 0o600)).Required()

	repo, err := file.New(dir)
	gt.NoError(t, err).Required()

	_, err = repo.Memory().Load(context.Background())
	gt.Error(t, err)
}

func TestMemorySaveLoadIdempotent(t *testing.T) {
	ctx := context.Background()
	docs := map[string]string{
		"empty collections": `{"userProfile":{"name":"x","preferences":{}},"projects":[],"notes":[],"conversations":[]}`,
		"missing keys":      `{"userProfile":{"name":"x"}}`,
		"with messages":     `{"userProfile":{"preferences":{"vip":true}},"conversations":[{"id":"c1","messages":[],"startedAt":"t","updatedAt":"t"}]}`,
	}

	for name, raw := range docs {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			gt.NoError(t, os.WriteFile(filepath.Join(dir, "memory.json"), []byte(raw), 0o600)).Required()

			repo, err := file.New(dir)
			gt.NoError(t, err).Required()

			first, err := repo.Memory().Load(ctx)
			gt.NoError(t, err).Required()
			gt.NoError(t, repo.Memory().Save(ctx, first)).Required()

			second, err := repo.Memory().Load(ctx)
			gt.NoError(t, err).Required()
			gt.Value(t, second).Equal(first)
			gt.True(t, second.UserProfile.Preferences != nil)
		})
	}
}

func TestDashboardLayout(t *testing.T) {
	dir := t.TempDir()
	raw := `{"agents":[{"id":"shop-1","name":"Nora","storeName":"Gadget Hub","usageLimit":5,"usedCount":5,"createdAt":"2026-01-01T00:00:00Z"}],"conversations":[]}`
	gt.NoError(t, os.WriteFile(filepath.Join(dir, "dashboard.json"), []byte(raw), 0o600)).Required()

	repo, err := file.New(dir)
	gt.NoError(t, err).Required()

	agent, err := repo.Agent().Get(context.Background(), "shop-1")
	gt.NoError(t, err).Required()
	gt.Value(t, agent).NotNil().Required()
	gt.Bool(t, agent.QuotaExceeded()).True()
}

func TestNewRequiresDir(t *testing.T) {
	_, err := file.New("")
	gt.Error(t, err)
}
