package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/storevoice/pkg/domain/model"
)

func TestSnapshotMerge(t *testing.T) {
	server := model.NewMemory()
	server.UserProfile.Name = "Server"
	server.Projects = []model.Project{{ID: "p1", Name: "Server project"}}
	server.Notes = []model.Note{{ID: "n1", Content: "server note"}}

	t.Run("nil snapshot returns server copy", func(t *testing.T) {
		var snap *model.MemorySnapshot
		merged := snap.Merge(server)
		gt.Value(t, merged.UserProfile.Name).Equal("Server")
		gt.Array(t, merged.Projects).Length(1)
	})

	t.Run("client keys win when present", func(t *testing.T) {
		snap := &model.MemorySnapshot{
			UserProfile: &model.UserProfile{Name: "Client"},
			Notes:       []model.Note{},
		}
		merged := snap.Merge(server)

		gt.Value(t, merged.UserProfile.Name).Equal("Client")
		gt.Array(t, merged.Notes).Length(0)
		gt.Array(t, merged.Projects).Length(1)
		gt.True(t, merged.Conversations != nil)
	})

	t.Run("stale client data survives server wipe", func(t *testing.T) {
		snap := &model.MemorySnapshot{
			Projects: []model.Project{{ID: "stale", Name: "Stale"}},
		}
		merged := snap.Merge(model.NewMemory())
		gt.Array(t, merged.Projects).Length(1).Required()
		gt.Value(t, merged.Projects[0].ID).Equal("stale")
	})

	t.Run("nil server", func(t *testing.T) {
		snap := &model.MemorySnapshot{}
		merged := snap.Merge(nil)
		gt.Value(t, merged).Equal(model.NewMemory())
	})
}

func TestMemorySnapshotRoundTrip(t *testing.T) {
	mem := model.NewMemory()
	mem.UserProfile.Name = "Sara"
	mem.Notes = []model.Note{{ID: "n", Content: "likes red"}}

	merged := mem.Snapshot().Merge(model.NewMemory())
	gt.Value(t, merged).Equal(mem)
}
