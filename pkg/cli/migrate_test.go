package cli_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/storevoice/pkg/cli"
	"github.com/secmon-lab/storevoice/pkg/repository/firestore"
)

func TestGetIndexConfig(t *testing.T) {
	cfg := cli.GetIndexConfig()
	gt.Array(t, cfg.Collections).Length(2).Required()

	byName := map[string][]string{}
	for _, col := range cfg.Collections {
		gt.Array(t, col.Indexes).Length(1).Required()
		var paths []string
		for _, f := range col.Indexes[0].Fields {
			paths = append(paths, f.Path)
		}
		byName[col.Name] = paths
	}

	gt.Value(t, byName[firestore.CollectionConversationLogs]).Equal([]string{"agent_id", "timestamp"})
	gt.Value(t, byName[firestore.CollectionVoiceSessions]).Equal([]string{"store_id", "timestamp"})
}

func TestDescribeIndexes(t *testing.T) {
	planned := cli.DescribeIndexes(cli.GetIndexConfig())
	gt.Array(t, planned).Length(2).Required()

	gt.Value(t, planned[0].Collection).Equal(firestore.CollectionConversationLogs)
	gt.Value(t, planned[0].Fields).Equal("agent_id:asc,timestamp:desc")
	gt.Value(t, planned[1].Collection).Equal(firestore.CollectionVoiceSessions)
	gt.Value(t, planned[1].Fields).Equal("store_id:asc,timestamp:desc")
}
