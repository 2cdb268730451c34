package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/storevoice/pkg/domain/model"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const memoryDocID = "default"

type memoryRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newMemoryRepository(client *firestore.Client) *memoryRepository {
	return &memoryRepository{client: client}
}

func (r *memoryRepository) doc() *firestore.DocumentRef {
	return r.client.Collection(collectionName(r.collectionPrefix, CollectionMemory)).Doc(memoryDocID)
}

func (r *memoryRepository) Load(ctx context.Context) (*model.Memory, error) {
	snap, err := r.doc().Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return model.NewMemory(), nil
		}
		return nil, goerr.Wrap(err, "failed to get memory")
	}

	mem := model.NewMemory()
	if err := snap.DataTo(mem); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal memory")
	}
	return mem.Normalize(), nil
}

func (r *memoryRepository) Save(ctx context.Context, mem *model.Memory) error {
	if _, err := r.doc().Set(ctx, mem); err != nil {
		return goerr.Wrap(err, "failed to save memory")
	}
	return nil
}
