package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/storevoice/pkg/domain/interfaces"
	"google.golang.org/api/iterator"
)

const (
	// CollectionAgents holds one document per agent keyed by agent ID
	CollectionAgents = "agents"
	// CollectionConversationLogs holds completed turns
	CollectionConversationLogs = "conversation_logs"
	// CollectionVoiceSessions holds consented recording metadata
	CollectionVoiceSessions = "voice_sessions"
	// CollectionMemory holds the conversational memory document
	CollectionMemory = "memory"
)

type Firestore struct {
	client          *firestore.Client
	memory          *memoryRepository
	agent           *agentRepository
	conversationLog *conversationLogRepository
	voiceSession    *voiceSessionRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix prefixes every collection name, used to isolate test runs
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.memory.collectionPrefix = prefix
		f.agent.collectionPrefix = prefix
		f.conversationLog.collectionPrefix = prefix
		f.voiceSession.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID),
			goerr.V("databaseID", databaseID))
	}

	f := &Firestore{
		client:          client,
		memory:          newMemoryRepository(client),
		agent:           newAgentRepository(client),
		conversationLog: newConversationLogRepository(client),
		voiceSession:    newVoiceSessionRepository(client),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Memory() interfaces.MemoryRepository {
	return f.memory
}

func (f *Firestore) Agent() interfaces.AgentRepository {
	return f.agent
}

func (f *Firestore) ConversationLog() interfaces.ConversationLogRepository {
	return f.conversationLog
}

func (f *Firestore) VoiceSession() interfaces.VoiceSessionRepository {
	return f.voiceSession
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

func collectionName(prefix, name string) string {
	if prefix != "" {
		return prefix + "_" + name
	}
	return name
}

// trimOldest deletes documents of q beyond the newest retain once more than ceiling exist.
// q must be ordered newest first.
func trimOldest(ctx context.Context, client *firestore.Client, q firestore.Query, ceiling, retain int) (int, error) {
	beyond := q.Offset(ceiling).Limit(1).Documents(ctx)
	_, err := beyond.Next()
	beyond.Stop()
	if err == iterator.Done {
		return 0, nil
	}
	if err != nil {
		return 0, goerr.Wrap(err, "failed to check retention ceiling")
	}

	iter := q.Offset(retain).Documents(ctx)
	defer iter.Stop()
	bulkWriter := client.BulkWriter(ctx)
	defer bulkWriter.End()

	deleted := 0
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return deleted, goerr.Wrap(err, "failed to iterate documents for deletion")
		}
		if _, err := bulkWriter.Delete(doc.Ref); err != nil {
			return deleted, goerr.Wrap(err, "failed to delete document", goerr.V("id", doc.Ref.ID))
		}
		deleted++
	}
	return deleted, nil
}
