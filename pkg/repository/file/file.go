package file

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/storevoice/pkg/domain/interfaces"
)

const (
	memoryFile        = "memory.json"
	dashboardFile     = "dashboard.json"
	voiceSessionsFile = "voice-sessions.json"
)

// File persists every concern as one JSON document under a data directory. Each operation
// reads and rewrites the whole document.
type File struct {
	dir string

	// one lock per document; guards the process, not a turn
	memoryMu    sync.Mutex
	dashboardMu sync.Mutex
	voiceMu     sync.Mutex

	memory          *memoryRepository
	agent           *agentRepository
	conversationLog *conversationLogRepository
	voiceSession    *voiceSessionRepository
}

var _ interfaces.Repository = &File{}

// New creates a file repository rooted at dir, creating it if needed
func New(dir string) (*File, error) {
	if dir == "" {
		return nil, goerr.New("data directory is required")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, goerr.Wrap(err, "failed to create data directory", goerr.V("dir", dir))
	}

	f := &File{dir: dir}
	f.memory = &memoryRepository{f: f}
	f.agent = &agentRepository{f: f}
	f.conversationLog = &conversationLogRepository{f: f}
	f.voiceSession = &voiceSessionRepository{f: f}
	return f, nil
}

func (f *File) Memory() interfaces.MemoryRepository {
	return f.memory
}

func (f *File) Agent() interfaces.AgentRepository {
	return f.agent
}

func (f *File) ConversationLog() interfaces.ConversationLogRepository {
	return f.conversationLog
}

func (f *File) VoiceSession() interfaces.VoiceSessionRepository {
	return f.voiceSession
}

func (f *File) Close() error {
	return nil
}

func (f *File) path(name string) string {
	return filepath.Join(f.dir, name)
}

// readJSON decodes the named document into v. A missing file leaves v untouched.
func (f *File) readJSON(ctx context.Context, name string, v any) error {
	raw, err := os.ReadFile(f.path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return goerr.Wrap(err, "failed to read document", goerr.V("file", name))
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return goerr.Wrap(err, "failed to parse document", goerr.V("file", name))
	}
	return nil
}

// writeJSON replaces the named document through a temporary file and rename
func (f *File) writeJSON(ctx context.Context, name string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return goerr.Wrap(err, "failed to encode document", goerr.V("file", name))
	}

	tmp, err := os.CreateTemp(f.dir, name+".*.tmp")
	if err != nil {
		return goerr.Wrap(err, "failed to create temporary file", goerr.V("file", name))
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return goerr.Wrap(err, "failed to write document", goerr.V("file", name))
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return goerr.Wrap(err, "failed to close document", goerr.V("file", name))
	}
	if err := os.Rename(tmpName, f.path(name)); err != nil {
		_ = os.Remove(tmpName)
		return goerr.Wrap(err, "failed to replace document", goerr.V("file", name))
	}
	return nil
}
