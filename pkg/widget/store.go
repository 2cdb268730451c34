package widget

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/storevoice/pkg/domain/model"
	"github.com/secmon-lab/storevoice/pkg/domain/types"
)

const stateFileName = "widget.json"

type localState struct {
	UserID  string                                `json:"userId,omitempty"`
	Consent map[types.AgentID]types.ConsentStatus `json:"consent,omitempty"`
	Memory  *model.Memory                         `json:"memory,omitempty"`
}

// FileStore keeps the widget's local state in a single JSON file
type FileStore struct {
	path string
	mu   sync.Mutex
}

var _ LocalStore = &FileStore{}

// NewFileStore creates a store under dir, creating the directory if needed
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, goerr.New("widget state directory is required")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, goerr.Wrap(err, "failed to create widget state directory", goerr.V("dir", dir))
	}
	return &FileStore{path: filepath.Join(dir, stateFileName)}, nil
}

func (s *FileStore) load() (*localState, error) {
	st := &localState{}
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return st, nil
		}
		return nil, goerr.Wrap(err, "failed to read widget state", goerr.V("path", s.path))
	}
	if err := json.Unmarshal(raw, st); err != nil {
		return nil, goerr.Wrap(err, "failed to parse widget state", goerr.V("path", s.path))
	}
	return st, nil
}

func (s *FileStore) save(st *localState) error {
	raw, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return goerr.Wrap(err, "failed to encode widget state")
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return goerr.Wrap(err, "failed to write widget state", goerr.V("path", tmp))
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return goerr.Wrap(err, "failed to replace widget state", goerr.V("path", s.path))
	}
	return nil
}

func (s *FileStore) update(fn func(st *localState)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.load()
	if err != nil {
		return err
	}
	fn(st)
	return s.save(st)
}

func (s *FileStore) LoadMemory() (*model.Memory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.load()
	if err != nil {
		return nil, err
	}
	if st.Memory == nil {
		return nil, nil
	}
	return st.Memory.Normalize(), nil
}

func (s *FileStore) SaveMemory(mem *model.Memory) error {
	return s.update(func(st *localState) {
		st.Memory = mem
	})
}

func (s *FileStore) LoadConsent(agentID types.AgentID) (types.ConsentStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.load()
	if err != nil {
		return types.ConsentStatusUnknown, err
	}
	return st.Consent[agentID], nil
}

func (s *FileStore) SaveConsent(agentID types.AgentID, status types.ConsentStatus) error {
	return s.update(func(st *localState) {
		if st.Consent == nil {
			st.Consent = make(map[types.AgentID]types.ConsentStatus)
		}
		st.Consent[agentID] = status
	})
}

func (s *FileStore) UserID() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.load()
	if err != nil {
		return "", err
	}
	if st.UserID != "" {
		return st.UserID, nil
	}
	st.UserID = uuid.NewString()
	if err := s.save(st); err != nil {
		return "", err
	}
	return st.UserID, nil
}

// MemoryStore is a LocalStore that forgets everything when the process exits
type MemoryStore struct {
	mu      sync.Mutex
	userID  string
	memory  *model.Memory
	consent map[types.AgentID]types.ConsentStatus
}

var _ LocalStore = &MemoryStore{}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		userID:  uuid.NewString(),
		consent: make(map[types.AgentID]types.ConsentStatus),
	}
}

func (s *MemoryStore) LoadMemory() (*model.Memory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.memory == nil {
		return nil, nil
	}
	return s.memory.Clone(), nil
}

func (s *MemoryStore) SaveMemory(mem *model.Memory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memory = mem.Clone()
	return nil
}

func (s *MemoryStore) LoadConsent(agentID types.AgentID) (types.ConsentStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.consent[agentID], nil
}

func (s *MemoryStore) SaveConsent(agentID types.AgentID, status types.ConsentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.consent[agentID] = status
	return nil
}

func (s *MemoryStore) UserID() (string, error) {
	return s.userID, nil
}
