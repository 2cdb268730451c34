package memory

import (
	"github.com/secmon-lab/storevoice/pkg/domain/interfaces"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

// Memory is an in-process repository used by tests and ephemeral deployments
type Memory struct {
	memory          *memoryRepository
	agent           *agentRepository
	conversationLog *conversationLogRepository
	voiceSession    *voiceSessionRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		memory:          newMemoryRepository(),
		agent:           newAgentRepository(),
		conversationLog: newConversationLogRepository(),
		voiceSession:    newVoiceSessionRepository(),
	}
}

func (m *Memory) Memory() interfaces.MemoryRepository {
	return m.memory
}

func (m *Memory) Agent() interfaces.AgentRepository {
	return m.agent
}

func (m *Memory) ConversationLog() interfaces.ConversationLogRepository {
	return m.conversationLog
}

func (m *Memory) VoiceSession() interfaces.VoiceSessionRepository {
	return m.voiceSession
}

func (m *Memory) Close() error {
	return nil
}
