package config

// NewSlackForTest creates a Slack config for testing purposes
func NewSlackForTest(botToken, channelID string) *Slack {
	return &Slack{
		botToken:  botToken,
		channelID: channelID,
	}
}

// NewLLMForTest creates an LLM config for testing purposes
func NewLLMForTest(geminiAPIKey, vertexProject, openaiAPIKey, openaiBaseURL string) *LLM {
	return &LLM{
		geminiAPIKey:   geminiAPIKey,
		vertexProject:  vertexProject,
		vertexLocation: "us-central1",
		openaiAPIKey:   openaiAPIKey,
		openaiBaseURL:  openaiBaseURL,
	}
}

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{level: level, format: format, output: output}
}

// NewRepositoryForTest creates a Repository config for testing purposes
func NewRepositoryForTest(backend, dataDir string) *Repository {
	return &Repository{backend: backend, dataDir: dataDir}
}

// NewStorageForTest creates a Storage config for testing purposes
func NewStorageForTest(dir string) *Storage {
	return &Storage{dir: dir}
}
