package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/storevoice/pkg/service/llm"
	"github.com/urfave/cli/v3"
)

// LLM holds CLI flags for the completion providers. A provider without credentials is not
// registered.
type LLM struct {
	geminiAPIKey   string
	geminiBaseURL  string
	vertexProject  string
	vertexLocation string
	openaiAPIKey   string
	openaiBaseURL  string
	openaiModel    string
}

func (x *LLM) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gemini-api-key",
			Category:    "LLM",
			Usage:       "Gemini API key (primary provider)",
			Sources:     cli.EnvVars("STOREVOICE_GEMINI_API_KEY"),
			Destination: &x.geminiAPIKey,
		},
		&cli.StringFlag{
			Name:        "gemini-base-url",
			Category:    "LLM",
			Usage:       "Override the Gemini API endpoint",
			Sources:     cli.EnvVars("STOREVOICE_GEMINI_BASE_URL"),
			Destination: &x.geminiBaseURL,
		},
		&cli.StringFlag{
			Name:        "vertex-project",
			Category:    "LLM",
			Usage:       "Google Cloud project ID for Vertex AI Gemini",
			Sources:     cli.EnvVars("STOREVOICE_VERTEX_PROJECT"),
			Destination: &x.vertexProject,
		},
		&cli.StringFlag{
			Name:        "vertex-location",
			Category:    "LLM",
			Usage:       "Google Cloud location for Vertex AI Gemini",
			Value:       "us-central1",
			Sources:     cli.EnvVars("STOREVOICE_VERTEX_LOCATION"),
			Destination: &x.vertexLocation,
		},
		&cli.StringFlag{
			Name:        "openai-api-key",
			Category:    "LLM",
			Usage:       "API key of the OpenAI-compatible secondary provider",
			Sources:     cli.EnvVars("STOREVOICE_OPENAI_API_KEY"),
			Destination: &x.openaiAPIKey,
		},
		&cli.StringFlag{
			Name:        "openai-base-url",
			Category:    "LLM",
			Usage:       "Base URL of the OpenAI-compatible secondary provider",
			Sources:     cli.EnvVars("STOREVOICE_OPENAI_BASE_URL"),
			Destination: &x.openaiBaseURL,
		},
		&cli.StringFlag{
			Name:        "openai-model",
			Category:    "LLM",
			Usage:       "Model of the OpenAI-compatible secondary provider",
			Sources:     cli.EnvVars("STOREVOICE_OPENAI_MODEL"),
			Destination: &x.openaiModel,
		},
	}
}

func (x LLM) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("gemini", x.geminiAPIKey != ""),
		slog.String("vertex_project", x.vertexProject),
		slog.String("vertex_location", x.vertexLocation),
		slog.Bool("openai", x.openaiAPIKey != "" || llm.IsLocalEndpoint(x.openaiBaseURL)),
		slog.String("openai_base_url", x.openaiBaseURL),
	)
}

// Providers builds the ranked provider list: Gemini, then Vertex AI, then the OpenAI-compatible
// endpoint
func (x *LLM) Providers(ctx context.Context, models *LLMModels) ([]llm.Provider, error) {
	if models == nil {
		models = &LLMModels{}
	}
	timeout, err := models.AttemptTimeout()
	if err != nil {
		return nil, err
	}

	var providers []llm.Provider

	if x.geminiAPIKey != "" {
		opts := []llm.GeminiOption{llm.WithGeminiModels(models.GeminiModels)}
		if timeout > 0 {
			opts = append(opts, llm.WithGeminiTimeout(timeout))
		}
		if x.geminiBaseURL != "" {
			opts = append(opts, llm.WithGeminiBaseURL(x.geminiBaseURL))
		}
		gemini, err := llm.NewGemini(ctx, x.geminiAPIKey, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create Gemini provider")
		}
		providers = append(providers, gemini)
	}

	if x.vertexProject != "" {
		factory := llm.VertexClientFactory(x.vertexProject, x.vertexLocation)
		providers = append(providers, llm.NewVertex(factory, models.GeminiModels, timeout))
	}

	openaiModels := models.OpenAIModels
	if x.openaiModel != "" {
		openaiModels = append([]string{x.openaiModel}, openaiModels...)
	}
	if openai := llm.NewOpenAI(llm.OpenAIConfig{
		APIKey:  x.openaiAPIKey,
		BaseURL: x.openaiBaseURL,
		Models:  openaiModels,
		Timeout: timeout,
	}); openai != nil {
		providers = append(providers, openai)
	}

	return providers, nil
}
