package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/storevoice/pkg/domain/model"
	"github.com/secmon-lab/storevoice/pkg/widget"
)

// AppConfig represents the application configuration file
type AppConfig struct {
	BrandName string         `toml:"brand_name"`
	LLM       LLMModels      `toml:"llm"`
	Widget    WidgetTimings  `toml:"widget"`
	Agents    []*model.Agent `toml:"agent"`
}

// LLMModels lists the model candidates tried in order per provider
type LLMModels struct {
	GeminiModels []string `toml:"gemini_models"`
	OpenAIModels []string `toml:"openai_models"`
	Timeout      string   `toml:"timeout"`
}

// WidgetTimings tunes the console widget. Durations use time.ParseDuration syntax.
type WidgetTimings struct {
	HandsFree          bool   `toml:"hands_free"`
	SilenceTimeout     string `toml:"silence_timeout"`
	StartupDelay       string `toml:"startup_delay"`
	InactivityInterval string `toml:"inactivity_interval"`
	InactivityTimeout  string `toml:"inactivity_timeout"`
	MinTranscript      int    `toml:"min_transcript"`
}

func parseDuration(field, s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, goerr.Wrap(ErrInvalidDuration, err.Error(), goerr.V(FieldKey, field), goerr.V("value", s))
	}
	if d < 0 {
		return 0, goerr.Wrap(ErrInvalidDuration, "duration must not be negative", goerr.V(FieldKey, field), goerr.V("value", s))
	}
	return d, nil
}

// AttemptTimeout returns the configured per-attempt timeout, zero meaning provider defaults
func (m *LLMModels) AttemptTimeout() (time.Duration, error) {
	return parseDuration("llm.timeout", m.Timeout)
}

// MachineConfig converts the timings into a widget configuration
func (w *WidgetTimings) MachineConfig() (widget.Config, error) {
	cfg := widget.Config{
		HandsFree:     w.HandsFree,
		MinTranscript: w.MinTranscript,
	}

	fields := []struct {
		name  string
		value string
		dst   *time.Duration
	}{
		{"widget.silence_timeout", w.SilenceTimeout, &cfg.SilenceTimeout},
		{"widget.startup_delay", w.StartupDelay, &cfg.StartupDelay},
		{"widget.inactivity_interval", w.InactivityInterval, &cfg.InactivityInterval},
		{"widget.inactivity_timeout", w.InactivityTimeout, &cfg.InactivityTimeout},
	}
	for _, f := range fields {
		d, err := parseDuration(f.name, f.value)
		if err != nil {
			return widget.Config{}, err
		}
		*f.dst = d
	}
	return cfg, nil
}

// Validate checks if the AppConfig is valid
func (a *AppConfig) Validate() error {
	if _, err := a.LLM.AttemptTimeout(); err != nil {
		return err
	}
	if _, err := a.Widget.MachineConfig(); err != nil {
		return err
	}
	if a.Widget.MinTranscript < 0 {
		return goerr.Wrap(ErrInvalidConfig, "min_transcript must not be negative", goerr.V(FieldKey, "widget.min_transcript"))
	}

	seen := make(map[string]bool)
	for _, agent := range a.Agents {
		if err := agent.ID.Validate(); err != nil {
			return goerr.Wrap(ErrInvalidAgentID, err.Error(), goerr.V(AgentIDKey, agent.ID))
		}
		if seen[agent.ID.String()] {
			return goerr.Wrap(ErrDuplicateAgent, "agent defined twice", goerr.V(AgentIDKey, agent.ID))
		}
		seen[agent.ID.String()] = true

		if agent.UsageLimit < 0 {
			return goerr.Wrap(ErrInvalidConfig, "usage_limit must not be negative", goerr.V(AgentIDKey, agent.ID))
		}
	}
	return nil
}

// LoadAppConfiguration loads the application configuration from a TOML file
func LoadAppConfiguration(path string) (*AppConfig, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "config file does not exist", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	var config AppConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse TOML config", goerr.V(ConfigPathKey, path), goerr.V("error", err.Error()))
	}

	if err := config.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V(ConfigPathKey, path))
	}

	return &config, nil
}
