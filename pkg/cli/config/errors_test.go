package config_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/storevoice/pkg/cli/config"
)

func TestConfigErrors_SentinelIdentification(t *testing.T) {
	sentinels := []error{
		config.ErrConfigNotFound,
		config.ErrInvalidConfig,
		config.ErrDuplicateAgent,
		config.ErrInvalidAgentID,
		config.ErrInvalidDuration,
	}

	for i, s := range sentinels {
		wrapped := goerr.Wrap(s, "wrapped", goerr.V(config.ConfigPathKey, "/etc/storevoice.toml"))
		for j, other := range sentinels {
			gt.Value(t, errors.Is(wrapped, other)).Equal(i == j)
		}
	}
}
