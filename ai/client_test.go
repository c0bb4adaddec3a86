package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/seekwell/seekwell/ai/local"
	"github.com/seekwell/seekwell/ai/openrouter"
	"github.com/seekwell/seekwell/config"
)

func TestFactorySelectsConfiguredProvider(t *testing.T) {
	logger := zap.NewNop().Sugar()

	cfg := &config.Config{}
	cfg.Inference.Provider = "local"
	assert.IsType(t, &local.Client{}, NewClient(cfg, logger))

	cfg.Inference.Provider = "openrouter"
	assert.IsType(t, &openrouter.Client{}, NewClient(cfg, logger))
}

func TestFactoryAutoPrefersOpenRouterWithKey(t *testing.T) {
	logger := zap.NewNop().Sugar()

	cfg := &config.Config{}
	cfg.Inference.Provider = "auto"
	cfg.Inference.OpenRouter.APIKey = "sk-test"
	assert.IsType(t, &openrouter.Client{}, NewClient(cfg, logger))

	cfg.Inference.OpenRouter.APIKey = ""
	assert.IsType(t, &local.Client{}, NewClient(cfg, logger))
}
