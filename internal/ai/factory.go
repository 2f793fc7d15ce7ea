package ai

import (
	"strings"

	"github.com/dkotl/macrolog/internal/config"
)

// NewProvider selects the estimation backend from AI_MODE. Anything other
// than a configured OpenAI mode falls back to the deterministic mock, so
// the analyze endpoints always have a provider.
func NewProvider(cfg *config.Config) Provider {
	switch strings.ToLower(strings.TrimSpace(cfg.AIMode)) {
	case config.AIModeOpenAI:
		return NewOpenAIProvider(cfg)
	default:
		return NewMockProvider()
	}
}
