package completion

import (
	"fmt"

	"github.com/zhukpm/tracky/agent"
)

// Config carries backend construction parameters. Exactly one backend is
// live per process.
type Config struct {
	// Backend selects the implementation: "openai", "anthropic", "gollm".
	Backend string
	// Model is the backend's model identifier.
	Model string
	// APIKey authenticates against the backend.
	APIKey string
	// BaseURL overrides the backend's endpoint; empty selects the default.
	BaseURL string
}

// Seed fixes the sampling seed on backends that support one, so repeated
// decisions over the same transcript are reproducible.
const Seed = 11

// New selects and constructs the named backend.
func New(cfg Config) (agent.CompletionService, error) {
	switch cfg.Backend {
	case "openai":
		return NewOpenAI(cfg)
	case "anthropic":
		return NewAnthropic(cfg)
	case "gollm":
		return NewGollm(cfg)
	default:
		return nil, fmt.Errorf("completion backend %q is not implemented", cfg.Backend)
	}
}
