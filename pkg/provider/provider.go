package provider

import (
	"context"
	"fmt"
	"log/slog"

	"chatpop/pkg/config"
	providerfantasy "chatpop/pkg/provider/fantasy"
	"chatpop/pkg/provider/mock"
	provideropenai "chatpop/pkg/provider/openai"
	providertypes "chatpop/pkg/provider/types"
)

type Client interface {
	Health(ctx context.Context) error
	Generate(ctx context.Context, persona string, history []providertypes.Turn) (providertypes.Reply, error)
}

// New resolves the configured responder backend. A real backend that cannot
// be constructed (typically a missing API key) falls back to the mock so
// the app always starts; the degradation is logged, not fatal.
func New(cfg *config.Config) (Client, error) {
	providerID := cfg.Responder.Provider
	if providerID == "" {
		providerID = "mock"
	}

	log := slog.Default().With("component", "provider.factory")
	log.Debug("Resolving provider client", "provider", providerID)

	switch providerID {
	case "mock":
		return mock.New(), nil
	case "openai":
		client, err := provideropenai.New(cfg)
		if err != nil {
			log.Warn("openai provider unavailable, falling back to mock", "error", err)
			return mock.New(), nil
		}
		return client, nil
	case "fantasy":
		client, err := providerfantasy.New(cfg)
		if err != nil {
			log.Warn("fantasy provider unavailable, falling back to mock", "error", err)
			return mock.New(), nil
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", providerID)
	}
}
