package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"chatpop/pkg/config"
	providertypes "chatpop/pkg/provider/types"

	osdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
)

type Client struct {
	client         osdk.Client
	requestTimeout time.Duration
	model          string
	maxTokens      int
	temperature    float64
}

func New(cfg *config.Config) (*Client, error) {
	providerCfg := cfg.Providers.OpenAI
	apiKey := resolveAPIKey(providerCfg)
	if apiKey == "" {
		return nil, errors.New("providers.openai.api_key_env is required or OPENAI_API_KEY must be set")
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL := strings.TrimSpace(providerCfg.BaseURL); baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if organization := strings.TrimSpace(providerCfg.Organization); organization != "" {
		opts = append(opts, option.WithOrganization(organization))
	}
	if project := strings.TrimSpace(providerCfg.Project); project != "" {
		opts = append(opts, option.WithProject(project))
	}

	requestTimeout := time.Duration(providerCfg.RequestTimeoutSeconds) * time.Second
	if requestTimeout > 0 {
		opts = append(opts, option.WithRequestTimeout(requestTimeout))
	}

	model, err := normalizeModel(cfg.Responder.Model)
	if err != nil {
		return nil, err
	}

	return &Client{
		client:         osdk.NewClient(opts...),
		requestTimeout: requestTimeout,
		model:          model,
		maxTokens:      cfg.Responder.MaxTokens,
		temperature:    cfg.Responder.Temperature,
	}, nil
}

func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	log := providerLogger().With("operation", "health")
	startedAt := time.Now()
	log.Debug("provider request started")

	if _, err := c.client.Models.List(ctx); err != nil {
		log.Debug("provider request failed", "duration_ms", time.Since(startedAt).Milliseconds(), "error", err)
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Debug("provider request completed", "duration_ms", time.Since(startedAt).Milliseconds())

	return nil
}

func (c *Client) Generate(ctx context.Context, persona string, history []providertypes.Turn) (providertypes.Reply, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	log := providerLogger().With("operation", "generate")
	startedAt := time.Now()

	prompt := buildPrompt(history)
	if prompt == "" {
		return providertypes.Reply{}, errors.New("conversation history is empty")
	}

	log.Debug("provider request started",
		"model", c.model,
		"history_turns", len(history),
		"prompt_length", len(prompt),
	)

	params := responses.ResponseNewParams{
		Model:        c.model,
		Instructions: osdk.String(providertypes.Instructions(persona)),
		Input:        responses.ResponseNewParamsInputUnion{OfString: osdk.String(prompt)},
	}
	if c.maxTokens > 0 {
		params.MaxOutputTokens = osdk.Int(int64(c.maxTokens))
	}
	if c.temperature > 0 {
		params.Temperature = osdk.Float(c.temperature)
	}

	response, err := c.client.Responses.New(ctx, params)
	if err != nil {
		log.Debug("provider request failed", "duration_ms", time.Since(startedAt).Milliseconds(), "error", err)
		return providertypes.Reply{}, fmt.Errorf("generate failed: %w", err)
	}

	text := strings.TrimSpace(response.OutputText())
	if text == "" {
		log.Debug("provider request failed", "duration_ms", time.Since(startedAt).Milliseconds(), "error", "no output text")
		return providertypes.Reply{}, errors.New("generate succeeded but returned no text")
	}
	log.Debug("provider request completed", "duration_ms", time.Since(startedAt).Milliseconds(), "response_length", len(text))

	return providertypes.ParseReply(text), nil
}

// buildPrompt flattens history into a transcript; the most recent user turn
// is what the model answers.
func buildPrompt(history []providertypes.Turn) string {
	lines := make([]string, 0, len(history))
	for _, turn := range history {
		content := strings.TrimSpace(turn.Content)
		if content == "" {
			continue
		}
		switch turn.Role {
		case providertypes.RoleContact:
			lines = append(lines, "You: "+content)
		default:
			lines = append(lines, "Them: "+content)
		}
	}

	return strings.Join(lines, "\n")
}

func providerLogger() *slog.Logger {
	return slog.Default().With("component", "provider.openai")
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.requestTimeout <= 0 {
		return ctx, func() {}
	}

	return context.WithTimeout(ctx, c.requestTimeout)
}

func resolveAPIKey(cfg config.OpenAIProviderConfig) string {
	if apiKeyEnv := strings.TrimSpace(cfg.APIKeyEnv); apiKeyEnv != "" {
		if apiKey := strings.TrimSpace(os.Getenv(apiKeyEnv)); apiKey != "" {
			return apiKey
		}
	}

	return strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
}

func normalizeModel(model string) (string, error) {
	model = strings.TrimSpace(model)
	if model == "" {
		return "", errors.New("model is required")
	}

	parts := strings.SplitN(model, "/", 2)
	if len(parts) != 2 {
		return model, nil
	}

	providerID := strings.TrimSpace(parts[0])
	modelID := strings.TrimSpace(parts[1])
	if providerID == "" || modelID == "" {
		return "", errors.New("model is invalid")
	}
	if providerID != "openai" {
		return "", fmt.Errorf("model provider %q is not supported by openai provider", providerID)
	}

	return modelID, nil
}
