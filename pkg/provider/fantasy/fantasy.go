package fantasy

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	core "charm.land/fantasy"
	provideropenai "charm.land/fantasy/providers/openai"

	"chatpop/pkg/config"
	providertypes "chatpop/pkg/provider/types"
)

type languageModelProvider interface {
	LanguageModel(ctx context.Context, modelID string) (core.LanguageModel, error)
}

type Client struct {
	provider        languageModelProvider
	requestTimeout  time.Duration
	modelID         string
	maxOutputTokens *int64
	temperature     *float64
	generate        func(context.Context, core.LanguageModel, core.AgentCall) (*core.AgentResult, error)
}

func New(cfg *config.Config) (*Client, error) {
	apiKey := resolveAPIKey(cfg.Providers.OpenAI)
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY must be set")
	}

	modelID, err := normalizeOpenAIModel(cfg.Responder.Model)
	if err != nil {
		return nil, err
	}

	providerOptions := []provideropenai.Option{provideropenai.WithAPIKey(apiKey)}
	if baseURL := strings.TrimSpace(cfg.Providers.OpenAI.BaseURL); baseURL != "" {
		providerOptions = append(providerOptions, provideropenai.WithBaseURL(baseURL))
	}
	if organization := strings.TrimSpace(cfg.Providers.OpenAI.Organization); organization != "" {
		providerOptions = append(providerOptions, provideropenai.WithOrganization(organization))
	}
	if project := strings.TrimSpace(cfg.Providers.OpenAI.Project); project != "" {
		providerOptions = append(providerOptions, provideropenai.WithProject(project))
	}

	fantasyProvider, err := provideropenai.New(providerOptions...)
	if err != nil {
		return nil, fmt.Errorf("initialize fantasy openai provider: %w", err)
	}

	client := &Client{
		provider:       fantasyProvider,
		requestTimeout: time.Duration(cfg.Providers.OpenAI.RequestTimeoutSeconds) * time.Second,
		modelID:        modelID,
		generate:       generateWithFantasyAgent,
	}

	if cfg.Responder.MaxTokens > 0 {
		maxTokens := int64(cfg.Responder.MaxTokens)
		client.maxOutputTokens = &maxTokens
	}
	if cfg.Responder.Temperature > 0 {
		temp := cfg.Responder.Temperature
		client.temperature = &temp
	}

	return client, nil
}

func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if _, err := c.provider.LanguageModel(ctx, c.modelID); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	return nil
}

func (c *Client) Generate(ctx context.Context, persona string, history []providertypes.Turn) (providertypes.Reply, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	prompt, messages, err := splitHistory(persona, history)
	if err != nil {
		return providertypes.Reply{}, err
	}

	languageModel, err := c.provider.LanguageModel(ctx, c.modelID)
	if err != nil {
		return providertypes.Reply{}, fmt.Errorf("resolve language model: %w", err)
	}

	call := core.AgentCall{
		Prompt:   prompt,
		Messages: messages,
	}
	if c.maxOutputTokens != nil {
		call.MaxOutputTokens = c.maxOutputTokens
	}
	if c.temperature != nil {
		call.Temperature = c.temperature
	}

	generate := c.generate
	if generate == nil {
		generate = generateWithFantasyAgent
	}

	result, err := generate(ctx, languageModel, call)
	if err != nil {
		return providertypes.Reply{}, fmt.Errorf("generate failed: %w", err)
	}

	response := extractText(result.Response.Content)
	if response == "" {
		return providertypes.Reply{}, errors.New("generate succeeded but returned no text")
	}

	return providertypes.ParseReply(response), nil
}

// splitHistory maps conversation turns onto the fantasy message shape. The
// last user turn becomes the prompt; everything before it is context.
func splitHistory(persona string, history []providertypes.Turn) (string, []core.Message, error) {
	prompt := ""
	last := -1
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == providertypes.RoleUser && strings.TrimSpace(history[i].Content) != "" {
			prompt = strings.TrimSpace(history[i].Content)
			last = i
			break
		}
	}
	if prompt == "" {
		return "", nil, errors.New("conversation history has no user turn")
	}

	messages := []core.Message{{
		Role: core.MessageRoleSystem,
		Content: []core.MessagePart{
			core.TextPart{Text: providertypes.Instructions(persona)},
		},
	}}
	for i, turn := range history {
		if i == last {
			break
		}
		content := strings.TrimSpace(turn.Content)
		if content == "" {
			continue
		}
		switch turn.Role {
		case providertypes.RoleContact:
			messages = append(messages, core.Message{
				Role: core.MessageRoleAssistant,
				Content: []core.MessagePart{
					core.TextPart{Text: content},
				},
			})
		default:
			messages = append(messages, core.NewUserMessage(content))
		}
	}

	return prompt, messages, nil
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

func normalizeOpenAIModel(model string) (string, error) {
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
		return "", fmt.Errorf("model provider %q is not supported by fantasy openai provider", providerID)
	}

	return modelID, nil
}

func extractText(content core.ResponseContent) string {
	lines := make([]string, 0)
	for _, part := range content {
		if part.GetType() != core.ContentTypeText {
			continue
		}

		textPart, ok := core.AsContentType[core.TextContent](part)
		if !ok {
			continue
		}

		line := strings.TrimSpace(textPart.Text)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func generateWithFantasyAgent(ctx context.Context, model core.LanguageModel, call core.AgentCall) (*core.AgentResult, error) {
	runtime := core.NewAgent(model)
	return runtime.Generate(ctx, call)
}
