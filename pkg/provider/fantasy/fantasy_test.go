package fantasy

import (
	"context"
	"errors"
	"testing"

	core "charm.land/fantasy"

	"chatpop/pkg/config"
	providertypes "chatpop/pkg/provider/types"
)

type fakeLanguageModelProvider struct {
	model     core.LanguageModel
	err       error
	lastID    string
	callCount int
}

func (f *fakeLanguageModelProvider) LanguageModel(ctx context.Context, modelID string) (core.LanguageModel, error) {
	f.callCount++
	f.lastID = modelID
	if f.err != nil {
		return nil, f.err
	}

	return f.model, nil
}

type fakeLanguageModel struct{}

func (f *fakeLanguageModel) Generate(context.Context, core.Call) (*core.Response, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeLanguageModel) Stream(context.Context, core.Call) (core.StreamResponse, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeLanguageModel) GenerateObject(context.Context, core.ObjectCall) (*core.ObjectResponse, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeLanguageModel) StreamObject(context.Context, core.ObjectCall) (core.ObjectStreamResponse, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeLanguageModel) Provider() string { return "openai" }
func (f *fakeLanguageModel) Model() string    { return "gpt-4o-mini" }

func TestNewRequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	cfg := config.Default()
	cfg.Responder.Provider = "fantasy"

	if _, err := New(cfg); err == nil {
		t.Fatal("expected missing api key error")
	}
}

func TestHealthResolvesModel(t *testing.T) {
	provider := &fakeLanguageModelProvider{model: &fakeLanguageModel{}}
	client := &Client{provider: provider, modelID: "gpt-4o-mini"}

	if err := client.Health(context.Background()); err != nil {
		t.Fatalf("Health error: %v", err)
	}
	if provider.callCount != 1 {
		t.Fatalf("health call count = %d, want 1", provider.callCount)
	}
	if provider.lastID != "gpt-4o-mini" {
		t.Fatalf("model id = %q, want %q", provider.lastID, "gpt-4o-mini")
	}
}

func TestGenerateParsesEnvelope(t *testing.T) {
	provider := &fakeLanguageModelProvider{model: &fakeLanguageModel{}}
	var captured core.AgentCall
	client := &Client{
		provider: provider,
		modelID:  "gpt-4o-mini",
		generate: func(ctx context.Context, model core.LanguageModel, call core.AgentCall) (*core.AgentResult, error) {
			captured = call
			return &core.AgentResult{
				Response: core.Response{
					Content: core.ResponseContent{
						core.TextContent{Text: `{"kind":"music","body":"this one","query":"dreams fleetwood mac"}`},
					},
				},
			}, nil
		},
	}

	history := []providertypes.Turn{
		{Role: providertypes.RoleContact, Content: "hey"},
		{Role: providertypes.RoleUser, Content: "play me something"},
	}

	reply, err := client.Generate(context.Background(), "a music lover", history)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if reply.Kind != providertypes.ReplyMusic {
		t.Fatalf("reply kind = %q, want music", reply.Kind)
	}
	if reply.Query != "dreams fleetwood mac" {
		t.Fatalf("reply query = %q", reply.Query)
	}

	if captured.Prompt != "play me something" {
		t.Fatalf("call prompt = %q", captured.Prompt)
	}
	if len(captured.Messages) != 2 {
		t.Fatalf("messages length = %d, want 2 (system + assistant)", len(captured.Messages))
	}
	if captured.Messages[0].Role != core.MessageRoleSystem {
		t.Fatalf("first message role = %q, want system", captured.Messages[0].Role)
	}
	if captured.Messages[1].Role != core.MessageRoleAssistant {
		t.Fatalf("second message role = %q, want assistant", captured.Messages[1].Role)
	}
}

func TestGenerateRequiresUserTurn(t *testing.T) {
	client := &Client{
		provider: &fakeLanguageModelProvider{model: &fakeLanguageModel{}},
		modelID:  "gpt-4o-mini",
	}

	history := []providertypes.Turn{{Role: providertypes.RoleContact, Content: "hello?"}}
	if _, err := client.Generate(context.Background(), "", history); err == nil {
		t.Fatal("expected error when history has no user turn")
	}
}

func TestExtractText(t *testing.T) {
	content := core.ResponseContent{
		core.ReasoningContent{Text: "ignore me"},
		core.TextContent{Text: "  first  "},
		core.TextContent{Text: ""},
		core.TextContent{Text: "second"},
	}

	got := extractText(content)
	if got != "first\nsecond" {
		t.Fatalf("extractText() = %q", got)
	}
}
