package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/abhisek/quizrace/internal/store"
)

func retryConfig(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts: attempts,
		InitialWait: time.Millisecond,
		MaxWait:     5 * time.Millisecond,
		Multiplier:  2.0,
	}
}

func TestRetry_OneShotDoesNotRetry(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}},
		MockResponse{Text: "never reached"},
	)
	p := WithRetry(mock, retryConfig(1), nil)

	if _, err := p.Generate(context.Background(), Request{Prompt: "hi"}); err == nil {
		t.Fatal("expected error")
	}
	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
}

func TestRetry_TransientThenSuccess(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrRateLimit{Err: errors.New("slow down")}},
		MockResponse{Text: "ok"},
	)
	p := WithRetry(mock, retryConfig(3), nil)

	resp, err := p.Generate(context.Background(), Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != "ok" {
		t.Errorf("Text = %q, want ok", resp.Text)
	}
	if mock.CallCount() != 2 {
		t.Errorf("expected 2 calls, got %d", mock.CallCount())
	}
}

func TestRetry_InvalidResponseNotRetried(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrInvalidResponse{Err: errors.New("empty")}},
		MockResponse{Text: "ok"},
	)
	p := WithRetry(mock, retryConfig(3), nil)

	_, err := p.Generate(context.Background(), Request{})
	var invalid *ErrInvalidResponse
	if !errors.As(err, &invalid) {
		t.Fatalf("error = %v, want ErrInvalidResponse", err)
	}
	if mock.CallCount() != 1 {
		t.Errorf("expected 1 call, got %d", mock.CallCount())
	}
}

type recorder struct {
	events []store.LLMRequestEventData
	err    error
}

func (r *recorder) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	r.events = append(r.events, data)
	return r.err
}

func TestLoggingRecordsEvents(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Text: `{"questions":[]}`, Usage: Usage{InputTokens: 12, OutputTokens: 7}},
		MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}},
	)
	rec := &recorder{err: errors.New("disk full")}
	p := WithLogging(mock, "mock", rec, nil)

	ctx := WithPurpose(context.Background(), "question-gen")
	if _, err := p.Generate(ctx, Request{System: "sys", Prompt: "make questions", JSONMode: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := p.Generate(ctx, Request{Prompt: "again"}); err == nil {
		t.Fatal("expected error from second call")
	}

	if len(rec.events) != 2 {
		t.Fatalf("recorded %d events, want 2", len(rec.events))
	}
	first := rec.events[0]
	if !first.Success || first.Purpose != "question-gen" || first.InputTokens != 12 {
		t.Errorf("first event = %+v", first)
	}
	if first.ResponseBody != `{"questions":[]}` {
		t.Errorf("ResponseBody = %q", first.ResponseBody)
	}
	second := rec.events[1]
	if second.Success || second.ErrorMessage == "" {
		t.Errorf("second event = %+v, want failure", second)
	}
}

func TestPurposeDefault(t *testing.T) {
	if got := PurposeFrom(context.Background()); got != PurposeUnknown {
		t.Errorf("PurposeFrom = %q, want %q", got, PurposeUnknown)
	}

	ctx := DefaultPurpose(context.Background(), PurposeQuestions)
	if got := PurposeFrom(ctx); got != PurposeQuestions {
		t.Errorf("DefaultPurpose on bare ctx = %q, want %q", got, PurposeQuestions)
	}

	ctx = DefaultPurpose(WithPurpose(context.Background(), PurposePreview), PurposeQuestions)
	if got := PurposeFrom(ctx); got != PurposePreview {
		t.Errorf("DefaultPurpose kept %q, want %q", got, PurposePreview)
	}
}

var batchSchema = &Schema{
	Name: "test-batch",
	Definition: map[string]any{
		"type":     "object",
		"required": []any{"items"},
		"properties": map[string]any{
			"items": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items":    map[string]any{"type": "string"},
			},
		},
	},
}

func TestValidateJSON(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", `{"items":["a"]}`, false},
		{"not json", `Sure! here you go`, true},
		{"missing field", `{"other":1}`, true},
		{"empty array", `{"items":[]}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateJSON(batchSchema, []byte(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateJSON err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var invalid *ErrInvalidResponse
				if !errors.As(err, &invalid) {
					t.Errorf("error type = %T, want *ErrInvalidResponse", err)
				}
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     func() Config
		wantErr bool
	}{
		{"none", DefaultConfig, false},
		{"mock", func() Config { c := DefaultConfig(); c.Provider = "mock"; return c }, false},
		{"anthropic without key", func() Config { c := DefaultConfig(); c.Provider = "anthropic"; return c }, true},
		{"openrouter with key", func() Config {
			c := DefaultConfig()
			c.Provider = "openrouter"
			c.OpenRouter.APIKey = "k"
			return c
		}, false},
		{"unknown", func() Config { c := DefaultConfig(); c.Provider = "llama"; return c }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg().Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigFromEnv(t *testing.T) {
	for _, k := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(k, "")
	}
	t.Setenv("QUIZRACE_LLM_PROVIDER", "openai")
	t.Setenv("QUIZRACE_OPENAI_API_KEY", "sk-test")
	t.Setenv("QUIZRACE_LLM_TIMEOUT", "5s")

	cfg := ConfigFromEnv()
	if cfg.Provider != "openai" || cfg.OpenAI.APIKey != "sk-test" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", cfg.Timeout)
	}
	if cfg.Retry.MaxAttempts != 1 {
		t.Errorf("MaxAttempts = %d, want 1", cfg.Retry.MaxAttempts)
	}
}

func TestNewProviderMockAndNone(t *testing.T) {
	cfg := DefaultConfig()
	if _, err := NewProvider(context.Background(), cfg, nil, nil); err == nil {
		t.Error("expected error for provider none")
	}

	cfg.Provider = "mock"
	p, err := NewProvider(context.Background(), cfg, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "mock" {
		t.Errorf("ModelID = %q, want mock", p.ModelID())
	}
}

func TestLookupCost(t *testing.T) {
	if LookupCost("gpt-4o-mini") == nil {
		t.Error("expected pricing for gpt-4o-mini")
	}
	if LookupCost("openai/gpt-4o-mini") == nil {
		t.Error("expected pricing for vendor-prefixed id")
	}
	if LookupCost("unknown-model") != nil {
		t.Error("expected nil for unknown model")
	}
	c := ModelCost{InputPerMTok: 1, OutputPerMTok: 2}
	if got := c.Cost(1_000_000, 500_000); got != 2 {
		t.Errorf("Cost = %v, want 2", got)
	}
}

func TestModelMapping(t *testing.T) {
	tests := []struct {
		in, want string
		models   map[string]string
	}{
		{"gemini-flash", "gemini-2.0-flash", geminiModels},
		{"claude-haiku", "claude-haiku-4-5-20251001", anthropicModels},
		{"gpt-4.1-nano", "gpt-4.1-nano", openaiModels},
	}
	for _, tt := range tests {
		if got := resolveModel(tt.in, tt.models); got != tt.want {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
