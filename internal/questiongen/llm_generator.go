package questiongen

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/quizrace/internal/llm"
	"github.com/abhisek/quizrace/internal/logging"
	"github.com/abhisek/quizrace/internal/question"
)

// LLMGenerator implements Generator on top of an llm.Provider.
type LLMGenerator struct {
	provider llm.Provider
	config   Config
	ids      *question.IDSource
	logger   *zap.Logger
}

// New creates an LLMGenerator. ids assigns synthetic ids to generated
// questions and must be shared with any other generator feeding the same pool.
func New(provider llm.Provider, cfg Config, ids *question.IDSource, logger *zap.Logger) *LLMGenerator {
	if ids == nil {
		ids = question.NewIDSource()
	}
	return &LLMGenerator{
		provider: provider,
		config:   cfg,
		ids:      ids,
		logger:   logging.OrNop(logger).Named("questiongen"),
	}
}

// Generate makes one provider call and parses the reply. A reply that is
// not a valid batch is retried through the lenient parser before giving up.
func (g *LLMGenerator) Generate(ctx context.Context, req Request) (Batch, error) {
	ctx = llm.DefaultPurpose(ctx, llm.PurposeQuestions)
	if g.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.config.Timeout)
		defer cancel()
	}

	resp, err := g.provider.Generate(ctx, llm.Request{
		System:      systemPrompt,
		Prompt:      buildPrompt(req, g.config),
		JSONMode:    true,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	})
	if err != nil {
		var maxTok *llm.ErrMaxTokensExceeded
		if !errors.As(err, &maxTok) {
			return Batch{}, &GenerationError{Stage: "request", Err: err}
		}
		// A truncated reply may still hold complete questions.
		resp = &llm.Response{Text: maxTok.Text}
	}

	source := SourceLLMStrict
	raws, perr := parseStrict(resp.Text)
	if perr != nil {
		g.logger.Debug("strict parse failed, trying lenient", zap.Error(perr))
		source = SourceLLMLenient
		raws = parseLenient(resp.Text)
	}
	if len(raws) == 0 {
		return Batch{}, &GenerationError{Stage: "parse", Err: fmt.Errorf("no questions found in response")}
	}

	qs, lastErr := g.accept(raws, req)
	if len(qs) == 0 {
		return Batch{}, &GenerationError{Stage: "validate", Err: lastErr}
	}
	return Batch{Questions: qs, Source: source}, nil
}

// accept converts parsed items into questions, dropping anything that fails
// a validator or repeats a prompt within the batch.
func (g *LLMGenerator) accept(raws []rawQuestion, req Request) ([]question.Question, error) {
	var (
		out     []question.Question
		lastErr error
		seen    = make(map[string]bool)
	)
	for _, r := range raws {
		q := question.Question{
			Prompt:        r.Question,
			Options:       r.Options,
			CorrectAnswer: r.CorrectAnswer,
			Category:      req.Category,
			Difficulty:    req.Difficulty,
			LessonID:      req.LessonID,
			Lesson:        req.Lesson,
		}
		if rejected := g.runValidators(&q, req); rejected != nil {
			g.logger.Debug("dropping generated question", zap.String("question", q.Prompt), zap.Error(rejected))
			lastErr = rejected
			continue
		}
		key := normalize(q.Prompt)
		if seen[key] {
			continue
		}
		seen[key] = true

		q.ID = g.ids.Next()
		out = append(out, q)
		if req.Count > 0 && len(out) == req.Count {
			break
		}
	}
	if lastErr == nil && len(out) == 0 {
		lastErr = fmt.Errorf("all generated questions were duplicates")
	}
	return out, lastErr
}

func (g *LLMGenerator) runValidators(q *question.Question, req Request) *ValidationError {
	for _, v := range g.config.Validators {
		if verr := v.Validate(q, req); verr != nil {
			return verr
		}
	}
	return nil
}
