package questiongen

import (
	"context"

	"go.uber.org/zap"

	"github.com/abhisek/quizrace/internal/logging"
)

// SourceRecorder observes which step of the chain served each batch.
type SourceRecorder interface {
	QuestionsGenerated(source string, n int)
}

// Chain tries the primary generator and falls back to the bank when it is
// missing, fails, or returns nothing usable.
type Chain struct {
	primary  Generator
	fallback *FallbackBank
	recorder SourceRecorder
	logger   *zap.Logger
}

// NewChain builds a chain. primary and recorder may be nil.
func NewChain(primary Generator, fallback *FallbackBank, recorder SourceRecorder, logger *zap.Logger) *Chain {
	if fallback == nil {
		fallback = NewFallbackBank(nil)
	}
	return &Chain{
		primary:  primary,
		fallback: fallback,
		recorder: recorder,
		logger:   logging.OrNop(logger).Named("questiongen"),
	}
}

// Generate never returns an error unless ctx is already done.
func (c *Chain) Generate(ctx context.Context, req Request) (Batch, error) {
	if c.primary != nil {
		batch, err := c.primary.Generate(ctx, req)
		if err == nil && len(batch.Questions) > 0 {
			c.record(batch)
			return batch, nil
		}
		c.logger.Warn("question generation failed, using fallback bank",
			zap.String("category", req.Category),
			zap.String("difficulty", string(req.Difficulty)),
			zap.Error(err),
		)
	}
	if err := ctx.Err(); err != nil {
		return Batch{}, err
	}

	batch, err := c.fallback.Generate(ctx, req)
	if err != nil {
		return Batch{}, err
	}
	c.record(batch)
	return batch, nil
}

func (c *Chain) record(b Batch) {
	if c.recorder != nil {
		c.recorder.QuestionsGenerated(string(b.Source), len(b.Questions))
	}
}
