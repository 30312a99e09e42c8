package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit int       // max results (0 = unlimited)
	After int64     // sequence > After
	From  time.Time // timestamp >= From
	To    time.Time // timestamp <= To

	// SubjectID and LessonID narrow game event queries. Zero values match all.
	SubjectID string
	LessonID  int

	// Purpose and FailedOnly narrow LLM event queries.
	Purpose    string
	FailedOnly bool
}

// LLMRequestEventData captures a single text-generation call.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored LLM request event.
type LLMEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// PurposeUsage aggregates LLM calls by purpose.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// ModelUsage aggregates LLM calls by model.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// GameEventData is the end-of-game record written by the analytics sink.
type GameEventData struct {
	SessionID         string
	SubjectID         string
	LessonID          int
	Practice          bool
	Score             int
	Points            int
	QuestionsAnswered int
	CorrectAnswers    int
	Lives             int
	Accuracy          float64
	Duration          time.Duration
	Difficulty        string
	LessonCompleted   bool
}

// GameEvent is a stored game event.
type GameEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	GameEventData
}

// EventRepo provides append and query access to the event log.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns LLM events, newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)

	// GetLLMEvent returns one event, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error)

	// LLMUsageByPurpose aggregates token usage per purpose.
	LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error)

	// LLMUsageByModel aggregates token usage per model.
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)

	// AppendGameEvent records a finished game.
	AppendGameEvent(ctx context.Context, data GameEventData) error

	// QueryGameEvents returns game events, newest first.
	QueryGameEvents(ctx context.Context, opts QueryOpts) ([]GameEvent, error)
}
