package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/abhisek/quizrace/internal/logging"
)

// TypeGameEnd is the asynq task type carrying a GameEndEvent.
const TypeGameEnd = "analytics:game_end"

const analyticsQueue = "analytics"

// AsynqSink enqueues events for a background worker.
type AsynqSink struct {
	client *asynq.Client
}

// NewAsynqSink connects to the redis instance backing the queue.
func NewAsynqSink(redisAddr string) *AsynqSink {
	return &AsynqSink{client: asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr})}
}

// NewTask builds the queue task for ev.
func NewTask(ev GameEndEvent) (*asynq.Task, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("marshal game end event: %w", err)
	}
	return asynq.NewTask(TypeGameEnd, payload), nil
}

func (s *AsynqSink) Track(ctx context.Context, ev GameEndEvent) error {
	task, err := NewTask(ev)
	if err != nil {
		return err
	}
	_, err = s.client.EnqueueContext(ctx, task,
		asynq.Queue(analyticsQueue),
		asynq.MaxRetry(3),
		asynq.Timeout(30*time.Second),
	)
	if err != nil {
		return fmt.Errorf("enqueue game end event: %w", err)
	}
	return nil
}

// Close releases the redis connection.
func (s *AsynqSink) Close() error {
	return s.client.Close()
}

// TaskHandler decodes queued events and forwards them to sink.
func TaskHandler(sink Sink) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var ev GameEndEvent
		if err := json.Unmarshal(task.Payload(), &ev); err != nil {
			return fmt.Errorf("decode %s payload: %w: %w", task.Type(), err, asynq.SkipRetry)
		}
		return sink.Track(ctx, ev)
	}
}

// RunWorker consumes queued events into sink until ctx is done.
func RunWorker(ctx context.Context, redisAddr string, sink Sink, logger *zap.Logger) error {
	logger = logging.OrNop(logger).Named("analytics-worker")
	srv := asynq.NewServer(asynq.RedisClientOpt{Addr: redisAddr}, asynq.Config{
		Concurrency: 2,
		Queues:      map[string]int{analyticsQueue: 1},
		Logger:      logger.Sugar(),
		ErrorHandler: asynq.ErrorHandlerFunc(func(_ context.Context, task *asynq.Task, err error) {
			logger.Warn("analytics task failed", zap.String("type", task.Type()), zap.Error(err))
		}),
	})

	mux := asynq.NewServeMux()
	mux.Handle(TypeGameEnd, TaskHandler(sink))
	if err := srv.Start(mux); err != nil {
		return fmt.Errorf("start analytics worker: %w", err)
	}
	<-ctx.Done()
	srv.Shutdown()
	return nil
}
