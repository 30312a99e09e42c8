package cmd

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/quizrace/internal/analytics"
	"github.com/abhisek/quizrace/internal/config"
	"github.com/abhisek/quizrace/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the game over HTTP and WebSocket",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		svc, err := newServices(ctx, cfg)
		if err != nil {
			return err
		}
		defer svc.Close()

		srv := server.New(cfg.Server, server.Deps{
			Engine:     svc.engine,
			Progress:   svc.progress,
			Curriculum: svc.curriculum,
			Metrics:    svc.metrics,
			Logger:     svc.logger,
		})

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error { return srv.ListenAndServe(ctx) })

		if worker, _ := cmd.Flags().GetBool("worker"); worker {
			sink := workerSink(svc)
			g.Go(func() error {
				return analytics.RunWorker(ctx, cfg.Analytics.AsynqAddr, sink, svc.logger)
			})
		}

		if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
			svc.logger.Error("server stopped", zap.Error(err))
			return err
		}
		return nil
	},
}

// workerSink is where queued events land: the log, plus the event table
// when sqlite is open.
func workerSink(svc *services) analytics.Sink {
	sinks := analytics.Multi{analytics.LogSink{Logger: svc.logger.Named("analytics")}}
	if svc.events != nil && svc.cfg.HasSink(config.SinkAsynq) {
		sinks = append(sinks, analytics.StoreSink{Repo: svc.events})
	}
	return sinks
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides QUIZRACE_ADDR)")
	serveCmd.Flags().Bool("worker", false, "Also consume queued analytics events from asynq")
}
