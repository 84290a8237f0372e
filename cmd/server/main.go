package main

import (
	"context"
	"log"
	"os"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/kdimtricp/formcheck/internal/app"
	"github.com/kdimtricp/formcheck/internal/config"
	"github.com/kdimtricp/formcheck/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	logger, err := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatal("Failed to initialize logger: ", err)
	}

	ctx := context.Background()
	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "startup failed", "error", err)
		os.Exit(1)
	}

	runCtx, stop := context.WithCancel(ctx)
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		if err := application.Run(runCtx); err != nil {
			logger.Error(ctx, "server stopped", "error", err)
			application.Close()
			os.Exit(1)
		}
	}()

	wait := gfshutdown.GracefulShutdown(ctx, cfg.ShutdownTimeout, map[string]gfshutdown.Operation{
		"formcheck": func(ctx context.Context) error {
			stop()
			select {
			case <-stopped:
			case <-ctx.Done():
				return ctx.Err()
			}
			return application.Close()
		},
	})

	exitCode := <-wait
	logger.Info(ctx, "server exited", "code", exitCode)
	os.Exit(exitCode)
}
