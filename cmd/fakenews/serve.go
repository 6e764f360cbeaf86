package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/thinkscotty/fakenews/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the pipeline over an HTTP JSON API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		if cfg.LogLevel() > slog.LevelDebug {
			gin.SetMode(gin.ReleaseMode)
		}

		deps := server.Deps{
			Extractor:       a.extractor,
			Writer:          a.client,
			Runner:          a.pipeline,
			Model:           cfg.LLM.Model,
			StructuredModel: cfg.StructuredModelOrSmall(),
		}
		if a.db != nil {
			deps.History = a.db
		}
		srv := server.New(cfg.Server, deps, version, buildTime)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigCh
			slog.Info("Shutting down...")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(ctx)
		}()

		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}
