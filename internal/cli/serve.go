package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/emberworks/rekindle/internal/pipeline"
	"github.com/emberworks/rekindle/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP status API server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	runners, err := buildRunners(cfg, db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v — ingestion endpoints disabled\n", err)
		runners = nil
	}

	// Periodic runs, if a schedule is configured.
	var sched *pipeline.Scheduler
	if cfg.Pipeline.Schedule != "" && len(runners) > 0 {
		sched, err = pipeline.NewScheduler(cfg.Pipeline.Schedule, runners...)
		if err != nil {
			return fmt.Errorf("parse schedule %q: %w", cfg.Pipeline.Schedule, err)
		}
		sched.Start()
		defer sched.Stop()
		fmt.Fprintf(os.Stderr, "  schedule: %s\n", cfg.Pipeline.Schedule)
	}

	srv := server.New(db, runners, VersionString())
	addr := cfg.ListenAddr()

	httpServer := &http.Server{
		Addr:    addr,
		Handler: srv,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		fmt.Fprintf(os.Stderr, "rekindle serving on %s\n", addr)
		fmt.Fprintf(os.Stderr, "  db: %s\n", db.Path)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "server error: %v\n", err)
			os.Exit(1)
		}
	}()

	<-done
	fmt.Fprintln(os.Stderr, "\nshutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return httpServer.Shutdown(ctx)
}
