package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"task-manager/internal/config"
	"task-manager/internal/server"
	"task-manager/internal/service"
)

const sweepTimeout = 5 * time.Minute

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "taskmanager",
		Short:         "Task manager REST API",
		Long:          "Serves the task manager API: accounts, categories, tasks, spreadsheet import and profile pictures.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API (default)",
			RunE:  runServe,
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create or update the database schema and exit",
			RunE:  runMigrate,
		},
		&cobra.Command{
			Use:   "sweep-uploads",
			Short: "Delete uploaded pictures no user references",
			RunE:  runSweep,
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "taskmanager version %s (%s %s/%s)\n",
					server.Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
			},
		},
	)
	return root
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := cfg.RequireSecret(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.close()

	scheduler := service.NewSchedulerService(time.Local)
	scheduled, err := scheduler.Schedule(cfg.SweepAt, cfg.SweepInterval, a.janitor.Job(sweepTimeout))
	if err != nil {
		return fmt.Errorf("schedule upload sweep: %w", err)
	}
	if scheduled {
		scheduler.Start()
		defer scheduler.Stop()
	}

	log.Println("Task manager API started.")
	if err := a.server.Run(ctx, cfg.ListenAddr); err != nil {
		return err
	}
	log.Println("Shutdown complete.")
	return nil
}

func runMigrate(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	// Opening the database runs the migrations.
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	a.close()
	log.Printf("[info] schema up to date in %s", cfg.DatabaseURL)
	return nil
}

func runSweep(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := context.WithTimeout(cmd.Context(), sweepTimeout)
	defer cancel()
	removed, err := a.janitor.Sweep(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "removed %d orphaned upload(s)\n", removed)
	return nil
}
