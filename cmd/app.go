package main

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lowaak/interval-timer/internal/config"
	"github.com/lowaak/interval-timer/internal/library"
	"github.com/lowaak/interval-timer/internal/store"
)

// uiLogCapacity bounds the lines waiting for the UI log pane
const uiLogCapacity = 256

// app holds what every command needs: config, logger and the workout store
type app struct {
	cfg       *config.Config
	logger    *log.Logger
	logCloser io.Closer
	uiLog     *config.LineWriter
	store     *store.Store
	workouts  *store.WorkoutRepository
}

// newApp loads config, opens the log and the store, and seeds the sample
// workouts into an empty store. withUILog tees the log into a line channel
// for the terminal UI.
func newApp(ctx context.Context, cmd *cobra.Command, withUILog bool) (*app, error) {
	configFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(viper.New(), configFile, cmd.Flags())
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg}
	var extra io.Writer
	if withUILog {
		a.uiLog = config.NewLineWriter(uiLogCapacity)
		extra = a.uiLog
	}
	a.logger, a.logCloser, err = config.NewLogger(cfg.Log, extra)
	if err != nil {
		return nil, fmt.Errorf("opening log: %w", err)
	}

	a.store, err = store.Open(cfg.Store.Path, a.logger)
	if err != nil {
		a.logCloser.Close()
		return nil, err
	}
	a.workouts = store.NewWorkoutRepository(a.store, a.logger)

	if _, err := library.Seed(ctx, a.workouts, a.logger); err != nil {
		a.logger.Warnf("Seeding sample workouts failed: %v", err)
	}
	return a, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.logger.Errorf("Closing store: %v", err)
	}
	a.logCloser.Close()
}
