package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rivo/tview"
	"github.com/spf13/cobra"

	"github.com/lowaak/interval-timer/internal/cue"
	"github.com/lowaak/interval-timer/internal/library"
	"github.com/lowaak/interval-timer/internal/timer"
	"github.com/lowaak/interval-timer/internal/trainer"
)

var playCmd = &cobra.Command{
	Use:   "play [workout]",
	Short: "Open the timer, optionally loading a workout by id or name",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPlay,
}

func runPlay(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	a, err := newApp(ctx, cmd, true)
	if err != nil {
		return err
	}
	defer a.close()
	logger := a.logger

	importer := newImporter(a)
	if err := os.MkdirAll(a.cfg.Library.Dir, 0o755); err != nil {
		logger.Warnf("Library directory unavailable: %v", err)
	} else if _, err := importer.ImportDir(ctx, a.cfg.Library.Dir); err != nil {
		logger.Warnf("Library import: %v", err)
	}

	emitter := cue.NewBestEffort(a.cfg.Audio.Enabled, cue.Options{
		SampleRate: a.cfg.Audio.SampleRate,
		Volume:     a.cfg.Audio.Volume,
	}, logger)

	player := timer.NewPlayer(timer.NewPlayerArg{
		Emitter:      emitter,
		Logger:       logger,
		TickInterval: a.cfg.Player.TickInterval,
	})

	model := trainer.NewUIModel(trainer.NewUIModelArg{
		Player:    player,
		Logger:    logger,
		UILogChan: a.uiLog.Lines(),
		StatePath: trainer.DefaultUIStatePath(),
	})
	defer model.Shutdown()

	controller := trainer.NewUIController(trainer.NewUIControllerArg{
		Model:     model,
		Player:    player,
		Workouts:  a.workouts,
		ScrubStep: a.cfg.Player.ScrubStep,
		Logger:    logger,
	})
	defer controller.Shutdown()

	view := trainer.NewBaseUIView(trainer.NewBaseUIViewArg{
		UIViewImpl:   trainer.NewCursesUIView(logger, tview.NewApplication()),
		UIModel:      model,
		UIController: controller,
		Logger:       logger,
	})
	defer view.Shutdown()

	if a.cfg.Library.Watch {
		watcher, err := library.NewWatcher(a.cfg.Library.Dir, importer, a.cfg.Library.Debounce, logger)
		if err != nil {
			logger.Warnf("Library watch unavailable: %v", err)
		} else {
			defer watcher.Close()
			watcher.ListenToImports(func(library.ImportResult) { controller.RefreshWorkouts() })
			if err := watcher.Start(ctx); err != nil {
				logger.Warnf("Library watch unavailable: %v", err)
			}
		}
	}

	controller.RefreshWorkouts()
	if len(args) == 1 {
		if err := selectWorkout(ctx, a, model, controller, args[0]); err != nil {
			return err
		}
	}

	logger.Info("Ready - pick a workout and press Enter")
	return view.Run()
}

// selectWorkout loads the workout named by id or name before the UI starts
func selectWorkout(ctx context.Context, a *app, model *trainer.UIModel, controller *trainer.UIController, idOrName string) error {
	w, err := a.workouts.Resolve(ctx, idOrName)
	if err != nil {
		return fmt.Errorf("workout %q: %w", idOrName, err)
	}
	for i, listed := range model.GetWorkouts() {
		if listed.ID == w.ID {
			controller.OnWorkoutSelected(i)
			return nil
		}
	}
	return nil
}
