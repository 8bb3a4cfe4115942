package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/lowaak/interval-timer/internal/library"
	"github.com/lowaak/interval-timer/internal/workout"
)

var listTeam string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored workouts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, cmd, false)
		if err != nil {
			return err
		}
		defer a.close()

		var workouts []*workout.Workout
		if listTeam != "" {
			workouts, err = a.workouts.AssignedToTeam(ctx, listTeam)
		} else {
			workouts, err = a.workouts.List(ctx)
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		writeWorkoutTable(out, workouts)

		size := "new"
		if info, err := os.Stat(a.cfg.Store.Path); err == nil {
			size = humanize.Bytes(uint64(info.Size()))
		}
		fmt.Fprintf(out, "\n%d workouts in %s (%s)\n", len(workouts), a.cfg.Store.Path, size)
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <workout>",
	Short: "Show a workout's sections and timings by id or name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, cmd, false)
		if err != nil {
			return err
		}
		defer a.close()

		w, err := a.workouts.Resolve(ctx, args[0])
		if err != nil {
			return fmt.Errorf("workout %q: %w", args[0], err)
		}
		writeWorkoutDetails(cmd.OutOrStdout(), w)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file-or-dir>...",
	Short: "Import workouts from YAML files, replacing workouts with the same name",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, cmd, false)
		if err != nil {
			return err
		}
		defer a.close()

		importer := newImporter(a)
		out := cmd.OutOrStdout()
		var failed bool
		for _, path := range args {
			saved, err := importPath(ctx, importer, path)
			for _, w := range saved {
				fmt.Fprintf(out, "imported %q (%s, %s)\n", w.Name, w.ID, clock(w.TotalSeconds()))
			}
			if err != nil {
				failed = true
				fmt.Fprintf(cmd.ErrOrStderr(), "%v\n", err)
			}
		}
		if failed {
			return fmt.Errorf("some workouts were not imported")
		}
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <workout>",
	Short: "Delete a stored workout by id or name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, cmd, false)
		if err != nil {
			return err
		}
		defer a.close()

		w, err := a.workouts.Resolve(ctx, args[0])
		if err != nil {
			return fmt.Errorf("workout %q: %w", args[0], err)
		}
		if err := a.workouts.Delete(ctx, w.ID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %q\n", w.Name)
		return nil
	},
}

func init() {
	listCmd.Flags().StringVar(&listTeam, "team", "", "only workouts assigned to this team")
}

func newImporter(a *app) *library.Importer {
	return library.NewImporter(a.workouts, a.logger)
}

// importPath imports one file, or every workout file directly inside a directory
func importPath(ctx context.Context, im *library.Importer, path string) ([]*workout.Workout, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return im.ImportDir(ctx, path)
	}
	return im.ImportFile(ctx, path)
}

func clock(seconds int) string {
	return workout.DurationOf(seconds).String()
}

func writeWorkoutTable(out io.Writer, workouts []*workout.Workout) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSECTIONS\tDURATION")
	for _, w := range workouts {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", w.ID, w.Name, len(w.Sections()), clock(w.TotalSeconds()))
	}
	tw.Flush()
}

func writeWorkoutDetails(out io.Writer, w *workout.Workout) {
	fmt.Fprintf(out, "%s (%s)\n", w.Name, w.ID)
	if w.Description != "" {
		fmt.Fprintf(out, "%s\n", w.Description)
	}
	if len(w.AssignedTeams) > 0 {
		fmt.Fprintf(out, "teams: %s\n", strings.Join(w.AssignedTeams, ", "))
	}
	fmt.Fprintln(out)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tSECTION\tTYPE\tSETS\tDURATION")
	for i, s := range w.Sections() {
		name := s.Name
		if name == "" {
			name = "-"
		}
		sets := "-"
		if s.TimerType != workout.TimerTypeGetItDone {
			sets = fmt.Sprint(max(s.Config.Sets, 1))
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", i+1, name, s.TimerType.DisplayName(), sets, clock(s.TotalSeconds()))
	}
	fmt.Fprintf(tw, "\t\t\ttotal\t%s\n", clock(w.TotalSeconds()))
	tw.Flush()
}
