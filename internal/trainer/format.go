package trainer

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/lowaak/interval-timer/internal/timer"
	"github.com/lowaak/interval-timer/internal/workout"
)

// formatClock formats seconds as MM:SS, or H:MM:SS from an hour up
func formatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h, m, s := seconds/3600, seconds%3600/60, seconds%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// formatSetLabel returns e.g. "2nd set of 3"; single-set sections have no label
func formatSetLabel(set, sets int) string {
	if sets <= 1 {
		return ""
	}
	return fmt.Sprintf("%s set of %d", humanize.Ordinal(set), sets)
}

// formatRotationLabel returns e.g. "1st rotation of 4" for a zero-based rotation
func formatRotationLabel(rotation, rotations int) string {
	if rotations <= 1 {
		return ""
	}
	return fmt.Sprintf("%s rotation of %d", humanize.Ordinal(rotation+1), rotations)
}

// progressBar renders elapsed/total as a bar of width cells
func progressBar(elapsed, total, width int) string {
	filled := 0
	if total > 0 {
		filled = min(max(elapsed*width/total, 0), width)
	}
	return "[green]" + strings.Repeat("█", filled) + "[gray]" + strings.Repeat("░", width-filled) + "[white]"
}

// formatWorkoutSummary is the secondary line of a workout in the list
func formatWorkoutSummary(w *workout.Workout) string {
	sections := w.Sections()
	types := make([]string, 0, len(sections))
	seen := make(map[workout.TimerType]bool)
	for _, s := range sections {
		if !seen[s.TimerType] {
			seen[s.TimerType] = true
			types = append(types, s.TimerType.DisplayName())
		}
	}
	return fmt.Sprintf("%s  %s", formatClock(w.TotalSeconds()), strings.Join(types, ", "))
}

// formatWorkoutDetails renders the details panel for w
func formatWorkoutDetails(w *workout.Workout) string {
	if w == nil {
		text := "\n\n  [yellow]Workout Selection[white]\n\n"
		text += "  No workouts yet. Drop YAML files into the library\n"
		text += "  directory or run [yellow]interval-timer import[white].\n"
		return text
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n  [yellow]%s[white]\n", w.Name)
	if w.Description != "" {
		fmt.Fprintf(&b, "  [gray]%s[white]\n", w.Description)
	}
	fmt.Fprintf(&b, "\n  [gray]Duration:[white] %s\n\n", formatClock(w.TotalSeconds()))

	for i, s := range w.Sections() {
		name := s.Name
		if name == "" {
			name = fmt.Sprintf("%s %d", s.TimerType.DisplayName(), i+1)
		}
		fmt.Fprintf(&b, "  %d. [cyan]%s[white] [gray](%s, %s)[white]\n", i+1, name, s.TimerType.DisplayName(), formatClock(s.TotalSeconds()))
		for _, line := range sectionOutline(s) {
			fmt.Fprintf(&b, "       %s\n", line)
		}
	}
	b.WriteString("\n  [green]Press Enter to load this workout[white]\n")
	return b.String()
}

func sectionOutline(s workout.Section) []string {
	c := s.Config
	var lines []string
	switch s.TimerType {
	case workout.TimerTypeGetItDone:
		lines = append(lines, fmt.Sprintf("%s on the clock", formatClock(c.TotalTime.TotalSeconds())))
		for _, ex := range c.Exercises {
			lines = append(lines, exerciseLine(ex))
		}
	case workout.TimerTypeStations:
		lines = append(lines, fmt.Sprintf("%d sets, %s work / %s rest", max(c.Sets, 1), c.WorkTime, c.RestTime))
		if c.RotateStations {
			lines = append(lines, fmt.Sprintf("groups rotate through %d stations", len(c.Stations)))
		}
		for i, st := range c.Stations {
			name := st.Name
			if name == "" {
				name = fmt.Sprintf("Station %d", i+1)
			}
			names := make([]string, 0, len(st.Exercises))
			for _, ex := range st.Exercises {
				names = append(names, ex.Name)
			}
			lines = append(lines, fmt.Sprintf("%s: %s", name, strings.Join(names, ", ")))
		}
	default:
		lines = append(lines, fmt.Sprintf("%d sets, %s work / %s rest", max(c.Sets, 1), c.WorkTime, c.RestTime))
		for _, ex := range c.Exercises {
			lines = append(lines, exerciseLine(ex))
		}
	}
	return lines
}

func exerciseLine(ex workout.Exercise) string {
	line := ex.Name
	if ex.Reps != "" {
		line += fmt.Sprintf(" x %s", ex.Reps)
	}
	if ex.Color != "" {
		line += fmt.Sprintf(" [gray](%s)[white]", ex.Color)
	}
	return line
}

// formatClockFace renders the main timer panel
func formatClockFace(state timer.PlayerState) string {
	if state.Status == timer.PlayerStatusIdle || state.Workout == nil {
		text := "\n  [gray]No workout loaded[white]\n\n"
		text += "  Go to Workout Selection (press 1) to load a workout.\n"
		return text
	}

	snap := state.Snapshot
	sec := snap.Section
	color := phaseColor(sec.Phase)

	var b strings.Builder
	fmt.Fprintf(&b, "\n  [yellow]%s[white]", snap.WorkoutName)
	if state.Status == timer.PlayerStatusPaused {
		b.WriteString(" [gray](PAUSED)[white]")
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "  [gray]Section %d/%d:[white] %s [gray](%s)[white]\n\n", snap.SectionIndex+1, snap.SectionCount, sec.SectionName, sec.TimerType.DisplayName())

	fmt.Fprintf(&b, "  [%s::b]%s[white::-]\n", color, strings.ToUpper(sec.Phase.DisplayName()))
	if sec.Phase != timer.PhaseComplete {
		fmt.Fprintf(&b, "  [%s::b]%s[white::-]\n", color, formatClock(sec.TimeRemaining))
	}
	if label := formatSetLabel(sec.CurrentSet, sec.Sets); label != "" {
		fmt.Fprintf(&b, "  [gray]%s[white]\n", label)
	}
	if label := formatRotationLabel(sec.StationRotation, sec.Rotations); label != "" {
		fmt.Fprintf(&b, "  [gray]%s[white]\n", label)
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "  %s\n", progressBar(snap.Elapsed, snap.Total, progressBarWidth))
	fmt.Fprintf(&b, "  [gray]Elapsed:[white]   %s / %s\n", formatClock(snap.Elapsed), formatClock(snap.Total))
	fmt.Fprintf(&b, "  [gray]Remaining:[white] %s\n", formatClock(snap.Remaining()))

	b.WriteString("\n  [gray]Next:[white] ")
	b.WriteString(formatNextUp(snap))
	b.WriteString("\n")

	b.WriteString("\n  [gray]─────────────────────────[white]\n")
	switch state.Status {
	case timer.PlayerStatusRunning:
		b.WriteString("  [yellow]Space[white] Pause  |  [yellow]←/→[white] Scrub  |  [yellow]X[white] Stop\n")
	case timer.PlayerStatusComplete:
		b.WriteString("  [green]Workout complete![white]  [yellow]Space[white] Again  |  [yellow]X[white] Close\n")
	default:
		b.WriteString("  [yellow]Space[white] Start  |  [yellow]←/→[white] Scrub  |  [yellow]R[white] Restart  |  [yellow]X[white] Stop\n")
	}
	return b.String()
}

func formatNextUp(snap timer.WorkoutSnapshot) string {
	sec := snap.Section
	switch {
	case sec.Phase == timer.PhaseComplete && snap.NextSection == "":
		return "[green]Finished[white]"
	case sec.NextPhase == timer.PhaseComplete && snap.NextSection != "":
		return snap.NextSection
	case sec.NextPhase == timer.PhaseComplete:
		return "[green]Finish![white]"
	}
	next := fmt.Sprintf("%s %s", sec.NextPhase.DisplayName(), formatClock(sec.NextDuration))
	if sec.NextExerciseName != "" {
		next += " - " + sec.NextExerciseName
	}
	return next
}

// formatExerciseBoard renders what every group or station is doing
func formatExerciseBoard(state timer.PlayerState) string {
	if state.Workout == nil {
		return ""
	}
	sec := state.Snapshot.Section
	var b strings.Builder
	b.WriteString("\n")
	for _, ex := range sec.Exercises {
		b.WriteString("  ")
		if ex.Label != "" {
			fmt.Fprintf(&b, "[cyan]%s:[white] ", ex.Label)
		}
		if ex.Idle {
			b.WriteString("[gray]idle[white]\n")
			continue
		}
		fmt.Fprintf(&b, "[::b]%s[::-]", ex.Name)
		if ex.Reps != "" {
			fmt.Fprintf(&b, " x %s", ex.Reps)
		}
		b.WriteString("\n")
		if ex.Notes != "" {
			fmt.Fprintf(&b, "    [gray]%s[white]\n", ex.Notes)
		}
	}
	return b.String()
}
