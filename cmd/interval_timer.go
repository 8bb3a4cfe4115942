package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lowaak/interval-timer/internal/config"
)

// Version is set at build time with -ldflags "-X main.Version=..."
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "interval-timer",
	Short: "Play structured interval workouts for a whole room",
	Long: `interval-timer plays multi-section interval workouts: whole-room
same exercise, whole-room rotational, stations and get-it-done timers.
Workouts live in a local database and are imported from YAML files.`,
	SilenceUsage: true,
	Args:         cobra.MaximumNArgs(1),
	RunE:         runPlay,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "interval-timer %s\n", Version)
	},
}

func init() {
	config.BindFlags(rootCmd.PersistentFlags())
	rootCmd.AddCommand(playCmd, listCmd, showCmd, importCmd, deleteCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
