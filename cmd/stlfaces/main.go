package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/philipparndt/stlfaces/internal/config"
	"github.com/philipparndt/stlfaces/version"
	"github.com/spf13/cobra"
)

var (
	configFile string
	logLevel   string
	maxSteps   int

	cfg    = config.Default()
	logger = slog.Default()
)

var rootCmd = &cobra.Command{
	Use:   "stlfaces",
	Short: "Recover planar faces and outlines from STL meshes",
	Long: `stlfaces imports STL (or OpenSCAD) models, merges coincident points,
builds the edge graph with bending angles and groups triangles into planar
surfaces with their outline loops.`,
	Version:           version.GetFullVersion(),
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().IntVar(&maxSteps, "max-steps", 0, "Step budget for each loop search")
}

// setup loads the configuration, applies flag overrides and installs the logger
func setup(cmd *cobra.Command, args []string) error {
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("max-steps") {
		cfg.Loops.MaxSteps = maxSteps
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
