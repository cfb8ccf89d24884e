package main

import (
	"io"
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"modcompat/internal/config"
	"modcompat/internal/errors"
	"modcompat/internal/slogutil"
	"modcompat/internal/version"
)

var (
	rootDir   string
	verbosity int
	quiet     bool
	noColor   bool
)

// app is the state PersistentPreRunE prepares for every command.
var app struct {
	cfg    *config.Config
	logger *slog.Logger
	closer io.Closer
}

var rootCmd = &cobra.Command{
	Use:   "modcompat",
	Short: "modcompat - binary and source compatibility checks for Java modules",
	Long: `modcompat compares two versions of a Java module, described by snapshot
manifests, and reports every change to its exported API together with its
binary, source and semantic versioning impact.`,
	Version:           version.Info(),
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.SetVersionTemplate(version.Full() + "\n")
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", ".", "Project root holding .modcompat/config.json")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase log verbosity (-v info, -vv debug)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Silence all logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable coloured output")
}

// closeLog releases the log file, if any. Cobra skips post-run hooks when a
// command fails, so main calls this after Execute.
func closeLog() {
	if app.closer != nil {
		_ = app.closer.Close()
		app.closer = nil
	}
}

// setup loads configuration and builds the logger. CLI verbosity flags win
// over logging.level.
func setup(cmd *cobra.Command, args []string) error {
	if noColor {
		color.NoColor = true
	}
	cfg, err := config.LoadConfig(rootDir)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return errors.New(errors.ConfigInvalid, "invalid configuration", err)
	}

	opts := cfg.LogOptions()
	if verbosity > 0 || quiet {
		opts.Level = slogutil.LevelFromVerbosity(verbosity, quiet)
	}
	logger, closer, err := slogutil.Setup(cmd.ErrOrStderr(), opts)
	if err != nil {
		return errors.New(errors.ConfigInvalid, "configuring logging", err)
	}

	app.cfg, app.logger, app.closer = cfg, logger, closer
	return nil
}
