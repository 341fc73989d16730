package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"edfrt/internal/logging"
	"edfrt/internal/sched"
)

var (
	flagConfig    string
	flagDebug     bool
	flagLogLevel  string
	flagLogFormat string

	logger *slog.Logger
)

// NewRootCmd creates the root cobra command for edfsim.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "edfsim",
		Short: "EDF periodic task scheduler simulator",
		Long:  "edfsim runs a fixed periodic task set under an earliest-deadline-first kernel and reports per-task CPU usage.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagDebug {
				flagLogLevel = "debug"
			}
			logger = logging.NewLoggerWithWriter(logging.ParseLevel(flagLogLevel), flagLogFormat, cmd.ErrOrStderr())
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagConfig, "config", "config.yml", "Config file path")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")

	root.AddCommand(
		newRunCmd(),
		newCheckCmd(),
	)

	return root
}

func loadConfig() (sched.Config, error) {
	return sched.Load(flagConfig)
}
