package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"edfrt/internal/app"
	"edfrt/internal/report"
	"edfrt/internal/sched"
)

func newRunCmd() *cobra.Command {
	var (
		ticks    int
		realtime bool
		csvPath  string
		httpAddr string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the task set and print telemetry",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("ticks") {
				cfg.RunTicks = ticks
			}
			if cmd.Flags().Changed("realtime") {
				cfg.Realtime = realtime
			}
			if csvPath != "" {
				cfg.CSV = csvPath
			}
			if httpAddr != "" {
				cfg.HTTPAddr = httpAddr
			}

			runID := uuid.New().String()
			log := logger.With("run_id", runID)
			s := sched.New(cfg, log)
			if cfg.CSV != "" {
				if err := s.EnableCSVLogging(cfg.CSV, runID); err != nil {
					return err
				}
			}
			if _, err := app.Build(s, cfg, cmd.OutOrStdout()); err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			var runErr error
			if cfg.Realtime {
				srv := startTelemetry(cfg.HTTPAddr, s)
				runErr = s.RunRealtime(ctx, cfg, cfg.RunTicks)
				if srv != nil {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
					_ = srv.Shutdown(shutdownCtx)
					cancel()
				}
			} else {
				runErr = s.Run(ctx, cfg.RunTicks)
			}
			if err := s.Stop(); err != nil && runErr == nil {
				runErr = err
			}

			colorize := false
			if f, ok := cmd.OutOrStdout().(interface{ Fd() uintptr }); ok {
				colorize = isatty.IsTerminal(f.Fd())
			}
			if err := report.WriteText(cmd.OutOrStdout(), s.Snapshot(), colorize); err != nil {
				return err
			}
			if errors.Is(runErr, context.Canceled) {
				return nil
			}
			return runErr
		},
	}

	cmd.Flags().IntVar(&ticks, "ticks", 0, "Ticks to run (overrides run_ticks)")
	cmd.Flags().BoolVar(&realtime, "realtime", false, "Pace ticks with a wall-clock timer at tick_hz")
	cmd.Flags().StringVar(&csvPath, "csv", "", "Write scheduler events to this CSV file")
	cmd.Flags().StringVar(&httpAddr, "http", "", "Serve telemetry on this address (realtime only)")

	return cmd
}

func startTelemetry(addr string, s *sched.Scheduler) *http.Server {
	if addr == "" {
		return nil
	}
	srv := &http.Server{Addr: addr, Handler: report.NewHandler(s)}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("telemetry server failed", "addr", addr, "error", err)
		}
	}()
	logger.Info("telemetry listening", "addr", addr)
	return srv
}
