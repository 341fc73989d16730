package cli

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"edfrt/internal/sched"
)

var errInfeasible = errors.New("task set is not EDF-schedulable")

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check the task set against the EDF utilization bound",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, t := range cfg.Tasks {
				fmt.Fprintf(out, "%-8s period=%-5d deadline=%-5d cost=%d\n", t.Name, t.Period, t.Deadline, t.Cost)
			}
			fmt.Fprintf(out, "utilization=%.3f density=%.3f\n", sched.Utilization(cfg.Tasks), sched.Density(cfg.Tasks))
			if !sched.Feasible(cfg.Tasks) {
				return errInfeasible
			}
			fmt.Fprintln(out, "feasible")
			return nil
		},
	}
}
