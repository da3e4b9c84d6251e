package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func WorkerCmd(opts *options) *cobra.Command {
	workerCmd := &cobra.Command{
		Use:   "worker",
		Short: "Manage the worker pool",
	}

	var count int
	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Start the worker pool, replacing a running one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := opts.client().StartWorkers(cmd.Context(), count)
			if err != nil {
				return fmt.Errorf("failed to start workers: %w", err)
			}
			return opts.render(st, workerTable(st))
		},
	}
	startCmd.Flags().IntVar(&count, "count", 0, "Number of workers (0 uses the server default)")

	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop dispatching new jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := opts.client().StopWorkers(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to stop workers: %w", err)
			}
			return opts.render(st, workerTable(st))
		},
	}

	var size int
	resizeCmd := &cobra.Command{
		Use:   "resize",
		Short: "Change the number of workers of the running pool",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := opts.client().ResizeWorkers(cmd.Context(), size)
			if err != nil {
				return fmt.Errorf("failed to resize workers: %w", err)
			}
			return opts.render(st, workerTable(st))
		},
	}
	resizeCmd.Flags().IntVar(&size, "count", 0, "New number of workers")
	_ = resizeCmd.MarkFlagRequired("count")

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show worker pool status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := opts.client().WorkerStatus(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to fetch worker status: %w", err)
			}
			return opts.render(st, workerTable(st))
		},
	}

	workerCmd.AddCommand(startCmd, stopCmd, resizeCmd, statusCmd)
	return workerCmd
}
