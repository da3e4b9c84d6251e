package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func EnqueueCmd(opts *options) *cobra.Command {
	var id, command string

	cmd := &cobra.Command{
		Use:   "enqueue",
		Short: "Submit a command for execution",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if id == "" {
				id = uuid.NewString()
			}

			job, err := opts.client().Enqueue(cmd.Context(), id, command)
			if err != nil {
				return fmt.Errorf("failed to enqueue job: %w", err)
			}

			return opts.render(job, func(w *tabwriter.Writer) {
				fmt.Fprintf(w, "Job %s enqueued (max_retries=%d, base_time=%d)\n",
					job.ID, job.MaxRetries, job.BaseTime)
			})
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "Job id (defaults to a new UUID)")
	cmd.Flags().StringVar(&command, "command", "", "Shell command to run")
	_ = cmd.MarkFlagRequired("command")
	return cmd
}

func StatusCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show every job",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			jobs, err := opts.client().Status(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to fetch jobs: %w", err)
			}
			return opts.render(jobs, jobsTable(jobs))
		},
	}
}

func ListCmd(opts *options) *cobra.Command {
	var state string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs, optionally filtered by state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := opts.client()
			if state == "" {
				jobs, err := c.Status(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to list jobs: %w", err)
				}
				return opts.render(jobs, jobsTable(jobs))
			}

			jobs, err := c.List(cmd.Context(), state)
			if err != nil {
				return fmt.Errorf("failed to list jobs: %w", err)
			}
			return opts.render(jobs, jobsTable(jobs))
		},
	}
	cmd.Flags().StringVar(&state, "state", "", "Filter by state (pending, processing, completed, failed)")
	return cmd
}

func JobCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "job <id>",
		Short: "Show one job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := opts.client().Job(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to fetch job: %w", err)
			}
			return opts.render(job, jobDetail(job))
		},
	}
}
