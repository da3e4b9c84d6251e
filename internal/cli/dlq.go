package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func DlqCmd(opts *options) *cobra.Command {
	dlqCmd := &cobra.Command{
		Use:   "dlq",
		Short: "Inspect and retry dead jobs",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List every DLQ entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := opts.client().ListDLQ(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to fetch dlq: %w", err)
			}
			return opts.render(entries, func(w *tabwriter.Writer) {
				fmt.Fprintln(w, "ID\tCOMMAND\tCREATED")
				for _, e := range entries {
					fmt.Fprintf(w, "%s\t%s\t%s\n", e.ID, e.Command, formatTime(e.CreatedAt))
				}
			})
		},
	}

	retryCmd := &cobra.Command{
		Use:   "retry <id>",
		Short: "Move a DLQ entry back into the queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := opts.client().RetryDLQ(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to retry job: %w", err)
			}
			return opts.render(job, func(w *tabwriter.Writer) {
				fmt.Fprintf(w, "Job %s moved back into the queue\n", job.ID)
			})
		},
	}

	dlqCmd.AddCommand(listCmd, retryCmd)
	return dlqCmd
}
