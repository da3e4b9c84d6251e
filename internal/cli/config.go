package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/joshu-sajeev/queuectl/internal/config"
	"github.com/spf13/cobra"
)

func ConfigCmd(opts *options) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Read or change max_retries and base_time",
	}

	setCmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("value must be an integer: %w", err)
			}

			s, err := opts.client().SetConfig(cmd.Context(), args[0], value)
			if err != nil {
				return fmt.Errorf("failed to update config: %w", err)
			}
			return opts.render(s, settingsTable(s))
		},
	}

	getCmd := &cobra.Command{
		Use:   "get",
		Short: "Show the current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.client().GetConfig(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to fetch config: %w", err)
			}
			return opts.render(s, settingsTable(s))
		},
	}

	configCmd.AddCommand(setCmd, getCmd)
	return configCmd
}

func settingsTable(s *config.Settings) func(w *tabwriter.Writer) {
	return func(w *tabwriter.Writer) {
		fmt.Fprintln(w, "KEY\tVALUE")
		fmt.Fprintf(w, "%s\t%d\n", config.KeyMaxRetries, s.MaxRetries)
		fmt.Fprintf(w, "%s\t%d\n", config.KeyBaseTime, s.BaseTime)
	}
}
