// Package cli wires the queuectl cobra commands to the HTTP client.
package cli

import (
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/joshu-sajeev/queuectl/internal/client"
	"github.com/spf13/cobra"
)

const serverEnv = "QUEUECTL_SERVER"

var outputFormats = []string{"table", "json", "yaml"}

type options struct {
	server string
	output string
	out    io.Writer
}

func (o *options) client() *client.Client {
	return client.New(o.server, nil)
}

// NewRootCmd builds the queuectl command tree writing results to out.
func NewRootCmd(out io.Writer) *cobra.Command {
	opts := &options{out: out}

	rootCmd := &cobra.Command{
		Use:           "queuectl",
		Short:         "A CLI for the job queue server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(outputFormats, opts.output) {
				return fmt.Errorf("invalid --output %q, want one of %v", opts.output, outputFormats)
			}
			return nil
		},
	}
	rootCmd.SetOut(out)

	server := os.Getenv(serverEnv)
	if server == "" {
		server = client.DefaultServer
	}
	rootCmd.PersistentFlags().StringVar(&opts.server, "server", server, "API server address (env "+serverEnv+")")
	rootCmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "table", "Output format: table, json or yaml")

	rootCmd.AddCommand(EnqueueCmd(opts))
	rootCmd.AddCommand(StatusCmd(opts))
	rootCmd.AddCommand(ListCmd(opts))
	rootCmd.AddCommand(JobCmd(opts))
	rootCmd.AddCommand(WorkerCmd(opts))
	rootCmd.AddCommand(DlqCmd(opts))
	rootCmd.AddCommand(ConfigCmd(opts))

	return rootCmd
}
