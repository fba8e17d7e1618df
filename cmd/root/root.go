// Package root assembles the kimi command tree.
package root

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/kimi-cli/kimi/pkg/logging"
	"github.com/kimi-cli/kimi/pkg/paths"
)

type rootFlags struct {
	debug   bool
	logFile io.Closer
}

func NewRootCmd() *cobra.Command {
	var flags rootFlags

	cmd := &cobra.Command{
		Use:           "kimi",
		Short:         "kimi - agent CLI substrate",
		Long:          "kimi wires an agent's event stream, tool calls and approvals together.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			closer, err := logging.Setup(paths.DataDir(), flags.debug)
			if err != nil {
				return err
			}
			flags.logFile = closer
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if flags.logFile != nil {
				flags.logFile.Close()
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().BoolVar(&flags.debug, "debug", false, "Enable debug logging")

	cmd.AddCommand(
		newVersionCmd(),
		newWireCmd(),
		newMCPCmd(),
		newSessionCmd(),
	)
	return cmd
}
