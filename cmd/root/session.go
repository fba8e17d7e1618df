package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kimi-cli/kimi/pkg/paths"
	"github.com/kimi-cli/kimi/pkg/session"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage sessions of the current work directory",
	}
	cmd.AddCommand(newSessionNewCmd(), newSessionLastCmd())
	return cmd
}

func newSessionNewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new",
		Short: "Start a new session for the current work directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			workDir, err := os.Getwd()
			if err != nil {
				return err
			}
			s, err := session.Create(paths.DataDir(), workDir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", s.ID, s.WireFile)
			return nil
		},
	}
}

func newSessionLastCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "last",
		Short: "Show the latest session of the current work directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			workDir, err := os.Getwd()
			if err != nil {
				return err
			}
			s, err := session.Continue(paths.DataDir(), workDir)
			if err != nil {
				return err
			}
			if s == nil {
				return fmt.Errorf("no session recorded for %s", workDir)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", s.ID, s.WireFile)
			return nil
		},
	}
}
