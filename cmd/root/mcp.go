package root

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/kimi-cli/kimi/pkg/approval"
	"github.com/kimi-cli/kimi/pkg/toolset"
)

func newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Work with MCP server configs",
	}
	cmd.AddCommand(newMCPToolsCmd())
	return cmd
}

func newMCPToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools <config>",
		Short: "Connect the configured MCP servers and list their tools",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ts := toolset.New()
			defer ts.Close()
			if err := ts.LoadMCPConfig(cmd.Context(), args[0], approval.NewGate(approval.WithYOLO(true))); err != nil {
				return err
			}
			descriptors := ts.Descriptors()
			sort.Slice(descriptors, func(i, j int) bool { return descriptors[i].Name < descriptors[j].Name })
			out := cmd.OutOrStdout()
			for _, d := range descriptors {
				fmt.Fprintf(out, "%s\t%s\n", d.Name, d.Description)
			}
			return nil
		},
	}
}
