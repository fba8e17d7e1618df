package root

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kimi-cli/kimi/pkg/wire"
)

func newWireCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wire",
		Short: "Inspect wire recorder logs",
	}
	cmd.AddCommand(newWireInspectCmd())
	return cmd
}

func newWireInspectCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "inspect <wire.jsonl>",
		Short: "Pretty-print a recorded wire log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			entries, err := wire.ReadLog(data)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, entry := range entries {
				if asJSON {
					env, err := wire.Serialize(entry.Message)
					if err != nil {
						return err
					}
					line, err := json.Marshal(env)
					if err != nil {
						return err
					}
					fmt.Fprintln(out, string(line))
					continue
				}
				sec := int64(entry.Timestamp)
				nsec := int64((entry.Timestamp - float64(sec)) * 1e9)
				ts := time.Unix(sec, nsec).Format(time.RFC3339)
				fmt.Fprintf(out, "%s  %s  %+v\n", ts, entry.Message.MessageType(), entry.Message)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print one envelope per line instead of the readable form")
	return cmd
}
