package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"
	"github.com/toon-format/toon-go"
)

func listCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Print all keys and values",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			var d []byte
			switch format {
			case "text":
				d = s.Snapshot()
			case "json":
				m := map[string]string{}
				for k, v := range s.All() {
					m[k] = v
				}
				d, err = json.Marshal(m)
				if err != nil {
					return err
				}
				d = pretty.Pretty(d)
			case "toon":
				m := map[string]any{}
				for k, v := range s.All() {
					m[k] = v
				}
				d, err = toon.Marshal(m)
				if err != nil {
					return err
				}
				if len(d) > 0 && d[len(d)-1] != '\n' {
					d = append(d, '\n')
				}
			default:
				return fmt.Errorf("unknown format '%s', must be text, json or toon", format)
			}
			_, err = out.Write(d)
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text, json or toon")
	return cmd
}
