package commands

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kjk/plainkv/log"
	"github.com/spf13/cobra"
)

func eventsCmd(a *app) *cobra.Command {
	var last int
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Print changes logged to the events log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.LogDir == "" {
				return errors.New("no log directory, set --log-dir or log_dir in config")
			}
			events, err := log.ReadEvents(a.cfg.LogDir)
			if err != nil {
				return err
			}
			if last > 0 && len(events) > last {
				events = events[len(events)-last:]
			}
			out := cmd.OutOrStdout()
			for _, e := range events {
				ts := e.Timestamp.UTC().Format(time.DateTime)
				fmt.Fprintf(out, "%s %s\n", ts, e.Name)
				data := strings.TrimSuffix(e.Data, "\n")
				if data == "" {
					continue
				}
				for _, line := range strings.Split(data, "\n") {
					fmt.Fprintf(out, "  %s\n", line)
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&last, "last", "n", 0, "only show last n events")
	return cmd
}
