package commands

import (
	"fmt"
	"time"

	"github.com/kjk/plainkv/log"
	"github.com/kjk/plainkv/u"
	"github.com/spf13/cobra"
)

func backupsCmd(a *app) *cobra.Command {
	var rm bool
	cmd := &cobra.Command{
		Use:   "backups [PREFIX]",
		Short: "List backups in S3 storage",
		Long: `List backups in the configured S3 bucket whose path starts with PREFIX.
With --rm, delete the backups given as arguments.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if rm {
				return cobra.MinimumNArgs(1)(cmd, args)
			}
			return cobra.MaximumNArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.newS3Client(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if rm {
				nFailed := 0
				for _, path := range args {
					if !c.Exists(ctx, path) {
						log.Errorf("backup '%s' doesn't exist\n", path)
						nFailed++
						continue
					}
					err := c.Remove(ctx, path)
					if log.IfErrf(err, "removing '%s': %s", path, err) {
						nFailed++
						continue
					}
					log.Event("backup-rm", "path", path)
					fmt.Fprintf(out, "Removed '%s'\n", path)
				}
				if nFailed > 0 {
					return fmt.Errorf("failed to remove %d of %d backups", nFailed, len(args))
				}
				return nil
			}

			prefix := ""
			if len(args) > 0 {
				prefix = args[0]
			}
			n := 0
			var total int64
			for obj := range c.ListObjects(ctx, prefix) {
				if obj.Err != nil {
					return obj.Err
				}
				ts := obj.LastModified.UTC().Format(time.DateTime)
				fmt.Fprintf(out, "%s %10s %s\n", ts, u.FormatSize(obj.Size), obj.Key)
				n++
				total += obj.Size
			}
			if n == 0 {
				fmt.Fprintf(out, "No backups\n")
				return nil
			}
			log.Verbosef("%d backups, %s\n", n, u.FormatSize(total))
			return nil
		},
	}
	cmd.Flags().BoolVar(&rm, "rm", false, "delete the given backups")
	return cmd
}
