package commands

import (
	"fmt"

	"github.com/kjk/plainkv/backup"
	"github.com/kjk/plainkv/log"
	"github.com/kjk/plainkv/minioutil"
	"github.com/kjk/plainkv/u"
	"github.com/spf13/cobra"
)

func (a *app) newS3Client(cmd *cobra.Command) (*minioutil.Client, error) {
	if !a.cfg.HasS3() {
		return nil, fmt.Errorf("s3 is not configured, add s3 section to config file")
	}
	return minioutil.New(cmd.Context(), a.cfg.MinioConfig())
}

func backupCmd(a *app) *cobra.Command {
	var toS3 bool
	cmd := &cobra.Command{
		Use:   "backup DST",
		Short: "Copy the store to a file or, with --s3, to S3 storage",
		Long: `Copy the store to a file or, with --s3, to S3 storage.
DST ending with .gz, .zst or .br is compressed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			dst := args[0]
			var size int64
			if toS3 {
				c, err := a.newS3Client(cmd)
				if err != nil {
					return err
				}
				size, err = backup.Upload(cmd.Context(), c, s, dst)
				if err != nil {
					return err
				}
			} else {
				size, err = backup.WriteLocal(s, dst)
				if err != nil {
					return err
				}
			}
			log.Event("backup", "db", s.Path, "dst", dst, "s3", toS3, "size", size)
			fmt.Fprintf(cmd.OutOrStdout(), "Backed up %d keys to '%s' (%s)\n", s.Len(), dst, u.FormatSize(size))
			return nil
		},
	}
	cmd.Flags().BoolVar(&toS3, "s3", false, "DST is a path in the configured S3 bucket")
	return cmd
}

func restoreCmd(a *app) *cobra.Command {
	var fromS3, force bool
	cmd := &cobra.Command{
		Use:   "restore SRC",
		Short: "Replace the store with a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.cfg.Path
			if u.PathExists(path) && !force {
				return fmt.Errorf("'%s' already exists, use --force to overwrite it", path)
			}
			src := args[0]
			var d []byte
			var err error
			if fromS3 {
				c, err := a.newS3Client(cmd)
				if err != nil {
					return err
				}
				d, err = backup.Download(cmd.Context(), c, src)
				if err != nil {
					return err
				}
			} else {
				d, err = backup.ReadLocal(src)
				if err != nil {
					return err
				}
			}
			s, err := backup.Restore(nil, path, a.cfg.Delimiter, d)
			if err != nil {
				return err
			}
			log.Event("restore", "db", s.Path, "src", src, "s3", fromS3, "keys", s.Len())
			fmt.Fprintf(cmd.OutOrStdout(), "Restored %d keys from '%s'\n", s.Len(), src)
			return nil
		},
	}
	cmd.Flags().BoolVar(&fromS3, "s3", false, "SRC is a path in the configured S3 bucket")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing store file")
	return cmd
}
