package commands

import (
	"errors"
	"fmt"

	"github.com/kjk/plainkv/kvfile"
	"github.com/kjk/plainkv/log"
	"github.com/spf13/cobra"
)

var errKeyNotFound = errors.New("key not found")

func initCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create an empty store file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := a.newStore()
			if err := kvfile.CreateStore(s); err != nil {
				return err
			}
			log.Event("init", "db", s.Path)
			fmt.Fprintf(cmd.OutOrStdout(), "Created '%s'\n", s.Path)
			return nil
		},
	}
}

func getCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get KEY",
		Short: "Print value of a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			v, ok := s.Get(args[0])
			if !ok {
				return fmt.Errorf("%w: '%s'", errKeyNotFound, args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	}
}

func setCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set value of a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			key, value := args[0], args[1]
			prev, existed, err := s.Set(key, value)
			if err != nil {
				return err
			}
			log.Event("set", "db", s.Path, "key", key, "existed", existed)
			if existed {
				log.Verbosef("'%s': '%s' => '%s'\n", key, prev, value)
			}
			return nil
		},
	}
}

func rmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm KEY",
		Aliases: []string{"remove", "delete"},
		Short:   "Remove a key",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			key := args[0]
			_, existed, err := s.Remove(key)
			if err != nil {
				return err
			}
			log.Event("rm", "db", s.Path, "key", key, "existed", existed)
			if !existed {
				log.Verbosef("'%s' didn't exist\n", key)
			}
			return nil
		},
	}
}

func checkCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify that the store file parses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "'%s' is ok, %d keys\n", s.Path, s.Len())
			return nil
		},
	}
}
