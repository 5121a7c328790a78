package commands

import (
	"github.com/kjk/plainkv/config"
	"github.com/kjk/plainkv/kvfile"
	"github.com/kjk/plainkv/log"
	"github.com/spf13/cobra"
)

// app holds flags and config shared by all commands
type app struct {
	configPath string
	dbPath     string
	delimiter  string
	atomic     bool
	logDir     string
	verbose    bool

	cfg *config.Config
}

// loadConfig reads the config file and applies command line overrides
func (a *app) loadConfig(cmd *cobra.Command) error {
	flags := cmd.Flags()
	cfg, err := config.Load(a.configPath, flags.Changed("config"))
	if err != nil {
		return err
	}
	if flags.Changed("db") {
		cfg.Path = a.dbPath
	}
	if flags.Changed("delim") {
		cfg.Delimiter = a.delimiter
	}
	if flags.Changed("atomic") {
		cfg.Atomic = a.atomic
	}
	if flags.Changed("log-dir") {
		cfg.LogDir = a.logDir
	}
	if flags.Changed("verbose") {
		cfg.Verbose = a.verbose
	}
	if err = cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	log.Verbose = cfg.Verbose
	log.Init(&log.Config{Dir: cfg.LogDir})
	log.Verbosef("config: db: '%s', delimiter: '%s', atomic: %v\n", cfg.Path, cfg.Delimiter, cfg.Atomic)
	return nil
}

func (a *app) newStore() *kvfile.Store {
	return &kvfile.Store{
		Path:        a.cfg.Path,
		Delimiter:   a.cfg.Delimiter,
		AtomicWrite: a.cfg.Atomic,
	}
}

func (a *app) openStore() (*kvfile.Store, error) {
	s := a.newStore()
	if err := kvfile.OpenStore(s); err != nil {
		return nil, err
	}
	log.Verbosef("opened '%s', %d keys\n", s.Path, s.Len())
	return s, nil
}

// NewRootCmd creates the plainkv command with all sub-commands
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "plainkv",
		Short:         "Key-value store in a plaintext file",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			log.Close()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "plainkv.yml", "config file")
	pf.StringVar(&a.dbPath, "db", config.DefaultPath, "path of the store file")
	pf.StringVarP(&a.delimiter, "delim", "d", config.DefaultDelimiter, "separator between key and value")
	pf.BoolVar(&a.atomic, "atomic", false, "write to a temporary file and rename it over the store file")
	pf.StringVar(&a.logDir, "log-dir", "", "directory for log and event files")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "verbose logging")

	root.AddCommand(
		initCmd(a),
		getCmd(a),
		setCmd(a),
		rmCmd(a),
		listCmd(a),
		checkCmd(a),
		backupCmd(a),
		restoreCmd(a),
		backupsCmd(a),
		eventsCmd(a),
	)
	return root
}

func Execute() error {
	root := NewRootCmd()
	err := root.Execute()
	if err != nil {
		log.Errorf("Error: %s", err)
		log.Close()
	}
	return err
}
