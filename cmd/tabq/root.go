package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/cache"
	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/config"
	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/csvstore"
	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/insights"
	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/logging"
	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/services"
)

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	files     []string
	output    string
	cachePath string
	noCache   bool
	logLevel  string

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "tabq",
		Short: "Ask questions about tabular files",
		Long: `tabq answers plain-English questions about CSV files: row and column counts,
totals, averages, min/max, top values, group-bys, filters and comparisons.

Example usage:
  tabq ask --file roaming.csv "top 5 partners by charge"
  tabq ask --file jan.csv --file feb.csv "average usage where country is Thailand"
  tabq profile --file roaming.csv`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(Version)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			opts.cfg = cfg

			logger, err := logging.NewLogger(cfg.Env, opts.logLevel)
			if err != nil {
				return err
			}
			opts.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringArrayVarP(&opts.files, "file", "f", nil, "CSV file to load (repeatable)")
	cmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "text", "output format: text, json or yaml")
	cmd.PersistentFlags().StringVar(&opts.cachePath, "cache", defaultCachePath(), "profile cache file")
	cmd.PersistentFlags().BoolVar(&opts.noCache, "no-cache", false, "do not read or write the profile cache")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level")

	cmd.AddCommand(newAskCmd(opts), newProfileCmd(opts), newLoadCmd(opts))
	return cmd
}

func defaultCachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "tabq", "profiles.db")
}

// session is the engine wired over the CSV files named on the command line.
type session struct {
	store    *csvstore.Store
	files    []string
	profiles services.FileProfileService
	engine   insights.Engine
	closers  []func() error
}

func (s *session) Close() {
	for _, c := range s.closers {
		_ = c()
	}
}

// openSession loads the files and wires the in-memory engine. The profile cache is
// best effort: when it cannot be opened profiles are rebuilt on every run.
func (o *rootOptions) openSession() (*session, error) {
	if len(o.files) == 0 {
		return nil, fmt.Errorf("at least one --file is required")
	}

	s := &session{store: csvstore.New()}
	for _, path := range o.files {
		if _, err := s.store.LoadFile(path); err != nil {
			return nil, err
		}
		s.files = append(s.files, path)
	}

	engineCfg := o.cfg.Insights.EngineConfig()
	executor := insights.NewExecutor(nil, insights.NewInMemoryExecutor(s.store, engineCfg, o.logger), o.logger)

	var store services.ProfileStore
	if !o.noCache && o.cachePath != "" {
		bolt, err := openBolt(o.cachePath)
		if err != nil {
			o.logger.Warn("Profile cache unavailable", zap.String("path", o.cachePath), zap.Error(err))
		} else {
			store = bolt
			s.closers = append(s.closers, bolt.Close)
		}
	}

	s.profiles = services.NewFileProfileService(s.store, s.store, executor, nil, store, engineCfg, o.logger)
	s.engine = insights.NewEngine(s.store, s.store, s.profiles, executor, engineCfg, o.logger)
	return s, nil
}

func openBolt(path string) (*cache.BoltProfileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return cache.NewBoltProfileStore(path)
}
