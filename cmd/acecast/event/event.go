// Package event implements the `acecast event` command group: create and
// list records, provision their containers and inspect the journal.
package event

import (
	"acecast/config"
	"acecast/internal/store"

	"github.com/spf13/cobra"
)

// flags shared by all event subcommands.
type commonFlags struct {
	configPath string
	storePath  string
}

func (f *commonFlags) bind(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&f.configPath, "config", "", "Config file (default "+config.Path()+")")
	cmd.PersistentFlags().StringVar(&f.storePath, "store", "", "Record store CSV file (overrides config)")
}

// load resolves config and opens the record store.
func (f *commonFlags) load() (*config.Config, *store.Store, error) {
	var cfg *config.Config
	var err error
	if f.configPath != "" {
		cfg, err = config.LoadFile(f.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, nil, err
	}
	if f.storePath != "" {
		cfg.StorePath = f.storePath
	}
	st, err := store.Open(cfg.StorePath)
	if err != nil {
		return nil, nil, err
	}
	return cfg, st, nil
}

// New returns the `event` command group.
func New() *cobra.Command {
	var cf commonFlags

	cmd := &cobra.Command{
		Use:     "event",
		Aliases: []string{"ev"},
		Short:   "Manage streaming event records and their containers",
	}
	cf.bind(cmd)

	cmd.AddCommand(createCmd(&cf))
	cmd.AddCommand(listCmd(&cf))
	cmd.AddCommand(upCmd(&cf))
	cmd.AddCommand(historyCmd(&cf))
	return cmd
}
