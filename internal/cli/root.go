// Package cli implements the ofrenda command line interface over the
// persistent entity store: export, import, stats, and direct memorial and
// offering operations.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ofrenda/core/internal/logging"
	"github.com/ofrenda/core/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Verbose    bool
	Format     string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the ofrenda CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "ofrenda",
		Short: "Ofrenda - local-first memorial data store",
		Long:  "Manage the local memorial altar dataset: memorials, offerings, family groups, export and import.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to config file (yaml)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))
	cmd.AddCommand(NewMemorialCommand(opts))
	cmd.AddCommand(NewOfferingCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// openStore loads configuration and opens the entity store. The returned
// cleanup closes both the store and the logger.
func openStore(opts *RootOptions) (*store.Store, *zap.Logger, func(), error) {
	cfg, err := LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, nil, nil, err
	}

	level := cfg.Log.Level
	if opts.Verbose {
		level = "debug"
	}
	logger, err := logging.New(level, cfg.Log.Format)
	if err != nil {
		return nil, nil, nil, err
	}

	s, err := store.Open(cfg.DBPath, store.WithLogger(logger))
	if err != nil {
		logger.Sync()
		return nil, nil, nil, err
	}

	cleanup := func() {
		s.Close()
		logger.Sync()
	}
	return s, logger, cleanup, nil
}
