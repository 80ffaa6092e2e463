package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"cleanstore/internal/config"
	"cleanstore/internal/database"
	"cleanstore/internal/logging"
	"cleanstore/internal/metrics"
	"cleanstore/internal/report"
	"cleanstore/internal/runner"
)

const rootLongDescription = `Cleanstore walks a directory tree and removes every file named like a
target (".DS_Store" by default), skipping ignored subtrees. Files listed in
the config are removed too, wherever they live.

The directory defaults to the configured root, which defaults to $HOME.
Config is read from ~/.config/cleanstore/config.yaml and created there on
first run. CLEANSTORE_* environment variables override the file and flags
override both.`

func newRootCmd() *cobra.Command {
	v := newViper()
	var configPath string

	cmd := &cobra.Command{
		Use:           "cleanstore [dir]",
		Short:         "Remove .DS_Store files and other clutter",
		Long:          rootLongDescription,
		Args:          usageArgs(cobra.MaximumNArgs(1)),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				v.Set(rootKey, args[0])
			}
			return runClean(cmd, v, configPath)
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})

	cmd.PersistentFlags().StringVar(&configPath, configFlagName, "", "path to the config file (default ~/.config/cleanstore/config.yaml)")
	cmd.PersistentFlags().String(dbFlagName, "", "SQLite deletion history database")
	bindFlagToConfig(v, cmd.PersistentFlags().Lookup(dbFlagName), dbKey)

	configureRunFlags(cmd, v)

	cmd.AddCommand(newInitCmd(&configPath))
	cmd.AddCommand(newHistoryCmd(v, &configPath))
	return cmd
}

func configureRunFlags(cmd *cobra.Command, v *viper.Viper) {
	flags := cmd.Flags()

	flags.BoolP(silentFlagName, "s", false, "print nothing, only log")
	bindFlagToConfig(v, flags.Lookup(silentFlagName), silentKey)

	flags.BoolP(dryRunFlagName, "n", false, "report what would be removed without removing it")
	bindFlagToConfig(v, flags.Lookup(dryRunFlagName), dryRunKey)

	flags.StringArrayP(ignoreFlagName, "i", nil, "skip directories matching this path (can be repeated, replaces the configured list)")
	bindFlagToConfig(v, flags.Lookup(ignoreFlagName), ignoreKey)

	flags.StringArrayP(fileFlagName, "f", nil, "remove this file unconditionally (can be repeated, replaces the configured list)")
	bindFlagToConfig(v, flags.Lookup(fileFlagName), filesKey)

	flags.StringArrayP(targetFlagName, "t", nil, "file name to remove (can be repeated, replaces the configured list)")
	bindFlagToConfig(v, flags.Lookup(targetFlagName), targetsKey)

	flags.Int(maxDepthFlagName, 0, fmt.Sprintf("directories at this depth or deeper are not entered, 1 lists only the root (default %d)", config.DefaultMaxDepth))
	bindFlagToConfig(v, flags.Lookup(maxDepthFlagName), maxDepthKey)

	flags.Bool(followFlagName, false, "descend into symlinked directories")
	bindFlagToConfig(v, flags.Lookup(followFlagName), followKey)

	flags.String(textfileFlagName, "", "write Prometheus metrics to this textfile after the run")
	bindFlagToConfig(v, flags.Lookup(textfileFlagName), textfileKey)
}

func runClean(cmd *cobra.Command, v *viper.Viper, configPath string) error {
	cfg, created, err := loadConfig(v, configPath, true)
	if err != nil {
		return err
	}

	logger, closeLog := logging.New(cfg)
	defer func() {
		_ = closeLog()
	}()
	leveled := logging.Wrap(logger)
	if created {
		leveled.Info("Created default config", "root", cfg.Root)
	}

	metrics.Init()

	var db *database.DeletionDB
	if cfg.DatabasePath != "" {
		db, err = database.NewDeletionDB(cfg.DatabasePath)
		if err != nil {
			return fmt.Errorf("open deletion database: %w", err)
		}
		defer func() {
			if err := db.Close(); err != nil {
				leveled.Error("Failed to close database", "error", err)
			}
		}()
	}

	console := report.NewConsole(cmd.OutOrStdout(), cfg.Silent)
	console.Start(cfg.Targets, cfg.DryRun)

	summary, err := runner.RunOnce(cmd.Context(), cfg, runner.Options{
		Logger:   logger,
		Reporter: console,
		DB:       db,
	})
	if err != nil {
		return err
	}

	console.Summary(summary.Rendered)
	return nil
}

// usageArgs marks argument validation failures as usage errors
func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}
