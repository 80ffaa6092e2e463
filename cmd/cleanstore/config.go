package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"cleanstore/internal/config"
)

const (
	envPrefix = "CLEANSTORE"

	configFlagName   = "config"
	silentFlagName   = "silent"
	dryRunFlagName   = "dry-run"
	ignoreFlagName   = "ignore"
	fileFlagName     = "file"
	targetFlagName   = "target"
	maxDepthFlagName = "max-depth"
	followFlagName   = "follow-symlinks"
	dbFlagName       = "db"
	textfileFlagName = "metrics-textfile"

	rootKey     = "root"
	silentKey   = "silent"
	dryRunKey   = "dry_run"
	ignoreKey   = "ignore"
	filesKey    = "files"
	targetsKey  = "targets"
	maxDepthKey = "max_depth"
	followKey   = "follow_symlinks"
	dbKey       = "database_path"
	textfileKey = "metrics.textfile"
)

// newViper returns a viper instance reading CLEANSTORE_* variables, so
// CLEANSTORE_DRY_RUN=true or CLEANSTORE_METRICS_TEXTFILE=/path apply.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

// bindFlagToConfig wires a Cobra flag to a Viper key so env values and the
// flag resolve through the same key.
func bindFlagToConfig(v *viper.Viper, flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(v.BindPFlag(key, flag))
}

// loadConfig reads the config file, then applies environment and flag
// overrides on top. A missing file is created with defaults when create is
// set, otherwise the defaults are used in memory.
func loadConfig(v *viper.Viper, path string, create bool) (*config.Config, bool, error) {
	home, err := config.HomeDir()
	if err != nil {
		return nil, false, err
	}
	path, err = configFile(path, home)
	if err != nil {
		return nil, false, err
	}

	var cfg *config.Config
	created := false
	switch {
	case create:
		cfg, created, err = config.LoadOrCreate(path, home)
	default:
		cfg, err = config.Load(path, home)
		if errors.Is(err, os.ErrNotExist) {
			cfg, err = config.Default(), nil
		}
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: %s: %v", errBadConfig, path, err)
	}

	applyOverrides(v, cfg)
	if err := cfg.Finalize(home); err != nil {
		return nil, false, err
	}
	return cfg, created, nil
}

// configFile resolves the --config value, defaulting under home
func configFile(flagValue, home string) (string, error) {
	if flagValue == "" {
		return config.DefaultPath(home), nil
	}
	return config.ResolvePath(flagValue, home)
}

// errBadConfig marks a config file that could not be read or parsed
var errBadConfig = errors.New("invalid config file")

func applyOverrides(v *viper.Viper, cfg *config.Config) {
	if v.IsSet(rootKey) {
		cfg.Root = v.GetString(rootKey)
	}
	if v.IsSet(silentKey) {
		cfg.Silent = v.GetBool(silentKey)
	}
	if v.IsSet(dryRunKey) {
		cfg.DryRun = v.GetBool(dryRunKey)
	}
	if v.IsSet(ignoreKey) {
		cfg.Ignore = v.GetStringSlice(ignoreKey)
	}
	if v.IsSet(filesKey) {
		cfg.Files = v.GetStringSlice(filesKey)
	}
	if v.IsSet(targetsKey) {
		cfg.Targets = v.GetStringSlice(targetsKey)
	}
	if v.IsSet(maxDepthKey) {
		cfg.MaxDepth = v.GetInt(maxDepthKey)
	}
	if v.IsSet(followKey) {
		cfg.FollowSymlinks = v.GetBool(followKey)
	}
	if v.IsSet(dbKey) {
		cfg.DatabasePath = v.GetString(dbKey)
	}
	if v.IsSet(textfileKey) {
		cfg.Metrics.Textfile = v.GetString(textfileKey)
	}
}
