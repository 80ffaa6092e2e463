package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

const (
	DefaultMaxDepth   = 10
	DefaultTarget     = ".DS_Store"
	DefaultConfigDir  = ".config/cleanstore"
	DefaultConfigName = "config.yaml"
)

type LoggingCfg struct {
	File       string `yaml:"file" json:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" json:"max_size_mb"`   // Rotate once the log reaches this size
	MaxBackups int    `yaml:"max_backups" json:"max_backups"`   // Rotated files to keep
	MaxAgeDays int    `yaml:"max_age_days" json:"max_age_days"` // Days to keep rotated files
	Compress   bool   `yaml:"compress" json:"compress"`
}

type MetricsCfg struct {
	Textfile string `yaml:"textfile" json:"textfile"` // Prometheus textfile collector output, empty disables
}

type Config struct {
	Root           string     `yaml:"root" json:"root"`
	Targets        []string   `yaml:"targets" json:"targets"`
	Ignore         []string   `yaml:"ignore" json:"ignore"`
	Files          []string   `yaml:"files" json:"files"`
	MaxDepth       int        `yaml:"max_depth" json:"max_depth"`
	FollowSymlinks bool       `yaml:"follow_symlinks" json:"follow_symlinks"`
	Silent         bool       `yaml:"silent" json:"silent"`
	DryRun         bool       `yaml:"dry_run" json:"dry_run"`
	Logging        LoggingCfg `yaml:"logging" json:"logging"`
	DatabasePath   string     `yaml:"database_path" json:"database_path"` // SQLite deletion history, empty disables
	Metrics        MetricsCfg `yaml:"metrics" json:"metrics"`

	// Home is the resolved home directory used for tilde expansion.
	Home string `yaml:"-" json:"-"`
}

var (
	ErrNoHome       = errors.New("home directory cannot be resolved")
	ErrRootMissing  = errors.New("root directory does not exist")
	ErrRootNotDir   = errors.New("root is not a directory")
	ErrRootUnread   = errors.New("root directory cannot be read")
	ErrInvalidDepth = errors.New("max_depth cannot be negative")
	ErrNoTargets    = errors.New("at least one target filename is required")
	ErrBadTarget    = errors.New("target must be a bare filename")
)

// HomeDir resolves the current user's home directory.
func HomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "", fmt.Errorf("%w: %v", ErrNoHome, err)
	}
	return filepath.Clean(home), nil
}

// DefaultPath returns the location of the config file under home.
func DefaultPath(home string) string {
	return filepath.Join(home, DefaultConfigDir, DefaultConfigName)
}

// Default returns the configuration used when no file exists yet.
func Default() *Config {
	return &Config{
		Root:     "~",
		Targets:  []string{DefaultTarget},
		Ignore:   []string{"~/Library"},
		Files:    []string{"~/.lesshst", "~/.wget-hsts"},
		MaxDepth: DefaultMaxDepth,
		Logging: LoggingCfg{
			File:       "~/.cache/cleanstore/cleanstore.log",
			MaxSizeMB:  5,
			MaxBackups: 3,
			MaxAgeDays: 30,
		},
	}
}

// Load reads and validates the config file at path.
func Load(path, home string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := decode(f)
	if err != nil {
		return nil, err
	}
	if err := cfg.validateAndDefault(home); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrCreate loads path, writing the default config there first if it
// does not exist. The returned bool reports whether the file was created.
func LoadOrCreate(path, home string) (*Config, bool, error) {
	created := false
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := WriteDefault(path, false); err != nil {
			return nil, false, err
		}
		created = true
	}
	cfg, err := Load(path, home)
	return cfg, created, err
}

// WriteDefault writes the default config to path. An existing file is only
// replaced when force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create config: %w", err)
	}
	defer f.Close()

	return encode(f, Default())
}

func decode(r io.Reader) (*Config, error) {
	cfg := &Config{}
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return cfg, nil
}

func encode(w io.Writer, cfg *Config) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return encoder.Close()
}

// Finalize validates cfg and fills in defaults. It is exported for callers
// that build or override a Config in code instead of loading one.
func (c *Config) Finalize(home string) error {
	return c.validateAndDefault(home)
}

func (c *Config) validateAndDefault(home string) error {
	if home == "" {
		return ErrNoHome
	}
	c.Home = home
	defaults := Default()

	if c.MaxDepth < 0 {
		return ErrInvalidDepth
	}
	if c.MaxDepth == 0 {
		c.MaxDepth = DefaultMaxDepth
	}

	// nil means "not configured", an explicit empty list disables the default
	if c.Targets == nil {
		c.Targets = defaults.Targets
	}
	if c.Ignore == nil {
		c.Ignore = defaults.Ignore
	}
	if c.Files == nil {
		c.Files = defaults.Files
	}
	if c.Root == "" {
		c.Root = defaults.Root
	}

	targets := make([]string, 0, len(c.Targets))
	for _, t := range c.Targets {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if strings.ContainsRune(t, '/') || strings.ContainsRune(t, filepath.Separator) || t == "." || t == ".." {
			return fmt.Errorf("%w: %q", ErrBadTarget, t)
		}
		targets = append(targets, t)
	}
	if len(targets) == 0 {
		return ErrNoTargets
	}
	c.Targets = targets

	root, err := ResolvePath(c.Root, home)
	if err != nil {
		return err
	}
	c.Root = root

	files := make([]string, 0, len(c.Files))
	for _, f := range c.Files {
		if strings.TrimSpace(f) == "" {
			continue
		}
		files = append(files, HomeRelative(f, home))
	}
	c.Files = files

	ignore := make([]string, 0, len(c.Ignore))
	for _, entry := range c.Ignore {
		if strings.TrimSpace(entry) == "" {
			continue
		}
		ignore = append(ignore, ExpandHome(entry, home))
	}
	c.Ignore = ignore

	if c.Logging.File != "" {
		c.Logging.File = HomeRelative(c.Logging.File, home)
	}
	if c.Logging.MaxSizeMB <= 0 {
		c.Logging.MaxSizeMB = defaults.Logging.MaxSizeMB
	}
	if c.Logging.MaxBackups < 0 {
		c.Logging.MaxBackups = 0
	}
	if c.Logging.MaxAgeDays < 0 {
		c.Logging.MaxAgeDays = 0
	}

	if c.DatabasePath != "" {
		c.DatabasePath = HomeRelative(c.DatabasePath, home)
	}
	if c.Metrics.Textfile != "" {
		c.Metrics.Textfile = HomeRelative(c.Metrics.Textfile, home)
	}

	return nil
}

// ExpandHome replaces a leading "~" or "~/" with home. Other paths are
// returned cleaned but otherwise untouched, so relative ignore entries stay
// relative.
func ExpandHome(p, home string) string {
	switch {
	case p == "~":
		return home
	case strings.HasPrefix(p, "~/"):
		return filepath.Join(home, p[2:])
	}
	return filepath.Clean(p)
}

// HomeRelative expands p and anchors relative results at home.
func HomeRelative(p, home string) string {
	p = ExpandHome(p, home)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(home, p)
}

// ResolvePath turns a user-supplied directory into an absolute clean path:
// absolute paths are kept, "~" paths are anchored at home and anything
// else is taken relative to the working directory.
func ResolvePath(p, home string) (string, error) {
	p = ExpandHome(strings.TrimSpace(p), home)
	if filepath.IsAbs(p) {
		return p, nil
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", p, err)
	}
	return abs, nil
}

// CheckRoot verifies that root exists, is a directory and can be listed.
func CheckRoot(fs afero.Fs, root string) error {
	info, err := fs.Stat(root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrRootMissing, root)
		}
		return fmt.Errorf("%w: %s: %v", ErrRootUnread, root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrRootNotDir, root)
	}

	f, err := fs.Open(root)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrRootUnread, root, err)
	}
	defer f.Close()
	if _, err := f.Readdirnames(1); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %s: %v", ErrRootUnread, root, err)
	}
	return nil
}

// IsFatal reports whether err is a configuration problem that must stop a
// run before anything is deleted.
func IsFatal(err error) bool {
	for _, target := range []error{ErrNoHome, ErrRootMissing, ErrRootNotDir, ErrRootUnread, ErrInvalidDepth, ErrNoTargets, ErrBadTarget} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
