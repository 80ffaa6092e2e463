package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"cleanstore/internal/fsops"
)

func TestDecodeAndDefault(t *testing.T) {
	home := "/home/tester"
	input := `
root: "~/projects"
targets: [".DS_Store", "Thumbs.db"]
ignore: ["Library", "~/Library/Caches", "/opt/cache"]
files: [".lesshst", "~/.viminfo", "/tmp/extra.log"]
max_depth: 4
`
	cfg, err := decode(strings.NewReader(input))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if err := cfg.validateAndDefault(home); err != nil {
		t.Fatalf("validateAndDefault failed: %v", err)
	}

	if cfg.Root != "/home/tester/projects" {
		t.Errorf("Root = %s, want /home/tester/projects", cfg.Root)
	}
	if cfg.MaxDepth != 4 {
		t.Errorf("MaxDepth = %d, want 4", cfg.MaxDepth)
	}
	wantIgnore := []string{"Library", "/home/tester/Library/Caches", "/opt/cache"}
	for i, want := range wantIgnore {
		if cfg.Ignore[i] != want {
			t.Errorf("Ignore[%d] = %s, want %s", i, cfg.Ignore[i], want)
		}
	}
	wantFiles := []string{"/home/tester/.lesshst", "/home/tester/.viminfo", "/tmp/extra.log"}
	for i, want := range wantFiles {
		if cfg.Files[i] != want {
			t.Errorf("Files[%d] = %s, want %s", i, cfg.Files[i], want)
		}
	}
	if cfg.Logging.MaxSizeMB != 5 {
		t.Errorf("Logging.MaxSizeMB = %d, want default 5", cfg.Logging.MaxSizeMB)
	}
}

func TestEmptyDocumentUsesDefaults(t *testing.T) {
	cfg, err := decode(strings.NewReader(""))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if err := cfg.validateAndDefault("/home/u"); err != nil {
		t.Fatalf("validateAndDefault failed: %v", err)
	}

	if cfg.Root != "/home/u" {
		t.Errorf("Root = %s, want /home/u", cfg.Root)
	}
	if len(cfg.Targets) != 1 || cfg.Targets[0] != DefaultTarget {
		t.Errorf("Targets = %v, want [%s]", cfg.Targets, DefaultTarget)
	}
	if len(cfg.Ignore) != 1 || cfg.Ignore[0] != "/home/u/Library" {
		t.Errorf("Ignore = %v, want [/home/u/Library]", cfg.Ignore)
	}
	if len(cfg.Files) != 2 || cfg.Files[0] != "/home/u/.lesshst" {
		t.Errorf("Files = %v, want the two default home files", cfg.Files)
	}
	if cfg.MaxDepth != DefaultMaxDepth {
		t.Errorf("MaxDepth = %d, want %d", cfg.MaxDepth, DefaultMaxDepth)
	}
}

func TestExplicitEmptyListsDisableDefaults(t *testing.T) {
	cfg, err := decode(strings.NewReader("ignore: []\nfiles: []\n"))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if err := cfg.validateAndDefault("/home/u"); err != nil {
		t.Fatalf("validateAndDefault failed: %v", err)
	}
	if len(cfg.Ignore) != 0 {
		t.Errorf("Ignore = %v, want empty", cfg.Ignore)
	}
	if len(cfg.Files) != 0 {
		t.Errorf("Files = %v, want empty", cfg.Files)
	}
}

func TestValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		home string
		want error
	}{
		{"no home", Config{}, "", ErrNoHome},
		{"negative depth", Config{MaxDepth: -1}, "/h", ErrInvalidDepth},
		{"empty targets", Config{Targets: []string{"  "}}, "/h", ErrNoTargets},
		{"target with separator", Config{Targets: []string{"a/.DS_Store"}}, "/h", ErrBadTarget},
		{"dot target", Config{Targets: []string{".."}}, "/h", ErrBadTarget},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			err := cfg.validateAndDefault(tt.home)
			if !errors.Is(err, tt.want) {
				t.Fatalf("validateAndDefault() error = %v, want %v", err, tt.want)
			}
			if !IsFatal(err) {
				t.Errorf("IsFatal(%v) = false, want true", err)
			}
		})
	}
}

func TestExpandHome(t *testing.T) {
	home := "/Users/me"
	tests := []struct {
		in   string
		want string
	}{
		{"~", "/Users/me"},
		{"~/Library", "/Users/me/Library"},
		{"~/Library/../Documents", "/Users/me/Documents"},
		{"Library", "Library"},
		{"/abs/path/", "/abs/path"},
		{"~other", "~other"},
	}

	for _, tt := range tests {
		if got := ExpandHome(tt.in, home); got != tt.want {
			t.Errorf("ExpandHome(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResolvePath(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}

	tests := []struct {
		in   string
		want string
	}{
		{"/var/tmp", "/var/tmp"},
		{"~/Desktop", "/home/me/Desktop"},
		{"sub/dir", filepath.Join(wd, "sub/dir")},
	}
	for _, tt := range tests {
		got, err := ResolvePath(tt.in, "/home/me")
		if err != nil {
			t.Fatalf("ResolvePath(%q) error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ResolvePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriteDefaultRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", DefaultConfigName)

	cfg, created, err := LoadOrCreate(path, "/home/rt")
	if err != nil {
		t.Fatalf("LoadOrCreate failed: %v", err)
	}
	if !created {
		t.Error("expected config file to be created")
	}
	if cfg.Root != "/home/rt" {
		t.Errorf("Root = %s, want /home/rt", cfg.Root)
	}

	if err := WriteDefault(path, false); err == nil {
		t.Error("WriteDefault should refuse to overwrite without force")
	}
	if err := WriteDefault(path, true); err != nil {
		t.Errorf("WriteDefault with force failed: %v", err)
	}

	_, created, err = LoadOrCreate(path, "/home/rt")
	if err != nil {
		t.Fatalf("second LoadOrCreate failed: %v", err)
	}
	if created {
		t.Error("existing config must not be recreated")
	}
}

func TestCheckRoot(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := fs.MkdirAll("/data/root", 0o755); err != nil {
		t.Fatal(err)
	}
	if err := afero.WriteFile(fs, "/data/file", []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := CheckRoot(fs, "/data/root"); err != nil {
		t.Errorf("CheckRoot on a directory failed: %v", err)
	}
	if err := CheckRoot(fs, "/data/missing"); !errors.Is(err, ErrRootMissing) {
		t.Errorf("CheckRoot(missing) = %v, want ErrRootMissing", err)
	}
	if err := CheckRoot(fs, "/data/file"); !errors.Is(err, ErrRootNotDir) {
		t.Errorf("CheckRoot(file) = %v, want ErrRootNotDir", err)
	}

	if err := fs.MkdirAll("/data/empty", 0o755); err != nil {
		t.Fatal(err)
	}
	if err := CheckRoot(fs, "/data/empty"); err != nil {
		t.Errorf("CheckRoot on an empty directory failed: %v", err)
	}
}

func TestCheckRootUnlistable(t *testing.T) {
	fs := fsops.NewFaultFs(afero.NewMemMapFs())
	if err := fs.MkdirAll("/data/locked", 0o755); err != nil {
		t.Fatal(err)
	}
	fs.FailOpen("/data/locked", os.ErrPermission)

	err := CheckRoot(fs, "/data/locked")
	if !errors.Is(err, ErrRootUnread) {
		t.Fatalf("CheckRoot(unlistable) = %v, want ErrRootUnread", err)
	}
	if !IsFatal(err) {
		t.Error("unlistable root must be fatal")
	}
}
