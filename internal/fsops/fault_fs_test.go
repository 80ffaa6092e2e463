package fsops

import (
	"errors"
	"os"
	"testing"

	"github.com/spf13/afero"
)

func TestFaultFsFailsChosenPaths(t *testing.T) {
	base := afero.NewMemMapFs()
	if err := afero.WriteFile(base, "/a/keep.txt", []byte("1"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := afero.WriteFile(base, "/a/gone.txt", []byte("22"), 0o644); err != nil {
		t.Fatal(err)
	}

	fs := NewFaultFs(base)
	fs.FailOpen("/a/", os.ErrPermission)
	fs.FailRemove("/a/keep.txt", os.ErrPermission)

	if _, err := afero.ReadDir(fs, "/a"); !errors.Is(err, os.ErrPermission) {
		t.Errorf("ReadDir(/a) error = %v, want permission error", err)
	}
	if err := fs.Remove("/a/keep.txt"); !errors.Is(err, os.ErrPermission) {
		t.Errorf("Remove(keep) error = %v, want permission error", err)
	}
	if err := fs.Remove("/a/gone.txt"); err != nil {
		t.Errorf("Remove(gone) failed: %v", err)
	}

	if ok, _ := afero.Exists(base, "/a/keep.txt"); !ok {
		t.Error("keep.txt should survive a failed remove")
	}
	if ok, _ := afero.Exists(base, "/a/gone.txt"); ok {
		t.Error("gone.txt should be removed")
	}

	calls := fs.RemoveCalls()
	if len(calls) != 2 || calls[0] != "rm:/a/keep.txt" || calls[1] != "rm:/a/gone.txt" {
		t.Errorf("unexpected remove calls: %v", calls)
	}
}

func TestLstatFallsBackToStat(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/f", []byte("abc"), 0o644); err != nil {
		t.Fatal(err)
	}
	info, err := Lstat(NewFaultFs(fs), "/f")
	if err != nil {
		t.Fatalf("Lstat failed: %v", err)
	}
	if info.Size() != 3 || IsSymlink(info) {
		t.Errorf("unexpected info: size=%d symlink=%v", info.Size(), IsSymlink(info))
	}
}
