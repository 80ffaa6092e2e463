package fsops

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
)

// FaultFs wraps another afero.Fs, records every remove call and fails
// operations on chosen paths. Tests use it to simulate permission
// problems without relying on the privileges of the test user.
type FaultFs struct {
	afero.Fs

	mu         sync.Mutex
	openErrs   map[string]error
	removeErrs map[string]error
	Calls      []string
}

// NewFaultFs wraps base
func NewFaultFs(base afero.Fs) *FaultFs {
	return &FaultFs{
		Fs:         base,
		openErrs:   make(map[string]error),
		removeErrs: make(map[string]error),
	}
}

// FailOpen makes Open (and therefore directory listing) of path fail with err.
func (f *FaultFs) FailOpen(path string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.openErrs[filepath.Clean(path)] = err
}

// FailRemove makes Remove of path fail with err.
func (f *FaultFs) FailRemove(path string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removeErrs[filepath.Clean(path)] = err
}

func (f *FaultFs) Name() string {
	return "FaultFs(" + f.Fs.Name() + ")"
}

func (f *FaultFs) Open(name string) (afero.File, error) {
	f.mu.Lock()
	err := f.openErrs[filepath.Clean(name)]
	f.mu.Unlock()
	if err != nil {
		return nil, &os.PathError{Op: "open", Path: name, Err: err}
	}
	return f.Fs.Open(name)
}

func (f *FaultFs) Remove(name string) error {
	f.mu.Lock()
	f.Calls = append(f.Calls, "rm:"+name)
	err := f.removeErrs[filepath.Clean(name)]
	f.mu.Unlock()
	if err != nil {
		return &os.PathError{Op: "remove", Path: name, Err: err}
	}
	return f.Fs.Remove(name)
}

func (f *FaultFs) RemoveAll(name string) error {
	f.mu.Lock()
	f.Calls = append(f.Calls, "rmall:"+name)
	f.mu.Unlock()
	return f.Fs.RemoveAll(name)
}

func (f *FaultFs) LstatIfPossible(name string) (os.FileInfo, bool, error) {
	if l, ok := f.Fs.(afero.Lstater); ok {
		return l.LstatIfPossible(name)
	}
	info, err := f.Fs.Stat(name)
	return info, false, err
}

// RemoveCalls returns a copy of the recorded remove calls
func (f *FaultFs) RemoveCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.Calls...)
}
