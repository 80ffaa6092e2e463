package fsops

import (
	"os"

	"github.com/spf13/afero"
)

// OS returns the filesystem used outside of tests
func OS() afero.Fs {
	return afero.NewOsFs()
}

// Lstat stats name without following a final symlink when fs supports it.
func Lstat(fs afero.Fs, name string) (os.FileInfo, error) {
	if l, ok := fs.(afero.Lstater); ok {
		info, _, err := l.LstatIfPossible(name)
		return info, err
	}
	return fs.Stat(name)
}

// IsSymlink reports whether info describes a symbolic link
func IsSymlink(info os.FileInfo) bool {
	return info.Mode()&os.ModeSymlink != 0
}
