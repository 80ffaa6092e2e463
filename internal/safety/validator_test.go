package safety

import (
	"errors"
	"path/filepath"
	"testing"
)

// TestProtectedPathBlocking verifies protected paths are blocked
func TestProtectedPathBlocking(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected bool
	}{
		{"root slash", "/", true},
		{"etc", "/etc", true},
		{"etc subdir", "/etc/ssh/.DS_Store", true},
		{"bin file", "/bin/.DS_Store", true},
		{"usr local", "/usr/local/.DS_Store", true},
		{"macos system", "/System/Library/.DS_Store", true},
		{"private etc", "/private/etc/hosts", true},
		{"etc lookalike", "/etcetera/.DS_Store", false},
		{"tmp file", "/tmp/.DS_Store", false},
		{"home user", "/home/user/.lesshst", false},
		{"users", "/Users/me/Desktop/.DS_Store", false},
	}

	protected := defaultProtected(nil)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsProtectedPath(tt.path, protected)
			if result != tt.expected {
				t.Errorf("IsProtectedPath(%s) = %v, expected %v", tt.path, result, tt.expected)
			}
		})
	}
}

// TestPathNormalization verifies paths are normalized correctly
func TestPathNormalization(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		expectError bool
	}{
		{"absolute path", "/tmp/file.txt", false},
		{"relative path", "file.txt", false}, // Gets normalized to absolute
		{"path with dots", "/tmp/./file.txt", false},
		{"empty path", "", true},
		{"whitespace only", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := NormalizePath(tt.path)
			if tt.expectError {
				if err == nil {
					t.Errorf("NormalizePath(%s) expected error, got nil", tt.path)
				}
			} else {
				if err != nil {
					t.Errorf("NormalizePath(%s) unexpected error: %v", tt.path, err)
				}
				if !filepath.IsAbs(result) {
					t.Errorf("NormalizePath(%s) = %s, expected absolute path", tt.path, result)
				}
			}
		})
	}
}

// TestTraversalDetection verifies ".." segments are detected
func TestTraversalDetection(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected bool
	}{
		{"normal path", "/tmp/.DS_Store", false},
		{"dotdot parent", "/tmp/../etc/passwd", true},
		{"dotdot at end", "/tmp/..", true},
		{"dots in name", "/tmp/..hidden", false},
		{"relative dotdot", "../file", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectTraversal(tt.path); got != tt.expected {
				t.Errorf("DetectTraversal(%s) = %v, expected %v", tt.path, got, tt.expected)
			}
		})
	}
}

// TestValidateDeleteTarget verifies the full validation chain
func TestValidateDeleteTarget(t *testing.T) {
	v := NewValidator([]string{"/srv/keep"})

	tests := []struct {
		name string
		path string
		want error
	}{
		{"allowed", "/tmp/work/.DS_Store", nil},
		{"protected", "/etc/.DS_Store", ErrProtectedPath},
		{"extra protected", "/srv/keep/.DS_Store", ErrProtectedPath},
		{"traversal", "/tmp/../etc/.DS_Store", ErrTraversal},
		{"empty", "", ErrInvalidPath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateDeleteTarget(tt.path)
			if !errors.Is(err, tt.want) {
				t.Errorf("ValidateDeleteTarget(%q) = %v, want %v", tt.path, err, tt.want)
			}
		})
	}
}
