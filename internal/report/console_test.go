package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"cleanstore/internal/cleanup"
)

func TestConsoleLines(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, false)

	c.Start([]string{".DS_Store"}, false)
	c.Report(cleanup.Event{Kind: cleanup.EventDeleted, Path: "/r/a/.DS_Store", Size: 6148})
	c.Report(cleanup.Event{Kind: cleanup.EventNotFound, Path: "/h/.wget-hsts"})
	c.Report(cleanup.Event{Kind: cleanup.EventSkippedDir, Path: "/r/locked", Err: errors.New("permission denied")})
	c.Summary("6.00 KB")

	want := []string{
		"[+] Removing .DS_Store files...",
		"(-) Removing file: /r/a/.DS_Store (6,148 bytes)",
		"[!] File not found: /h/.wget-hsts",
		"[!] Skipping unreadable directory /r/locked: permission denied",
		"[+] Liberated a total of 6.00 KB!",
	}
	got := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(got) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(got), len(want), buf.String())
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestConsoleDryRun(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, false)

	c.Start([]string{".DS_Store", "Thumbs.db"}, true)
	c.Report(cleanup.Event{Kind: cleanup.EventDryRun, Path: "/r/.DS_Store", Size: 10})

	out := buf.String()
	if !strings.Contains(out, "Looking for .DS_Store, Thumbs.db files (dry run)...") {
		t.Errorf("dry-run header missing:\n%s", out)
	}
	if !strings.Contains(out, "(-) Would remove file: /r/.DS_Store (10 bytes)") {
		t.Errorf("dry-run line missing:\n%s", out)
	}
}

func TestSilentConsoleRendersNothing(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, true)

	c.Start([]string{".DS_Store"}, false)
	c.Report(cleanup.Event{Kind: cleanup.EventDeleted, Path: "/x", Size: 1})
	c.Report(cleanup.Event{Kind: cleanup.EventFailed, Path: "/y", Err: errors.New("boom")})
	c.Summary("1 B")

	if buf.Len() != 0 {
		t.Errorf("silent console wrote %q", buf.String())
	}
}
