package report

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"cleanstore/internal/cleanup"
)

var (
	green  = lipgloss.Color("2")
	yellow = lipgloss.Color("3")
	blue   = lipgloss.Color("4")
	red    = lipgloss.Color("1")
)

// Console renders run progress for a human. It implements cleanup.Reporter.
// A silent console renders nothing.
type Console struct {
	mu     sync.Mutex
	w      io.Writer
	silent bool

	plus    lipgloss.Style
	minus   lipgloss.Style
	bang    lipgloss.Style
	note    lipgloss.Style
	size    lipgloss.Style
	dimPath lipgloss.Style
}

// NewConsole builds a Console writing to w. Colors are only emitted when w
// is a terminal that supports them.
func NewConsole(w io.Writer, silent bool) *Console {
	r := lipgloss.NewRenderer(w)
	return &Console{
		w:       w,
		silent:  silent,
		plus:    r.NewStyle().Foreground(green).Bold(true),
		minus:   r.NewStyle().Foreground(blue),
		bang:    r.NewStyle().Foreground(red).Bold(true),
		note:    r.NewStyle().Foreground(yellow),
		size:    r.NewStyle().Foreground(yellow),
		dimPath: r.NewStyle().Faint(true),
	}
}

// Start prints the run header
func (c *Console) Start(targets []string, dryRun bool) {
	msg := fmt.Sprintf("Removing %s files...", strings.Join(targets, ", "))
	if dryRun {
		msg = fmt.Sprintf("Looking for %s files (dry run)...", strings.Join(targets, ", "))
	}
	c.println(c.plus.Render("[+]") + " " + c.note.Render(msg))
}

// Report prints one line per deletion and per warning
func (c *Console) Report(e cleanup.Event) {
	switch e.Kind {
	case cleanup.EventDeleted:
		c.println(fmt.Sprintf("%s Removing file: %s %s", c.minus.Render("(-)"), e.Path, c.size.Render(sizeLabel(e.Size))))
	case cleanup.EventDryRun:
		c.println(fmt.Sprintf("%s Would remove file: %s %s", c.minus.Render("(-)"), e.Path, c.size.Render(sizeLabel(e.Size))))
	case cleanup.EventNotFound:
		c.println(fmt.Sprintf("%s File not found: %s", c.bang.Render("[!]"), c.dimPath.Render(e.Path)))
	case cleanup.EventFailed:
		c.println(fmt.Sprintf("%s Could not remove %s: %v", c.bang.Render("[!]"), e.Path, e.Err))
	case cleanup.EventSkippedDir:
		c.println(fmt.Sprintf("%s Skipping unreadable directory %s: %v", c.bang.Render("[!]"), e.Path, e.Err))
	}
}

// Summary prints the closing total
func (c *Console) Summary(rendered string) {
	c.println(c.plus.Render("[+]") + " " + c.note.Render(fmt.Sprintf("Liberated a total of %s!", rendered)))
}

func (c *Console) println(line string) {
	if c.silent {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.w, line)
}

func sizeLabel(n int64) string {
	return fmt.Sprintf("(%s bytes)", humanize.Comma(n))
}
