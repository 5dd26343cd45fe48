package service

import (
	"io"
	"os"
	"sync"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

// ProgressReporter drives a terminal progress bar during long scans. It
// stays silent when the writer is not an interactive terminal (or CI is
// set), so piped output never contains control sequences.
type ProgressReporter struct {
	mu          sync.Mutex
	writer      io.Writer
	bar         *progressbar.ProgressBar
	interactive bool
	description string
}

// NewProgressReporter creates a reporter writing to stderr.
func NewProgressReporter(description string) *ProgressReporter {
	return &ProgressReporter{
		writer:      os.Stderr,
		interactive: isInteractive(os.Stderr),
		description: description,
	}
}

func isInteractive(w io.Writer) bool {
	if os.Getenv("CI") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// SetWriter redirects progress output and re-evaluates interactivity.
func (pr *ProgressReporter) SetWriter(w io.Writer) {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	pr.writer = w
	pr.interactive = isInteractive(w)
}

// Start initializes the bar for total steps.
func (pr *ProgressReporter) Start(total int) {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	if !pr.interactive || total <= 0 {
		return
	}
	pr.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(pr.writer),
		progressbar.OptionSetDescription(pr.description),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionShowCount(),
	)
}

// Increment advances the bar by one step.
func (pr *ProgressReporter) Increment() {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	if pr.bar != nil {
		_ = pr.bar.Add(1)
	}
}

// Finish completes and clears the bar.
func (pr *ProgressReporter) Finish() {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	if pr.bar != nil {
		_ = pr.bar.Finish()
		pr.bar = nil
	}
}
