package notify

import (
	"bufio"
	"fmt"
	"io"
	"sync"

	"github.com/smith3v/family-medicine-manager/pkg/logger"
	"github.com/smith3v/family-medicine-manager/pkg/reminders"
	"github.com/smith3v/family-medicine-manager/pkg/ui"
)

const dismissPrompt = "Press Enter to dismiss."

// ConsoleDisplay prints reminders to out and treats a line on in as
// dismissal. End of input also dismisses.
type ConsoleDisplay struct {
	mu     sync.Mutex // guards out
	readMu sync.Mutex
	out    io.Writer
	lines  *bufio.Reader
	render func(reminders.Report) string
}

func NewConsoleDisplay(in io.Reader, out io.Writer) *ConsoleDisplay {
	return &ConsoleDisplay{
		out:    out,
		lines:  bufio.NewReader(in),
		render: ui.RenderReminder,
	}
}

func (c *ConsoleDisplay) Show(report reminders.Report, dismiss func()) {
	c.mu.Lock()
	fmt.Fprintf(c.out, "\n=== Medication reminder ===\n%s%s\n", c.render(report), dismissPrompt)
	c.mu.Unlock()

	go func() {
		c.readMu.Lock()
		_, err := c.lines.ReadString('\n')
		c.readMu.Unlock()
		if err != nil && err != io.EOF {
			logger.Warn("failed to read dismissal", "error", err)
		}
		dismiss()
	}()
}
