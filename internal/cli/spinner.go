package cli

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// spinner is a simple progress indicator for long-running lookups.
type spinner struct {
	message string
	done    chan struct{}
	stopped chan struct{}
}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

func newSpinner(message string) *spinner {
	return &spinner{
		message: message,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// start begins the animation on stderr.
func (s *spinner) start() {
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		i := 0
		for {
			select {
			case <-s.done:
				return
			case <-ticker.C:
				frame := spinnerFrames[i%len(spinnerFrames)]
				fmt.Fprintf(os.Stderr, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(s.message))
				i++
			}
		}
	}()
}

// stop halts the animation and clears the line.
func (s *spinner) stop() {
	close(s.done)
	<-s.stopped
	fmt.Fprintf(os.Stderr, "\r%s\r", strings.Repeat(" ", len(s.message)+4))
}
