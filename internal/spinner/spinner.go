// Package spinner draws a one-line progress indicator on a terminal while
// archive pages are fetched.
package spinner

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/term"
)

var frames = []string{"◜", "◠", "◝", "◞", "◡", "◟"}

const interval = 100 * time.Millisecond

// Spinner is a spinning progress indicator with a mutable message.
// All methods are safe for concurrent use.
type Spinner struct {
	w io.Writer

	mu      sync.Mutex
	message string
	stop    context.CancelFunc
	done    chan struct{}
}

// New creates a stopped spinner that writes to w.
func New(w io.Writer, message string) *Spinner {
	return &Spinner{w: w, message: message}
}

// IsTerminal reports whether w is a terminal; spinners written anywhere
// else only clutter the output.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Start begins the animation. It ends on Stop or when ctx is done.
// Starting a running spinner does nothing.
func (s *Spinner) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done != nil {
		return
	}

	ctx, s.stop = context.WithCancel(ctx)
	s.done = make(chan struct{})
	go s.run(ctx, s.done)
}

// Stop ends the animation and clears the line. Stopping a stopped
// spinner does nothing.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if s.done == nil {
		s.mu.Unlock()
		return
	}
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()

	stop()
	<-done

	if IsTerminal(s.w) {
		fmt.Fprint(s.w, "\r\033[2K")
	} else {
		fmt.Fprint(s.w, "\r")
	}
}

// Running reports whether the animation is in progress.
func (s *Spinner) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done != nil
}

// Update replaces the message shown next to the spinner.
func (s *Spinner) Update(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = message
}

// Updatef formats and shows a new message.
func (s *Spinner) Updatef(format string, args ...any) {
	s.Update(fmt.Sprintf(format, args...))
}

func (s *Spinner) run(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			message := s.message
			s.mu.Unlock()

			fmt.Fprintf(s.w, "\r%s %s", frames[i%len(frames)], message)
		}
	}
}
