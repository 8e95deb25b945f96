package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

const spinnerInterval = 80 * time.Millisecond

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// spinner redraws a one-line progress indicator until Stop is called or
// its context ends.
type spinner struct {
	msg  string
	out  io.Writer
	ctx  context.Context
	quit chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

func newSpinner(ctx context.Context, msg string) *spinner {
	return &spinner{msg: msg, out: os.Stderr, ctx: ctx, quit: make(chan struct{})}
}

func (s *spinner) Start() {
	s.wg.Add(1)
	go s.run()
}

func (s *spinner) run() {
	defer s.wg.Done()
	tick := time.NewTicker(spinnerInterval)
	defer tick.Stop()

	for frame := 0; ; frame++ {
		select {
		case <-s.quit:
			return
		case <-s.ctx.Done():
			s.clear()
			return
		case <-tick.C:
			icon := styleIconSpinner.Render(spinnerFrames[frame%len(spinnerFrames)])
			fmt.Fprintf(s.out, "\r%s %s", icon, styleDim.Render(s.msg))
		}
	}
}

// Stop halts the animation and blanks the line. Safe to call repeatedly,
// and on a spinner that never started.
func (s *spinner) Stop() {
	s.once.Do(func() { close(s.quit) })
	s.wg.Wait()
	s.clear()
}

func (s *spinner) clear() {
	fmt.Fprint(s.out, "\r"+strings.Repeat(" ", len(s.msg)+4)+"\r")
}

// Cancelled reports whether the context ended while the spinner was live.
func (s *spinner) Cancelled() bool {
	select {
	case <-s.quit:
		return false
	default:
		return s.ctx.Err() != nil
	}
}
