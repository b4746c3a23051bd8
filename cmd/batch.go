package cmd

import (
	"bufio"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/ftahirops/ptop/engine"
)

const (
	defaultCols = 80
	// batchRows leaves every task on the page; batch output is not paged.
	batchRows = 1 << 20
)

// batchSink writes frames as plain lines.
type batchSink struct {
	w    *bufio.Writer
	cols int
	err  error
}

func (s *batchSink) Dimensions() (int, int) { return s.cols, batchRows }

func (s *batchSink) WriteLine(l engine.Line) {
	if s.err != nil {
		return
	}
	if _, err := s.w.WriteString(l.Text); err != nil {
		s.err = err
		return
	}
	s.err = s.w.WriteByte('\n')
}

// batchWidth picks -w, the width of stdout when it is a terminal, or 80.
func batchWidth(opts Options, out io.Writer) int {
	if opts.Width > 0 {
		return opts.Width
	}
	if f, ok := out.(*os.File); ok {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			return w
		}
	}
	return defaultCols
}

// runBatch writes frames to out until the iteration count is reached or
// a terminating signal arrives.
func runBatch(f engine.Framer, opts Options, out io.Writer) error {
	e := f.Base()
	sink := &batchSink{w: bufio.NewWriter(out), cols: batchWidth(opts, out)}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM, syscall.SIGWINCH)
	defer signal.Stop(sig)

	return batchLoop(f, sink, opts.Iterations, func(d time.Duration) {
		timer := time.NewTimer(d)
		defer timer.Stop()
		for {
			select {
			case s := <-sig:
				if s == syscall.SIGWINCH {
					sink.cols = batchWidth(opts, out)
					e.Flags.Resize()
					continue
				}
				e.Flags.Terminate()
				return
			case <-timer.C:
				return
			}
		}
	})
}

// batchLoop runs frames with wait between them. A termination request
// ends the loop cleanly.
func batchLoop(f engine.Framer, sink *batchSink, iterations int, wait func(time.Duration)) error {
	for i := 0; iterations <= 0 || i < iterations; i++ {
		if i > 0 {
			wait(f.Base().Delay)
			sink.WriteLine(engine.Line{})
		}
		err := f.Frame(sink)
		if errors.Is(err, engine.ErrTerminated) {
			return sink.w.Flush()
		}
		if err != nil {
			sink.w.Flush()
			return err
		}
		if err := sink.w.Flush(); err != nil {
			return err
		}
		if sink.err != nil {
			return sink.err
		}
	}
	return nil
}
