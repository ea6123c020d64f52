package simulation

import (
	"fmt"
	"io"
	"sync"
)

// Reporter writes the narration of a run: one line per stored or taken item on out
// and one line per error condition on errOut. Nothing is written after Exited.
type Reporter struct {
	mu     sync.Mutex
	out    io.Writer
	errOut io.Writer
	exited bool
}

func NewReporter(out io.Writer, errOut io.Writer) *Reporter {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	return &Reporter{out: out, errOut: errOut}
}

func (r *Reporter) Produced(worker int, item int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.exited {
		return
	}
	fmt.Fprintf(r.out, "producer %d produced %d\n", worker, item)
}

func (r *Reporter) Consumed(worker int, item int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.exited {
		return
	}
	fmt.Fprintf(r.out, "consumer %d consumed %d\n", worker, item)
}

func (r *Reporter) ErrorCondition(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.exited {
		return
	}
	fmt.Fprintf(r.errOut, "report error condition: %v\n", err)
}

// Exited writes the final line of a run and silences the reporter. Repeated calls write nothing.
func (r *Reporter) Exited() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.exited {
		return
	}
	r.exited = true
	fmt.Fprintln(r.out, "Program exited")
}
