package chip8

import (
	"fmt"
	"io"
)

// Tracer is the per-instruction trace hook. The zero value is disabled and
// costs a nil check per instruction; deferred producers are never invoked
// while disabled.
type Tracer struct {
	w io.Writer
}

// TraceOff returns a disabled tracer.
func TraceOff() Tracer {
	return Tracer{}
}

// TraceTo returns a tracer that appends one line per emission to w.
func TraceTo(w io.Writer) Tracer {
	return Tracer{w: w}
}

// Enabled reports whether emissions reach a sink.
func (t Tracer) Enabled() bool {
	return t.w != nil
}

func (t Tracer) print(s string) {
	if t.w == nil {
		return
	}
	fmt.Fprintln(t.w, s)
}

// lazy emits the produced string, paying the formatting cost only when the
// tracer is enabled.
func (t Tracer) lazy(produce func() string) {
	if t.w == nil {
		return
	}
	fmt.Fprintln(t.w, produce())
}
