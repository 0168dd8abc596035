package log

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"time"
)

// TraceLogger emits single-line hex dumps of packet payloads crossing a
// link, with a direction tag per line.
type TraceLogger interface {
	Packet(deviceToHost bool, data []byte)
}

// traceLogger implements TraceLogger with serialized writes.
type traceLogger struct {
	w  io.Writer
	mu sync.Mutex
}

// NewTrace creates a TraceLogger writing to w. A nil writer returns a
// no-op logger, so callers dump unconditionally and configuration decides.
func NewTrace(w io.Writer) TraceLogger {
	return &traceLogger{w: w}
}

// Packet logs one payload with a timestamp and hex dump. deviceToHost
// true tags the line D->H, false tags it H->D. Empty payloads are
// dropped.
func (t *traceLogger) Packet(deviceToHost bool, data []byte) {
	if len(data) == 0 || t.w == nil {
		return
	}

	dir := "H->D"
	if deviceToHost {
		dir = "D->H"
	}

	var hexbuf bytes.Buffer
	const hexdigits = "0123456789abcdef"
	for i, b := range data {
		if i > 0 {
			hexbuf.WriteByte(' ')
		}
		hexbuf.WriteByte(hexdigits[b>>4])
		hexbuf.WriteByte(hexdigits[b&0x0f])
	}

	line := fmt.Sprintf("%s %s packet: %d bytes, hex: %s\n",
		time.Now().Format("2006/01/02 15:04:05"),
		dir,
		len(data),
		hexbuf.String())

	t.mu.Lock()
	_, _ = t.w.Write([]byte(line))
	t.mu.Unlock()
}
