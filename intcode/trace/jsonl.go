package trace

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"os"
	"sync"
)

const fileBufferSize = 64 * 1024

// ErrTraceWriterClosed is returned when WriteStep or Flush is called after Close.
var ErrTraceWriterClosed = errors.New("jsonl trace writer is closed")

// JSONLTraceWriter writes one JSON object per step and line. One writer may be
// shared by every machine in a cluster; SetIdentifiers narrows it to some of them.
type JSONLTraceWriter struct {
	mu      sync.Mutex
	buf     *bufio.Writer
	enc     *json.Encoder
	owned   io.Closer
	closed  bool
	only    map[string]bool
	written uint64
	skipped uint64
}

// NewJSONLTraceWriter wraps w, which Close flushes but does not close.
func NewJSONLTraceWriter(w io.Writer) *JSONLTraceWriter {
	return newWriter(bufio.NewWriter(w), nil)
}

// NewJSONLTraceWriterFile creates (or truncates) path; Close closes the file.
func NewJSONLTraceWriterFile(path string) (*JSONLTraceWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return newWriter(bufio.NewWriterSize(f, fileBufferSize), f), nil
}

func newWriter(buf *bufio.Writer, owned io.Closer) *JSONLTraceWriter {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	return &JSONLTraceWriter{buf: buf, enc: enc, owned: owned}
}

// SetIdentifiers keeps only steps from machines with one of ids. No ids keeps all.
func (w *JSONLTraceWriter) SetIdentifiers(ids ...string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.only = nil
	for _, id := range ids {
		if w.only == nil {
			w.only = make(map[string]bool, len(ids))
		}
		w.only[id] = true
	}
}

func (w *JSONLTraceWriter) WriteStep(step *TraceStep) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrTraceWriterClosed
	}
	if w.only != nil && !w.only[step.Identifier] {
		w.skipped++
		return nil
	}
	if err := w.enc.Encode(step); err != nil {
		return err
	}
	w.written++
	return nil
}

// Counts returns the number of steps written and filtered out.
func (w *JSONLTraceWriter) Counts() (written, skipped uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.written, w.skipped
}

func (w *JSONLTraceWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrTraceWriterClosed
	}
	return w.buf.Flush()
}

// Close flushes and, for file writers, closes the file. Closing twice is a no-op.
func (w *JSONLTraceWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	err := w.buf.Flush()
	if w.owned != nil {
		err = errors.Join(err, w.owned.Close())
	}
	return err
}
