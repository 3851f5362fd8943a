package console

import (
	"bytes"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/valyala/fastjson"
)

// CaptureWriter is an io.Writer that feeds captured output into a
// Buffer, one entry per line. Lines that look like JSON log records have
// their level, message and component fields extracted; everything else
// becomes a plain entry at the default level.
type CaptureWriter struct {
	buffer   *Buffer
	category string
	level    Level

	mu      sync.Mutex
	pending bytes.Buffer
	parsers fastjson.ParserPool
}

// NewCaptureWriter creates a writer that records into buffer under the
// given category (typically "stdout" or "stderr").
func NewCaptureWriter(buffer *Buffer, category string, level Level) *CaptureWriter {
	return &CaptureWriter{
		buffer:   buffer,
		category: category,
		level:    level,
	}
}

// Write implements io.Writer. Partial lines are held until a newline
// arrives.
func (w *CaptureWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	w.pending.Write(p)

	var lines []string
	for {
		raw := w.pending.Bytes()
		idx := bytes.IndexByte(raw, '\n')
		if idx < 0 {
			break
		}
		lines = append(lines, string(raw[:idx]))
		w.pending.Next(idx + 1)
	}
	w.mu.Unlock()

	for _, line := range lines {
		w.emit(line)
	}

	return len(p), nil
}

// Flush records any held partial line as an entry.
func (w *CaptureWriter) Flush() {
	w.mu.Lock()
	line := w.pending.String()
	w.pending.Reset()
	w.mu.Unlock()

	if line != "" {
		w.emit(line)
	}
}

func (w *CaptureWriter) emit(line string) {
	line = strings.TrimRight(line, "\r")
	if strings.TrimSpace(line) == "" {
		return
	}

	entry := Entry{
		Level:    w.level,
		Category: w.category,
		Message:  line,
	}

	if strings.HasPrefix(strings.TrimSpace(line), "{") {
		if parsed, ok := w.parseJSONLine(line); ok {
			entry = parsed
		}
	}

	w.buffer.AddEntry(entry)
}

// parseJSONLine extracts level/msg/component from a structured log line.
func (w *CaptureWriter) parseJSONLine(line string) (Entry, bool) {
	parser := w.parsers.Get()
	defer w.parsers.Put(parser)

	v, err := parser.Parse(line)
	if err != nil {
		return Entry{}, false
	}

	message := firstString(v, "msg", "message")
	if message == "" {
		return Entry{}, false
	}

	level := w.level
	if name := firstString(v, "level", "lvl", "severity"); name != "" {
		if parsed, err := ParseLevel(name); err == nil {
			level = parsed
		}
	}

	category := firstString(v, "component", "category", "source")
	if category == "" {
		category = w.category
	}

	return Entry{
		Level:    level,
		Category: category,
		Message:  message,
	}, true
}

func firstString(v *fastjson.Value, keys ...string) string {
	for _, key := range keys {
		if b := v.GetStringBytes(key); len(b) > 0 {
			return string(b)
		}
	}

	return ""
}

// StdioCapture intercepts process stdout/stderr through pipes, copying
// every byte to both the original stream and a CaptureWriter. Capture is
// opt-in: nothing is touched until Start.
type StdioCapture struct {
	buffer *Buffer

	mu        sync.Mutex
	active    bool
	origOut   *os.File
	origErr   *os.File
	outPipe   *os.File
	errPipe   *os.File
	done      sync.WaitGroup
	outWriter *CaptureWriter
	errWriter *CaptureWriter
}

// NewStdioCapture creates an inactive capture targeting buffer.
func NewStdioCapture(buffer *Buffer) *StdioCapture {
	return &StdioCapture{buffer: buffer}
}

// Start replaces os.Stdout and os.Stderr with pipes. Output still
// reaches the original streams.
func (c *StdioCapture) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active {
		return nil
	}

	outR, outW, err := os.Pipe()
	if err != nil {
		return err
	}
	errR, errW, err := os.Pipe()
	if err != nil {
		outR.Close()
		outW.Close()
		return err
	}

	c.origOut, c.origErr = os.Stdout, os.Stderr
	c.outPipe, c.errPipe = outW, errW
	c.outWriter = NewCaptureWriter(c.buffer, "stdout", LevelInfo)
	c.errWriter = NewCaptureWriter(c.buffer, "stderr", LevelError)

	os.Stdout, os.Stderr = outW, errW

	c.done.Add(2)
	go c.relay(outR, c.origOut, c.outWriter)
	go c.relay(errR, c.origErr, c.errWriter)

	c.active = true

	return nil
}

// Stop restores the original streams and drains the pipes.
func (c *StdioCapture) Stop() {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return
	}

	os.Stdout, os.Stderr = c.origOut, c.origErr
	c.outPipe.Close()
	c.errPipe.Close()
	c.active = false
	c.mu.Unlock()

	c.done.Wait()
	c.outWriter.Flush()
	c.errWriter.Flush()
}

func (c *StdioCapture) relay(r *os.File, orig *os.File, capture *CaptureWriter) {
	defer c.done.Done()
	defer r.Close()

	_, _ = io.Copy(io.MultiWriter(orig, capture), r)
}
