package report

import (
	"bytes"
	"encoding/json"
	"io"
	"time"

	"github.com/nao1215/wordscraper/internal/model"
)

// toolName identifies reports written by wordscraper.
const toolName = "wordscraper"

// JSONWriter renders a run as JSON, either the bare RunReport or wrapped
// in an Envelope when a version is set.
type JSONWriter struct {
	baseWriter

	// indent is the per-level indentation; empty means compact output.
	indent string

	// version enables the envelope when non-empty.
	version string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent indents nested values with indent, e.g. "  " or "\t".
func WithIndent(indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = indent
	}
}

// WithVersion wraps the report in an Envelope carrying version.
func WithVersion(version string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.version = version
	}
}

// NewJSONWriter creates a JSONWriter that writes to output.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Envelope is the versioned JSON document written by the crawl command.
type Envelope struct {
	Tool           string           `json:"tool"`
	Version        string           `json:"version"`
	GeneratedAt    time.Time        `json:"generated_at"`
	DurationMillis int64            `json:"duration_ms"`
	Report         *model.RunReport `json:"report"`
}

// NewEnvelope wraps report with tool metadata.
func NewEnvelope(report *model.RunReport, version string) *Envelope {
	return &Envelope{
		Tool:           toolName,
		Version:        version,
		GeneratedAt:    time.Now().UTC(),
		DurationMillis: report.Duration().Milliseconds(),
		Report:         report,
	}
}

// Write renders the report followed by a newline.
func (w *JSONWriter) Write(report *model.RunReport) (int, error) {
	var v any = report
	if w.version != "" {
		v = NewEnvelope(report, w.version)
	}

	// URLs routinely contain '&'; keep them readable.
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if w.indent != "" {
		enc.SetIndent("", w.indent)
	}
	if err := enc.Encode(v); err != nil {
		return 0, err
	}
	return w.output.Write(buf.Bytes())
}
