package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/wordscraper/internal/model"
)

// Messages shown on the terminal.
const (
	msgNoWords     = "No words of the specified length were found."
	msgNoMatches   = "No matching words were found."
	msgFoundHeader = "Found words and their locations:"
	msgMissing     = "Words not found:"
	msgTimedOut    = "Crawl stopped at the maximum duration; results are partial."
)

// TextWriter outputs a run as plain text.
//
// Without a summary the output is the bare wordlist, one entry per line,
// suitable for feeding to password tools. With a summary it is the
// terminal view: the unique word count followed by the wordlist, or the
// messages for an empty result.
type TextWriter struct {
	baseWriter

	// summary adds the count line and the empty-result messages.
	summary bool
}

// TextWriterOption configures a TextWriter.
type TextWriterOption func(*TextWriter)

// WithSummary enables the terminal summary.
func WithSummary(summary bool) TextWriterOption {
	return func(w *TextWriter) {
		w.summary = summary
	}
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer, opts ...TextWriterOption) *TextWriter {
	w := &TextWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report as text.
func (w *TextWriter) Write(report *model.RunReport) (int, error) {
	var sb strings.Builder

	if w.summary && report.TimedOut {
		sb.WriteString(msgTimedOut + "\n")
	}

	if report.IsSearch() {
		w.writeSearch(&sb, report.Search)
	} else {
		w.writeWordlist(&sb, report)
	}

	return io.WriteString(w.output, sb.String())
}

// writeWordlist writes each selected word followed by its mutations.
func (w *TextWriter) writeWordlist(sb *strings.Builder, report *model.RunReport) {
	if w.summary {
		if report.Matched == 0 {
			sb.WriteString(msgNoWords + "\n")
			return
		}
		fmt.Fprintf(sb, "\nTotal number of unique words found: %d\n", report.Matched)
	}

	for _, line := range report.Lines() {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
}

// writeSearch writes the found words with their URLs, then the targets
// that were not found.
func (w *TextWriter) writeSearch(sb *strings.Builder, result *model.SearchResult) {
	if result == nil || !result.HasMatches() {
		sb.WriteString(msgNoMatches + "\n")
	} else {
		sb.WriteString("\n" + msgFoundHeader + "\n")
		for _, word := range result.FoundWords() {
			fmt.Fprintf(sb, "- %s:\n", word)
			for _, u := range result.Found[word] {
				fmt.Fprintf(sb, "  * %s\n", u)
			}
		}
	}

	if result == nil || len(result.NotFound) == 0 {
		return
	}
	sb.WriteString("\n" + msgMissing + "\n")
	for _, word := range result.NotFound {
		fmt.Fprintf(sb, "- %s\n", word)
	}
}
