package report

import (
	"io"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/nao1215/wordscraper/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.RunReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeCrawl(md, report)

	if report.IsSearch() {
		w.writeSearch(md, report.Search)
	} else {
		w.writeWords(md, report)
	}

	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.RunReport) {
	md.H1("Wordscraper Report")
	md.PlainText("")

	rows := [][]string{
		{"Seed", "`" + report.Seed + "`"},
		{"Depth", strconv.Itoa(report.Depth)},
		{"Started", report.DateStarted.Format("2006-01-02 15:04:05 MST")},
		{"Duration", report.Duration().Round(10*time.Millisecond).String()},
		{"Status", w.getStatusText(report)},
	}
	if report.IsSearch() {
		rows = append(rows, []string{"Targets", strings.Join(report.Targets, ", ")})
	} else {
		rows = append(rows, []string{"Length Filter", lengthFilterText(report)})
		rows = append(rows, []string{"Mutations", mutationText(report)})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")

	switch {
	case report.ErrorMessage != "":
		md.Cautionf("The run ended early: %s", report.ErrorMessage)
		md.PlainText("")
	case report.TimedOut:
		md.Warningf("The crawl reached its maximum duration after %d page(s); results are partial.", report.Visited)
		md.PlainText("")
	}
}

// getStatusText returns the status text based on report state.
func (w *MarkdownWriter) getStatusText(report *model.RunReport) string {
	if report.ErrorMessage != "" {
		return "❌ Error - " + report.ErrorMessage
	}
	if report.TimedOut {
		return "⚠️ Timed Out (partial results)"
	}
	return "✅ Complete"
}

// writeCrawl writes the crawl statistics section.
func (w *MarkdownWriter) writeCrawl(md *markdown.Markdown, report *model.RunReport) {
	md.H2("Crawl")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Count"},
		Rows: [][]string{
			{"Pages Visited", strconv.Itoa(report.Visited)},
			{"Pages Fetched", strconv.Itoa(len(report.Pages))},
			{"Pages Failed", strconv.Itoa(len(report.Failed))},
			{"Unique Words", strconv.Itoa(report.UniqueWords)},
		},
	})
	md.PlainText("")

	if len(report.Pages) > 0 && len(report.Failed) > 0 {
		w.writePieChart(md, report)
	}

	if len(report.Failed) > 0 {
		failures := make([]string, len(report.Failed))
		for i, f := range report.Failed {
			failures[i] = "`" + f.URL + "`: " + f.Reason
		}
		md.Details("Failed pages", strings.Join(failures, "\n"))
		md.PlainText("")
	}
}

// writePieChart writes a mermaid pie chart of fetched and failed pages.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, report *model.RunReport) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Fetch Outcome"),
		piechart.WithShowData(true),
	)
	chart.LabelAndIntValue("Fetched", uint64(len(report.Pages)))
	chart.LabelAndIntValue("Failed", uint64(len(report.Failed)))

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeWords writes the selected words and their mutations.
func (w *MarkdownWriter) writeWords(md *markdown.Markdown, report *model.RunReport) {
	md.H2("Words")
	md.PlainText("")

	if len(report.Selected) == 0 {
		md.Note(msgNoWords)
		md.PlainText("")
		return
	}

	md.PlainTextf("%d unique word(s) matched the length filter; showing the top %d.",
		report.Matched, len(report.Selected))
	md.PlainText("")

	rows := make([][]string, len(report.Selected))
	for i, entry := range report.Selected {
		rows[i] = []string{
			strconv.Itoa(i + 1),
			entry.Word,
			strconv.Itoa(utf8.RuneCountInString(entry.Word)),
			strconv.Itoa(len(entry.Mutations)),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Rank", "Word", "Length", "Mutations"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, entry := range report.Selected {
		if len(entry.Mutations) > 0 {
			md.Details(entry.Word, strings.Join(entry.Mutations, " "))
		}
	}
	md.PlainText("")
}

// writeSearch writes the found words with their URLs, then the misses.
func (w *MarkdownWriter) writeSearch(md *markdown.Markdown, result *model.SearchResult) {
	md.H2("Search")
	md.PlainText("")

	if result == nil || !result.HasMatches() {
		md.Note(msgNoMatches)
		md.PlainText("")
	} else {
		words := result.FoundWords()
		rows := make([][]string, len(words))
		for i, word := range words {
			rows[i] = []string{word, strconv.Itoa(len(result.Found[word])), strings.Join(result.Found[word], "<br>")}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Word", "Pages", "URLs"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	if result != nil && len(result.NotFound) > 0 {
		md.PlainText("### " + msgMissing)
		md.PlainText("")
		md.BulletList(result.NotFound...)
		md.PlainText("")
	}
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [wordscraper](https://github.com/nao1215/wordscraper)*")
}

func lengthFilterText(report *model.RunReport) string {
	switch {
	case report.ExactLength > 0:
		return "exactly " + strconv.Itoa(report.ExactLength)
	case report.MinLength > 0:
		return "at least " + strconv.Itoa(report.MinLength)
	default:
		return "none"
	}
}

func mutationText(report *model.RunReport) string {
	if !report.Mutate {
		return "off"
	}
	parts := []string{"case"}
	if report.Leet {
		parts = append(parts, "leet")
	}
	if report.Chars {
		parts = append(parts, "chars")
	}
	return strings.Join(parts, ", ")
}
