package report

import (
	"io"

	"github.com/nao1215/wordscraper/internal/model"
)

// Writer renders a finished run.
type Writer interface {
	// Write renders report and returns the number of bytes written.
	Write(report *model.RunReport) (int, error)
}

// baseWriter holds the destination shared by all writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
