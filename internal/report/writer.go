package report

import (
	"io"

	"github.com/ignacioe7/tripscan/internal/model"
)

// Writer defines the interface for report output.
// Implementations write datasets and run results in various formats.
//
// Design decision: We use an interface to allow different output formats
// and destinations. This enables writing to files, stdout, or network
// connections with the same API.
type Writer interface {
	// WriteDataset outputs the exported dataset to the configured
	// destination. Returns the number of bytes written and any error
	// encountered.
	WriteDataset(ds *model.Dataset) (int, error)

	// WriteRun outputs the run summary. The report must no longer be
	// receiving concurrent updates; pass a Snapshot when in doubt.
	WriteRun(run *model.RunReport) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
//
// Design decision: We implement this as a separate type rather than
// using io.MultiWriter because our Writer interface is different
// from io.Writer - we write reports, not raw bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// WriteDataset outputs the dataset to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) WriteDataset(ds *model.Dataset) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteDataset(ds)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteRun outputs the run summary to all configured Writers.
func (m *MultiWriter) WriteRun(run *model.RunReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteRun(run)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
