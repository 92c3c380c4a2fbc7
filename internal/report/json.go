package report

import (
	"encoding/json"
	"io"

	"github.com/ignacioe7/tripscan/internal/model"
)

// JSONWriter outputs datasets and run summaries in JSON format.
// This format is designed for tool integration and programmatic processing.
//
// Design decision: We use standard encoding/json rather than a third-party
// JSON library because:
// 1. It's part of the standard library (no extra dependencies)
// 2. It's sufficient for our needs
// 3. It provides consistent behavior across Go versions
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
// This is a convenience wrapper for WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = ""
		w.indentString = "  "
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// WriteDataset outputs the dataset in JSON format.
func (w *JSONWriter) WriteDataset(ds *model.Dataset) (int, error) {
	return w.writeJSON(ds)
}

// WriteRun outputs the run summary in JSON format.
func (w *JSONWriter) WriteRun(run *model.RunReport) (int, error) {
	return w.writeJSON(run)
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}

// Export wraps a dataset and the run that produced it with version metadata.
// This is used when writing the complete export with contextual information.
//
// Design decision: We wrap the dataset rather than adding fields to
// model.Dataset because this allows us to add output-specific fields
// without polluting the core data structure.
type Export struct {
	// Version is the tripscan version that generated this export.
	Version string `json:"version"`

	// Dataset is the full collected data.
	Dataset *model.Dataset `json:"dataset"`

	// Run is the report of the run that produced the export, if the
	// export follows a run.
	Run *model.RunReport `json:"run,omitempty"`
}

// FullJSONWriter outputs complete exports with metadata wrapper.
type FullJSONWriter struct {
	*JSONWriter

	// version is the tripscan version string.
	version string

	// run is attached to exports when set.
	run *model.RunReport
}

// NewFullJSONWriter creates a writer for complete exports with metadata.
func NewFullJSONWriter(output io.Writer, version string, opts ...JSONWriterOption) *FullJSONWriter {
	return &FullJSONWriter{
		JSONWriter: NewJSONWriter(output, opts...),
		version:    version,
	}
}

// AttachRun includes the given run report in subsequent dataset exports.
func (w *FullJSONWriter) AttachRun(run *model.RunReport) {
	w.run = run
}

// WriteDataset outputs the dataset wrapped with metadata.
func (w *FullJSONWriter) WriteDataset(ds *model.Dataset) (int, error) {
	return w.writeJSON(&Export{
		Version: w.version,
		Dataset: ds,
		Run:     w.run,
	})
}
