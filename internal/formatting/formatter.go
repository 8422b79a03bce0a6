package formatting

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"sigs.k8s.io/yaml"
)

// OutputFormat selects how command results are rendered.
type OutputFormat string

const (
	// OutputFormatTable renders a table for people.
	OutputFormatTable OutputFormat = "table"
	// OutputFormatJSON renders indented JSON.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatYAML renders YAML converted from the JSON form.
	OutputFormatYAML OutputFormat = "yaml"
)

// maxCellWidth truncates long cell values in table output.
const maxCellWidth = 100

// ParseOutputFormat validates an --output flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case OutputFormatTable, OutputFormatJSON, OutputFormatYAML:
		return f, nil
	case "":
		return OutputFormatTable, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (use table, json or yaml)", s)
	}
}

// Table is the tabular view of a result.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Formatter writes results in one output format.
type Formatter struct {
	out    io.Writer
	format OutputFormat
}

// New returns a formatter writing to out.
func New(out io.Writer, format OutputFormat) *Formatter {
	return &Formatter{out: out, format: format}
}

// Format returns the output format.
func (f *Formatter) Format() OutputFormat { return f.format }

// Write renders tbl for table output and data for json and yaml output.
func (f *Formatter) Write(tbl Table, data any) error {
	switch f.format {
	case OutputFormatJSON:
		return f.writeJSON(data)
	case OutputFormatYAML:
		return f.writeYAML(data)
	default:
		return f.writeTable(tbl)
	}
}

// WriteJSONText writes text that is already JSON in the selected format.
// Table output falls back to the JSON text itself.
func (f *Formatter) WriteJSONText(jsonText string) error {
	switch f.format {
	case OutputFormatYAML:
		data, err := yaml.JSONToYAML([]byte(jsonText))
		if err != nil {
			return fmt.Errorf("failed to convert to YAML: %w", err)
		}
		_, err = f.out.Write(data)
		return err
	default:
		_, err := fmt.Fprintln(f.out, jsonText)
		return err
	}
}

func (f *Formatter) writeJSON(data any) error {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	_, err = fmt.Fprintln(f.out, string(out))
	return err
}

func (f *Formatter) writeYAML(data any) error {
	out, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to convert to YAML: %w", err)
	}
	_, err = f.out.Write(out)
	return err
}

func (f *Formatter) writeTable(tbl Table) error {
	if len(tbl.Rows) == 0 {
		_, err := fmt.Fprintln(f.out, text.FgYellow.Sprint("No items found"))
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(f.out)
	t.SetStyle(table.StyleRounded)

	header := make(table.Row, len(tbl.Headers))
	for i, h := range tbl.Headers {
		header[i] = text.FgHiCyan.Sprint(strings.ToUpper(h))
	}
	t.AppendHeader(header)

	for _, r := range tbl.Rows {
		row := make(table.Row, len(r))
		for i, cell := range r {
			row[i] = truncate(cell)
		}
		t.AppendRow(row)
	}
	t.Render()
	return nil
}

func truncate(s string) string {
	if len(s) > maxCellWidth {
		return s[:maxCellWidth-3] + "..."
	}
	return s
}
