// Package output renders command results as text, markdown, JSON or TOON.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	toon "github.com/toon-format/toon-go"

	"github.com/syntaxai/cargo-syntax/pkg/analyzer/grade"
)

// Format represents an output format.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatTOON     Format = "toon"
)

// ParseFormat converts a string to Format, defaulting to text.
func ParseFormat(s string) Format {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON
	case "markdown", "md":
		return FormatMarkdown
	case "toon":
		return FormatTOON
	default:
		return FormatText
	}
}

// Renderable is a result that can print itself for a terminal or a
// markdown document and hand back the value to serialize otherwise.
type Renderable interface {
	RenderText(w io.Writer, colored bool) error
	RenderMarkdown(w io.Writer) error
	RenderData() any
}

// Formatter writes results in one format to stdout or a file.
type Formatter struct {
	format  Format
	writer  io.Writer
	file    *os.File
	colored bool
}

// NewFormatter creates a formatter. A non-empty path is created and
// written instead of stdout, and is never colored.
func NewFormatter(format Format, path string, colored bool) (*Formatter, error) {
	if path == "" {
		return &Formatter{format: format, writer: os.Stdout, colored: colored}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &Formatter{format: format, writer: f, file: f}, nil
}

// NewWriterFormatter creates a formatter that writes to w.
func NewWriterFormatter(format Format, w io.Writer, colored bool) *Formatter {
	return &Formatter{format: format, writer: w, colored: colored}
}

// Close closes the output file, if any.
func (f *Formatter) Close() error {
	if f.file != nil {
		return f.file.Close()
	}
	return nil
}

func (f *Formatter) Writer() io.Writer { return f.writer }
func (f *Formatter) Format() Format    { return f.format }
func (f *Formatter) Colored() bool     { return f.colored }

// Output writes data in the configured format. Values that are not
// Renderable are serialized as JSON in text mode and fenced in markdown.
func (f *Formatter) Output(data any) error {
	r, ok := data.(Renderable)
	switch f.format {
	case FormatJSON:
		if ok {
			data = r.RenderData()
		}
		return writeJSON(f.writer, data)
	case FormatTOON:
		if ok {
			data = r.RenderData()
		}
		return writeTOON(f.writer, data)
	case FormatMarkdown:
		if ok {
			return r.RenderMarkdown(f.writer)
		}
		fmt.Fprintln(f.writer, "```json")
		if err := writeJSON(f.writer, data); err != nil {
			return err
		}
		_, err := fmt.Fprintln(f.writer, "```")
		return err
	default:
		if ok {
			return r.RenderText(f.writer, f.colored)
		}
		return writeJSON(f.writer, data)
	}
}

func writeJSON(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// writeTOON goes through JSON first so json tags decide the field names.
func writeTOON(w io.Writer, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return err
	}
	out, err := toon.Marshal(generic, toon.WithIndent(2))
	if err != nil {
		return fmt.Errorf("failed to encode toon: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// Table is a per-file listing. Columns whose cells are all numbers, such
// as lines, tokens and T/L, are right-aligned.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Footer  []string
	// Data is serialized in place of the rows when set.
	Data any
}

// NewTable creates a table that wraps data for serialization.
func NewTable(title string, headers []string, rows [][]string, footer []string, data any) *Table {
	return &Table{Title: title, Headers: headers, Rows: rows, Footer: footer, Data: data}
}

// numeric reports, per column, whether every body cell reads as a number.
func (t *Table) numeric() []bool {
	out := make([]bool, len(t.Headers))
	for col := range t.Headers {
		seen := false
		out[col] = true
		for _, row := range t.Rows {
			if col >= len(row) || row[col] == "" {
				continue
			}
			seen = true
			if !isNumber(row[col]) {
				out[col] = false
				break
			}
		}
		out[col] = out[col] && seen
	}
	return out
}

// isNumber accepts counts and ratios with an optional sign, a trailing %
// or k, and a leading #.
func isNumber(s string) bool {
	s = strings.TrimPrefix(s, "#")
	s = strings.TrimRight(s, "%k")
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// RenderData returns Data, or the rows keyed by header.
func (t *Table) RenderData() any {
	if t.Data != nil {
		return t.Data
	}
	result := make([]map[string]string, len(t.Rows))
	for i, row := range t.Rows {
		m := make(map[string]string, len(t.Headers))
		for j, h := range t.Headers {
			if j < len(row) {
				m[h] = row[j]
			}
		}
		result[i] = m
	}
	return result
}

func (t *Table) RenderText(w io.Writer, colored bool) error {
	if t.Title != "" {
		if colored {
			color.New(color.Bold).Fprintln(w, t.Title)
		} else {
			fmt.Fprintln(w, t.Title)
		}
		fmt.Fprintln(w, strings.Repeat("=", len(t.Title)))
		fmt.Fprintln(w)
	}

	align := make([]tw.Align, len(t.Headers))
	for i, num := range t.numeric() {
		align[i] = tw.AlignLeft
		if num {
			align[i] = tw.AlignRight
		}
	}
	cells := tw.CellAlignment{Global: tw.AlignLeft, PerColumn: align}

	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Header: tw.CellConfig{
				Alignment:  cells,
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
			},
			Row:    tw.CellConfig{Alignment: cells},
			Footer: tw.CellConfig{Alignment: cells},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.Border{Left: tw.Off, Right: tw.Off, Top: tw.Off, Bottom: tw.Off},
			Settings: tw.Settings{
				Separators: tw.Separators{BetweenColumns: tw.Off},
			},
		}),
	)

	table.Header(t.Headers)
	for _, row := range t.Rows {
		if err := table.Append(row); err != nil {
			return err
		}
	}
	if len(t.Footer) > 0 {
		footer := make([]any, len(t.Footer))
		for i, cell := range t.Footer {
			footer[i] = cell
		}
		table.Footer(footer...)
	}
	if err := table.Render(); err != nil {
		return err
	}
	fmt.Fprintln(w)
	return nil
}

func (t *Table) RenderMarkdown(w io.Writer) error {
	if t.Title != "" {
		fmt.Fprintf(w, "## %s\n\n", t.Title)
	}
	fmt.Fprintf(w, "| %s |\n", strings.Join(t.Headers, " | "))

	seps := make([]string, len(t.Headers))
	for i, num := range t.numeric() {
		seps[i] = "---"
		if num {
			seps[i] = "---:"
		}
	}
	fmt.Fprintf(w, "| %s |\n", strings.Join(seps, " | "))

	for _, row := range t.Rows {
		fmt.Fprintf(w, "| %s |\n", strings.Join(row, " | "))
	}
	if len(t.Footer) > 0 {
		fmt.Fprintf(w, "| %s |\n", strings.Join(t.Footer, " | "))
	}
	fmt.Fprintln(w)
	return nil
}

// GradeColor paints text in the terminal colour closest to g's badge colour.
func GradeColor(g grade.Grade, text string) string {
	switch g.Color {
	case "brightgreen":
		return color.New(color.FgHiGreen, color.Bold).Sprint(text)
	case "green":
		return color.GreenString(text)
	case "blue":
		return color.BlueString(text)
	case "orange":
		return color.YellowString(text)
	case "red":
		return color.RedString(text)
	default:
		return text
	}
}
