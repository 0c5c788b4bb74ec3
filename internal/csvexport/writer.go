package csvexport

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"fieldextract/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// metaColumns lead every export row; field columns follow.
var metaColumns = []string{
	"Document Name",
	"Record",
	"Status",
	"Mock Data",
	"Error",
}

// Table is a batch response flattened to one row per line item. Placeholder
// results and documents with no line items occupy a single row.
type Table struct {
	Columns []string
	Rows    [][]string
}

// BuildTable flattens results. When fieldNames is empty the field columns are
// the sorted union of every key seen in the results.
func BuildTable(results []domain.DocumentResult, fieldNames []string) Table {
	fields := fieldNames
	if len(fields) == 0 {
		fields = discoverFields(results)
	}

	t := Table{Columns: append(append([]string{}, metaColumns...), fields...)}
	for i := range results {
		r := &results[i]
		switch v := r.ExtractedFields.(type) {
		case []domain.LineItemRecord:
			if len(v) == 0 {
				t.Rows = append(t.Rows, resultRow(r, "", nil, fields))
			}
			for _, rec := range v {
				t.Rows = append(t.Rows, resultRow(r, rec.Filename, rec.Data, fields))
			}
		case map[string]any:
			t.Rows = append(t.Rows, resultRow(r, "", v, fields))
		default:
			t.Rows = append(t.Rows, resultRow(r, "", nil, fields))
		}
	}
	return t
}

func discoverFields(results []domain.DocumentResult) []string {
	seen := map[string]struct{}{}
	add := func(m map[string]any) {
		for k := range m {
			seen[k] = struct{}{}
		}
	}
	for i := range results {
		switch v := results[i].ExtractedFields.(type) {
		case []domain.LineItemRecord:
			for _, rec := range v {
				add(rec.Data)
			}
		case map[string]any:
			add(v)
		}
	}
	fields := make([]string, 0, len(seen))
	for k := range seen {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	return fields
}

func resultRow(r *domain.DocumentResult, record string, data map[string]any, fields []string) []string {
	row := make([]string, 0, len(metaColumns)+len(fields))
	status := "Failed"
	if r.Success {
		status = "Extracted"
	}
	row = append(row, r.Name, record, status, formatBool(r.IsUsingMockData), r.Error)
	for _, f := range fields {
		row = append(row, formatValue(data[f]))
	}
	return row
}

// Writer wraps csv.Writer for exporting batch results as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteTable writes the header row followed by every data row.
func (w *Writer) WriteTable(t Table) error {
	if err := w.csv.Write(t.Columns); err != nil {
		return err
	}
	return w.csv.WriteAll(t.Rows)
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// WriteCSV writes t to out as BOM-prefixed CSV.
func WriteCSV(out io.Writer, t Table) error {
	if _, err := out.Write(BOM); err != nil {
		return err
	}
	w := NewWriter(out)
	if err := w.WriteTable(t); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case bool:
		return formatBool(x)
	case json.Number:
		return x.String()
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
}

func formatBool(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized download name.
// Format: {sanitized_name}_{YYYY-MM-DD}.{ext}
func BuildFilename(name string, now time.Time, format domain.ExportFormat) string {
	sanitized := SanitizeFilename(name)
	if sanitized == "" {
		sanitized = "extraction"
	}
	return fmt.Sprintf("%s_%s.%s", sanitized, now.Format("2006-01-02"), format)
}
