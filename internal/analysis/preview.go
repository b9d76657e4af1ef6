package analysis

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	"flux-backend/pkg/filetype"

	"github.com/xuri/excelize/v2"
)

const (
	previewHeadRows = 10
	previewTailRows = 5
	previewCellMax  = 80
)

// SpreadsheetPreview renders a bounded text view of a CSV or XLSX file: the column
// names, the data row count, the first ten rows and, for longer sheets, the last five.
func SpreadsheetPreview(data []byte, filename string) (string, error) {
	var (
		rows [][]string
		err  error
	)
	switch filetype.Extension(filename) {
	case ".csv":
		rows, err = readCSV(data)
	case ".xlsx":
		rows, err = readXLSX(data)
	default:
		return "", fmt.Errorf("no spreadsheet reader for %s", filename)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read spreadsheet %s: %w", filename, err)
	}

	var header []string
	var body [][]string
	if len(rows) > 0 {
		header, body = rows[0], rows[1:]
	}

	var b strings.Builder
	b.WriteString("Spreadsheet Data:\n\n")
	fmt.Fprintf(&b, "Columns: %s\n", strings.Join(header, ", "))
	fmt.Fprintf(&b, "Total Rows: %d\n\n", len(body))

	head := body
	if len(head) > previewHeadRows {
		head = head[:previewHeadRows]
	}
	fmt.Fprintf(&b, "First %d rows:\n%s\n\n", previewHeadRows, renderRows(header, head, 0))

	if len(body) > previewHeadRows {
		tailStart := len(body) - previewTailRows
		if tailStart < previewHeadRows {
			tailStart = previewHeadRows
		}
		fmt.Fprintf(&b, "Last %d rows:\n%s", len(body)-tailStart, renderRows(header, body[tailStart:], tailStart))
	}
	return b.String(), nil
}

func readCSV(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r.ReadAll()
}

func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	return f.GetRows(sheets[0])
}

// renderRows aligns rows under header with a leading row index, like a dataframe dump.
func renderRows(header []string, rows [][]string, offset int) string {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	fmt.Fprint(w, "\t")
	fmt.Fprintln(w, strings.Join(clip(header), "\t"))
	for i, row := range rows {
		cells := make([]string, len(header))
		copy(cells, row)
		if len(row) > len(header) {
			cells = row
		}
		fmt.Fprintf(w, "%d\t%s\n", offset+i, strings.Join(clip(cells), "\t"))
	}
	_ = w.Flush()
	return strings.TrimRight(buf.String(), "\n")
}

func clip(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		c = strings.ReplaceAll(c, "\n", " ")
		if utf8.RuneCountInString(c) > previewCellMax {
			c = truncateRunes(c, previewCellMax-3) + "..."
		}
		out[i] = c
	}
	return out
}
