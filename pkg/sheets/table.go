// Package sheets implements the positional task table on a Google Sheets tab.
package sheets

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Table reads and writes one tab of a spreadsheet. Rows and columns are 1-based.
type Table struct {
	srv           *sheets.Service
	spreadsheetID string
	tab           string
}

// NewTable connects to spreadsheetID and checks that tab exists.
func NewTable(ctx context.Context, spreadsheetID, tab string, opts ...option.ClientOption) (*Table, error) {
	srv, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets service: %w", err)
	}

	ss, err := srv.Spreadsheets.Get(spreadsheetID).Fields("sheets(properties(title))").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to open spreadsheet %s: %w", spreadsheetID, err)
	}
	found := false
	for _, s := range ss.Sheets {
		if s.Properties != nil && s.Properties.Title == tab {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("tab %q not found in spreadsheet %s", tab, spreadsheetID)
	}

	log.Infof("[Sheets] Connected to %s/%s", spreadsheetID, tab)
	return &Table{srv: srv, spreadsheetID: spreadsheetID, tab: tab}, nil
}

func (t *Table) ReadAll(ctx context.Context) ([][]string, error) {
	res, err := t.srv.Spreadsheets.Values.Get(t.spreadsheetID, quoteTab(t.tab)).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}

	rows := make([][]string, len(res.Values))
	for i, r := range res.Values {
		row := make([]string, len(r))
		for j, v := range r {
			row[j] = fmt.Sprint(v)
		}
		rows[i] = row
	}
	return rows, nil
}

func (t *Table) AppendRow(ctx context.Context, row []string) error {
	_, err := t.srv.Spreadsheets.Values.Append(t.spreadsheetID, quoteTab(t.tab)+"!A1", valueRange(row)).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}

func (t *Table) UpdateCell(ctx context.Context, row, col int, value string) error {
	_, err := t.srv.Spreadsheets.Values.Update(t.spreadsheetID, CellRange(t.tab, row, col), valueRange([]string{value})).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}

func valueRange(row []string) *sheets.ValueRange {
	cells := make([]interface{}, len(row))
	for i, v := range row {
		cells[i] = v
	}
	return &sheets.ValueRange{Values: [][]interface{}{cells}}
}

// CellRange returns the A1 reference of a single cell, e.g. 'Tasks'!D7.
func CellRange(tab string, row, col int) string {
	return fmt.Sprintf("%s!%s%d", quoteTab(tab), ColumnLetter(col), row)
}

// ColumnLetter converts a 1-based column number to its A1 letters (1 -> A, 27 -> AA).
func ColumnLetter(col int) string {
	var b []byte
	for col > 0 {
		col--
		b = append([]byte{byte('A' + col%26)}, b...)
		col /= 26
	}
	return string(b)
}

func quoteTab(tab string) string {
	return "'" + strings.ReplaceAll(tab, "'", "''") + "'"
}
