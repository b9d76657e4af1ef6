package domain

import (
	"strings"
	"time"
)

// TimeLayout is the fixed format of the created_at column.
const TimeLayout = "2006-01-02 15:04:05"

// Column is one entry of the backing table schema. Header is the label stored in the
// first row of the table; Key is the name used by the API.
type Column struct {
	Key    string
	Header string
}

// Columns is the wire contract with the tabular store. Order matters: rows are
// written and read positionally.
var Columns = []Column{
	{Key: "id", Header: "Task ID"},
	{Key: "name", Header: "Task Name"},
	{Key: "created_at", Header: "Upload Date"},
	{Key: "status", Header: "Status"},
	{Key: "category", Header: "File Type"},
	{Key: "evidence_reference", Header: "Evidence Link"},
	{Key: "analysis_result", Header: "AI Summary"},
	{Key: "notes", Header: "Context Notes"},
}

// Headers returns the header row of the task table.
func Headers() []string {
	headers := make([]string, len(Columns))
	for i, c := range Columns {
		headers[i] = c.Header
	}
	return headers
}

// ColumnIndex resolves a column key or header label to its zero-based position.
func ColumnIndex(name string) (int, bool) {
	for i, c := range Columns {
		if c.Key == name || c.Header == name {
			return i, true
		}
	}
	return 0, false
}

// Task is one ingested evidence item or note.
type Task struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	CreatedAt         string   `json:"created_at"`
	Status            Status   `json:"status"`
	Category          Category `json:"category"`
	EvidenceReference string   `json:"evidence_reference"`
	AnalysisResult    string   `json:"analysis_result"`
	Notes             string   `json:"notes"`
}

// CreatedTime parses CreatedAt. Rows edited outside the app may fail to parse.
func (t *Task) CreatedTime() (time.Time, error) {
	return time.ParseInLocation(TimeLayout, strings.TrimSpace(t.CreatedAt), time.Local)
}

// Row renders the task in column order.
func (t *Task) Row() []string {
	return []string{
		t.ID,
		t.Name,
		t.CreatedAt,
		string(t.Status),
		string(t.Category),
		t.EvidenceReference,
		t.AnalysisResult,
		t.Notes,
	}
}

// TaskFromRow decodes a positional row. Short rows are padded with empty cells,
// extra cells are ignored.
func TaskFromRow(row []string) *Task {
	cell := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}
	return &Task{
		ID:                cell(0),
		Name:              cell(1),
		CreatedAt:         cell(2),
		Status:            Status(cell(3)),
		Category:          Category(cell(4)),
		EvidenceReference: cell(5),
		AnalysisResult:    cell(6),
		Notes:             cell(7),
	}
}

// NewTask carries the caller-supplied fields of a task about to be created.
// ID is assigned by the store.
type NewTask struct {
	Name              string
	CreatedAt         time.Time
	Status            Status
	Category          Category
	EvidenceReference string
	AnalysisResult    string
	Notes             string
}

// PlaceholderName is used when neither the model nor the user supplied a title.
func PlaceholderName(now time.Time) string {
	return "Task from " + now.Format("2006-01-02 15:04")
}

// BoardStats counts tasks per workflow stage.
type BoardStats struct {
	Total    int            `json:"total"`
	ByStatus map[Status]int `json:"by_status"`
	Other    int            `json:"other"`
}
