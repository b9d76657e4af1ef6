package repository

import (
	"context"
	"time"

	"flux-backend/internal/task/domain"
)

// Table is a positional, spreadsheet-like backing store. Rows and columns are
// 1-based and row 1 holds the headers.
type Table interface {
	// ReadAll returns every row, header included. Trailing empty rows may be omitted.
	ReadAll(ctx context.Context) ([][]string, error)

	// AppendRow writes row after the last non-empty row.
	AppendRow(ctx context.Context, row []string) error

	// UpdateCell overwrites a single cell.
	UpdateCell(ctx context.Context, row, col int, value string) error
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Init writes the header row into an empty table and checks it otherwise.
	Init(ctx context.Context) error

	// Create appends a task and returns its id. The id is the row count at
	// insertion time, so concurrent writers in other processes can collide.
	Create(ctx context.Context, task *domain.NewTask) (string, error)

	// ListAll returns every task, possibly from the read cache.
	ListAll(ctx context.Context) ([]*domain.Task, error)

	// FindByID reads the row addressed by id, bypassing the cache.
	FindByID(ctx context.Context, id string) (*domain.Task, error)

	FilterByStatus(ctx context.Context, status domain.Status) ([]*domain.Task, error)

	// FilterByDateRange returns tasks created within [start, end]. Rows whose
	// date does not parse are skipped.
	FilterByDateRange(ctx context.Context, start, end time.Time) ([]*domain.Task, error)

	// UpdateStatus writes only the status cell and returns the previous status.
	UpdateStatus(ctx context.Context, id string, status domain.Status) (domain.Status, error)

	// UpdateFields writes the recognized, mutable columns in fields and returns the
	// task as stored afterwards. Unknown names are ignored.
	UpdateFields(ctx context.Context, id string, fields map[string]string) (*domain.Task, error)

	// Invalidate drops the read cache.
	Invalidate()
}
