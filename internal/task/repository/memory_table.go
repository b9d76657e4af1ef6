package repository

import (
	"context"
	"fmt"
	"sync"
)

// MemoryTable is an in-process Table used for local development and tests.
type MemoryTable struct {
	mu   sync.Mutex
	rows [][]string
}

func NewMemoryTable(rows ...[]string) *MemoryTable {
	t := &MemoryTable{}
	for _, r := range rows {
		t.rows = append(t.rows, append([]string(nil), r...))
	}
	return t
}

func (t *MemoryTable) ReadAll(ctx context.Context) ([][]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([][]string, len(t.rows))
	for i, r := range t.rows {
		out[i] = append([]string(nil), r...)
	}
	return out, nil
}

func (t *MemoryTable) AppendRow(ctx context.Context, row []string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.rows = append(t.rows, append([]string(nil), row...))
	return nil
}

func (t *MemoryTable) UpdateCell(ctx context.Context, row, col int, value string) error {
	if row < 1 || col < 1 {
		return fmt.Errorf("invalid cell position R%dC%d", row, col)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	for len(t.rows) < row {
		t.rows = append(t.rows, nil)
	}
	cells := t.rows[row-1]
	for len(cells) < col {
		cells = append(cells, "")
	}
	cells[col-1] = value
	t.rows[row-1] = cells
	return nil
}
