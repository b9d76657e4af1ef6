package repository

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"flux-backend/internal/task/domain"
	"flux-backend/pkg/metrics"

	log "github.com/sirupsen/logrus"
)

// immutableColumns cannot be changed through UpdateFields.
var immutableColumns = map[string]bool{
	"id":       true,
	"category": true,
}

// tableRepository implements TaskRepository over a positional Table.
type tableRepository struct {
	table Table
	cache *listCache
	now   func() time.Time

	// createMu serializes id allocation inside this process only.
	createMu sync.Mutex
}

// NewTableRepository creates a TaskRepository whose list reads are cached for cacheTTL.
func NewTableRepository(table Table, cacheTTL time.Duration) TaskRepository {
	return newTableRepository(table, cacheTTL, time.Now)
}

func newTableRepository(table Table, cacheTTL time.Duration, now func() time.Time) *tableRepository {
	return &tableRepository{
		table: table,
		cache: newListCache(cacheTTL, now),
		now:   now,
	}
}

func (r *tableRepository) Init(ctx context.Context) error {
	values, err := r.readAll(ctx, "init")
	if err != nil {
		return err
	}
	if len(values) == 0 || isEmptyRow(values[0]) {
		if err := r.table.AppendRow(ctx, domain.Headers()); err != nil {
			return fmt.Errorf("failed to write header row: %w", err)
		}
		log.Info("[TaskStore] Initialized table with headers")
		return nil
	}

	headers := domain.Headers()
	for i, want := range headers {
		got := ""
		if i < len(values[0]) {
			got = strings.TrimSpace(values[0][i])
		}
		if got != want {
			return fmt.Errorf("%w: column %d is %q, want %q", domain.ErrSchemaMismatch, i+1, got, want)
		}
	}
	return nil
}

func (r *tableRepository) Create(ctx context.Context, in *domain.NewTask) (string, error) {
	status := in.Status
	if status == "" {
		status = domain.StatusInReview
	}
	if !status.Valid() {
		_, err := domain.ParseStatus(string(status))
		return "", err
	}

	createdAt := in.CreatedAt
	if createdAt.IsZero() {
		createdAt = r.now()
	}
	name := in.Name
	if strings.TrimSpace(name) == "" {
		name = domain.PlaceholderName(createdAt)
	}

	r.createMu.Lock()
	defer r.createMu.Unlock()
	defer r.cache.invalidate()

	values, err := r.readAll(ctx, "create")
	if err != nil {
		return "", err
	}
	if len(values) == 0 {
		if err := r.table.AppendRow(ctx, domain.Headers()); err != nil {
			return "", fmt.Errorf("failed to write header row: %w", err)
		}
		values = append(values, domain.Headers())
	}

	task := &domain.Task{
		ID:                strconv.Itoa(len(values)),
		Name:              name,
		CreatedAt:         createdAt.Format(domain.TimeLayout),
		Status:            status,
		Category:          in.Category,
		EvidenceReference: in.EvidenceReference,
		AnalysisResult:    in.AnalysisResult,
		Notes:             in.Notes,
	}

	start := time.Now()
	if err := r.table.AppendRow(ctx, task.Row()); err != nil {
		return "", fmt.Errorf("failed to append task row: %w", err)
	}
	d := metrics.ObserveCall("table", "append", start)

	log.WithFields(log.Fields{"task_id": task.ID, "duration_ms": d.Milliseconds()}).
		Infof("[TaskStore] Created task %q", task.Name)
	return task.ID, nil
}

func (r *tableRepository) ListAll(ctx context.Context) ([]*domain.Task, error) {
	tasks, generation, ok := r.cache.get()
	if ok {
		return tasks, nil
	}

	values, err := r.readAll(ctx, "list")
	if err != nil {
		return nil, err
	}
	tasks = decodeRows(values)
	r.cache.set(tasks, generation)
	return tasks, nil
}

func (r *tableRepository) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	_, task, err := r.locate(ctx, id)
	return task, err
}

func (r *tableRepository) FilterByStatus(ctx context.Context, status domain.Status) ([]*domain.Task, error) {
	tasks, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	filtered := make([]*domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Status == status {
			filtered = append(filtered, t)
		}
	}
	return filtered, nil
}

func (r *tableRepository) FilterByDateRange(ctx context.Context, start, end time.Time) ([]*domain.Task, error) {
	tasks, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return FilterTasksByDateRange(tasks, start, end), nil
}

func (r *tableRepository) UpdateStatus(ctx context.Context, id string, status domain.Status) (domain.Status, error) {
	if !status.Valid() {
		_, err := domain.ParseStatus(string(status))
		return "", err
	}

	row, task, err := r.locate(ctx, id)
	if err != nil {
		return "", err
	}
	defer r.cache.invalidate()

	col, _ := domain.ColumnIndex("status")
	start := time.Now()
	if err := r.table.UpdateCell(ctx, row, col+1, string(status)); err != nil {
		return "", fmt.Errorf("failed to update status of task %s: %w", id, err)
	}
	d := metrics.ObserveCall("table", "update_cell", start)

	log.WithFields(log.Fields{"task_id": id, "duration_ms": d.Milliseconds()}).
		Infof("[TaskStore] Status %s -> %s", task.Status, status)
	return task.Status, nil
}

func (r *tableRepository) UpdateFields(ctx context.Context, id string, fields map[string]string) (*domain.Task, error) {
	if v, ok := lookupField(fields, "status"); ok {
		if _, err := domain.ParseStatus(v); err != nil {
			return nil, err
		}
	}

	row, task, err := r.locate(ctx, id)
	if err != nil {
		return nil, err
	}

	// Resolve every name first so writes happen in column order.
	updates := map[int]string{}
	for name, value := range fields {
		col, ok := domain.ColumnIndex(name)
		if !ok || immutableColumns[domain.Columns[col].Key] {
			continue
		}
		updates[col] = value
	}
	if len(updates) == 0 {
		return task, nil
	}
	defer r.cache.invalidate()

	cols := make([]int, 0, len(updates))
	for col := range updates {
		cols = append(cols, col)
	}
	sort.Ints(cols)

	cells := task.Row()
	for _, col := range cols {
		if err := r.table.UpdateCell(ctx, row, col+1, updates[col]); err != nil {
			return nil, fmt.Errorf("failed to update %s of task %s: %w", domain.Columns[col].Key, id, err)
		}
		cells[col] = updates[col]
	}

	log.WithField("task_id", id).Infof("[TaskStore] Updated %d field(s)", len(cols))
	return domain.TaskFromRow(cells), nil
}

func (r *tableRepository) Invalidate() {
	r.cache.invalidate()
}

// locate maps id to its 1-based table row, reading the table directly. The row at
// that position must carry the same id; otherwise the task is reported missing
// rather than writing into whatever row is there.
func (r *tableRepository) locate(ctx context.Context, id string) (int, *domain.Task, error) {
	n, err := strconv.Atoi(strings.TrimSpace(id))
	if err != nil || n < 1 {
		return 0, nil, fmt.Errorf("%w: %q", domain.ErrTaskNotFound, id)
	}

	values, err := r.readAll(ctx, "locate")
	if err != nil {
		return 0, nil, err
	}
	if n >= len(values) {
		return 0, nil, fmt.Errorf("%w: %s", domain.ErrTaskNotFound, id)
	}
	task := domain.TaskFromRow(values[n])
	if strings.TrimSpace(task.ID) != strconv.Itoa(n) {
		return 0, nil, fmt.Errorf("%w: %s (row %d holds %q)", domain.ErrTaskNotFound, id, n+1, task.ID)
	}
	// header occupies row 1
	return n + 1, task, nil
}

func (r *tableRepository) readAll(ctx context.Context, op string) ([][]string, error) {
	start := time.Now()
	values, err := r.table.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read task table: %w", err)
	}
	metrics.ObserveCall("table", "read_all", start)
	log.WithField("op", op).Debugf("[TaskStore] Read %d rows in %s", len(values), time.Since(start))
	return values, nil
}

// FilterTasksByDateRange keeps tasks whose created_at parses and lies in [start, end].
func FilterTasksByDateRange(tasks []*domain.Task, start, end time.Time) []*domain.Task {
	filtered := make([]*domain.Task, 0, len(tasks))
	for _, t := range tasks {
		created, err := t.CreatedTime()
		if err != nil {
			continue
		}
		if !created.Before(start) && !created.After(end) {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

func decodeRows(values [][]string) []*domain.Task {
	tasks := make([]*domain.Task, 0, len(values))
	for i, row := range values {
		if i == 0 || isEmptyRow(row) {
			continue
		}
		tasks = append(tasks, domain.TaskFromRow(row))
	}
	return tasks
}

func isEmptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func lookupField(fields map[string]string, key string) (string, bool) {
	for name, v := range fields {
		if col, ok := domain.ColumnIndex(name); ok && domain.Columns[col].Key == key {
			return v, true
		}
	}
	return "", false
}
