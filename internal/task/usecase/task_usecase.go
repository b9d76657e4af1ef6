package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"flux-backend/internal/analysis"
	"flux-backend/internal/task/domain"
	"flux-backend/internal/task/repository"
	"flux-backend/pkg/fuzzy"

	log "github.com/sirupsen/logrus"
)

const (
	defaultRecentNotes = 5
	defaultSearchLimit = 10
)

// taskUsecase implements TaskUsecase interface
type taskUsecase struct {
	hooks
	taskRepo repository.TaskRepository
	analyzer Analyzer
	now      func() time.Time
}

// NewTaskUsecase creates a new instance of taskUsecase
func NewTaskUsecase(taskRepo repository.TaskRepository, analyzer Analyzer) TaskUsecase {
	return &taskUsecase{
		taskRepo: taskRepo,
		analyzer: analyzer,
		now:      time.Now,
	}
}

func (u *taskUsecase) ListTasks(ctx context.Context, filter TaskFilter) ([]*domain.Task, error) {
	var status domain.Status
	if filter.Status != "" {
		s, err := domain.ParseStatus(filter.Status)
		if err != nil {
			return nil, err
		}
		status = s
	}

	var (
		tasks []*domain.Task
		err   error
	)
	if filter.Start != "" || filter.End != "" {
		start, end, perr := parseDateRange(filter.Start, filter.End, u.now())
		if perr != nil {
			return nil, perr
		}
		tasks, err = u.taskRepo.FilterByDateRange(ctx, start, end)
	} else {
		tasks, err = u.taskRepo.ListAll(ctx)
	}
	if err != nil {
		return nil, err
	}

	if status == "" {
		return tasks, nil
	}
	filtered := make([]*domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Status == status {
			filtered = append(filtered, t)
		}
	}
	return filtered, nil
}

func (u *taskUsecase) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	return u.taskRepo.FindByID(ctx, id)
}

func (u *taskUsecase) UpdateStatus(ctx context.Context, id, status string) (*domain.Task, error) {
	s, err := domain.ParseStatus(status)
	if err != nil {
		return nil, err
	}

	prev, err := u.taskRepo.UpdateStatus(ctx, id, s)
	if err != nil {
		return nil, err
	}
	task, err := u.taskRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if prev != s {
		u.afterWrite(ctx, task, u.statusEvent(task, prev))
	}
	return task, nil
}

func (u *taskUsecase) UpdateTask(ctx context.Context, id string, fields map[string]string) (*domain.Task, error) {
	var prev domain.Status
	statusValue, changesStatus := statusField(fields)
	if changesStatus {
		if _, err := domain.ParseStatus(statusValue); err != nil {
			return nil, err
		}
		before, err := u.taskRepo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		prev = before.Status
	}

	task, err := u.taskRepo.UpdateFields(ctx, id, fields)
	if err != nil {
		return nil, err
	}

	var ev *domain.TaskEvent
	if changesStatus && prev != task.Status {
		ev = u.statusEvent(task, prev)
	}
	u.afterWrite(ctx, task, ev)
	return task, nil
}

func (u *taskUsecase) Stats(ctx context.Context) (*domain.BoardStats, error) {
	tasks, err := u.taskRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	stats := &domain.BoardStats{
		Total:    len(tasks),
		ByStatus: make(map[domain.Status]int, len(domain.Statuses)),
	}
	for _, s := range domain.Statuses {
		stats.ByStatus[s] = 0
	}
	for _, t := range tasks {
		if t.Status.Valid() {
			stats.ByStatus[t.Status]++
		} else {
			stats.Other++
		}
	}
	return stats, nil
}

func (u *taskUsecase) RecentNotes(ctx context.Context, limit int) ([]*domain.Task, error) {
	if limit <= 0 {
		limit = defaultRecentNotes
	}
	tasks, err := u.taskRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	notes := make([]*domain.Task, 0, limit)
	for i := len(tasks) - 1; i >= 0 && len(notes) < limit; i-- {
		if tasks[i].Category == domain.CategoryNote {
			notes = append(notes, tasks[i])
		}
	}
	return notes, nil
}

func (u *taskUsecase) Search(ctx context.Context, query string, limit int) ([]*SearchHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*SearchHit{}, nil
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	tasks, err := u.taskRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	if u.index != nil {
		hits, err := u.semanticSearch(ctx, tasks, query, limit)
		if err == nil && len(hits) > 0 {
			return hits, nil
		}
		if err != nil {
			log.Warnf("[TaskSearch] Semantic search failed, falling back to fuzzy: %v", err)
		}
	}
	return fuzzySearch(tasks, query, limit), nil
}

func (u *taskUsecase) semanticSearch(ctx context.Context, tasks []*domain.Task, query string, limit int) ([]*SearchHit, error) {
	ids, distances, err := u.index.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*domain.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}

	hits := make([]*SearchHit, 0, len(ids))
	for i, id := range ids {
		task, ok := byID[id]
		if !ok {
			// indexed before the row was edited outside the app
			continue
		}
		score := 0.0
		if i < len(distances) {
			score = 1 / (1 + distances[i])
		}
		hits = append(hits, &SearchHit{Task: task, Score: score, Source: "semantic"})
	}
	return hits, nil
}

func fuzzySearch(tasks []*domain.Task, query string, limit int) []*SearchHit {
	hits := make([]*SearchHit, 0)
	for _, t := range tasks {
		score := fuzzy.TaskRelevanceScore(query, t.Name, t.Notes, t.AnalysisResult)
		if score <= 0 && !fuzzy.FuzzyMatchTask(query, t.Name, t.Notes, t.AnalysisResult) {
			continue
		}
		hits = append(hits, &SearchHit{Task: t, Score: score, Source: "fuzzy"})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

func (u *taskUsecase) Ask(ctx context.Context, question string, withContext bool) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", domain.NewValidationError(domain.ErrEmptyQuestion, "please enter a question")
	}

	taskContext := ""
	if withContext {
		tasks, err := u.taskRepo.ListAll(ctx)
		if err != nil {
			return "", err
		}
		taskContext = analysis.TaskContext(tasks)
	}
	return u.analyzer.Ask(ctx, question, taskContext)
}

func (u *taskUsecase) statusEvent(t *domain.Task, prev domain.Status) *domain.TaskEvent {
	return &domain.TaskEvent{
		Type:           domain.EventTaskStatusChanged,
		TaskID:         t.ID,
		Name:           t.Name,
		Category:       t.Category,
		Status:         t.Status,
		PreviousStatus: prev,
		At:             u.now(),
	}
}

func statusField(fields map[string]string) (string, bool) {
	for name, v := range fields {
		if col, ok := domain.ColumnIndex(name); ok && domain.Columns[col].Key == "status" {
			return v, true
		}
	}
	return "", false
}

// parseDateRange reads YYYY-MM-DD bounds in local time. A missing start means the
// beginning of time, a missing end means today. The end day is included in full.
func parseDateRange(startStr, endStr string, now time.Time) (time.Time, time.Time, error) {
	var start time.Time
	if startStr != "" {
		t, err := time.ParseInLocation(dateLayout, startStr, time.Local)
		if err != nil {
			return time.Time{}, time.Time{}, domain.NewValidationError(domain.ErrInvalidDateRange,
				fmt.Sprintf("invalid start date %q: use YYYY-MM-DD", startStr))
		}
		start = t
	}

	endDay := now
	if endStr != "" {
		t, err := time.ParseInLocation(dateLayout, endStr, time.Local)
		if err != nil {
			return time.Time{}, time.Time{}, domain.NewValidationError(domain.ErrInvalidDateRange,
				fmt.Sprintf("invalid end date %q: use YYYY-MM-DD", endStr))
		}
		endDay = t
	}
	end := endOfDay(endDay)

	if end.Before(start) {
		return time.Time{}, time.Time{}, domain.NewValidationError(domain.ErrInvalidDateRange,
			fmt.Sprintf("start date %s is after end date %s", startStr, end.Format(dateLayout)))
	}
	return start, end, nil
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, t.Location())
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// weekStart returns Monday of the week containing t.
func weekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return startOfDay(t).AddDate(0, 0, -offset)
}
