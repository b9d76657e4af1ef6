package usecase

import (
	"context"
	"time"

	"flux-backend/internal/task/domain"
	"flux-backend/pkg/chroma"

	log "github.com/sirupsen/logrus"
)

// hooks runs the optional side effects of a successful write. Neither one can
// fail the write that triggered it.
type hooks struct {
	notifier Notifier
	index    TaskIndex
}

func (h *hooks) SetNotifier(n Notifier) {
	h.notifier = n
}

func (h *hooks) SetTaskIndex(idx TaskIndex) {
	h.index = idx
}

// afterWrite publishes ev when it is not nil and reindexes task.
func (h *hooks) afterWrite(ctx context.Context, task *domain.Task, ev *domain.TaskEvent) {
	if h.notifier != nil && ev != nil {
		h.notifier.Notify(ctx, *ev)
	}
	if h.index != nil && task != nil {
		if err := h.index.UpsertTask(ctx, documentFor(task)); err != nil {
			log.WithField("task_id", task.ID).Warnf("[TaskIndex] Failed to index task: %v", err)
		}
	}
}

func documentFor(t *domain.Task) chroma.TaskDocument {
	return chroma.TaskDocument{
		ID:       t.ID,
		Name:     t.Name,
		Status:   string(t.Status),
		Category: string(t.Category),
		Summary:  t.AnalysisResult,
		Notes:    t.Notes,
	}
}

func createdEvent(t *domain.Task, at time.Time) *domain.TaskEvent {
	return &domain.TaskEvent{
		Type:     domain.EventTaskCreated,
		TaskID:   t.ID,
		Name:     t.Name,
		Category: t.Category,
		Status:   t.Status,
		At:       at,
	}
}
