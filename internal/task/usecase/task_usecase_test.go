package usecase

import (
	"context"
	"testing"
	"time"

	"flux-backend/internal/task/domain"
	"flux-backend/internal/task/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTaskUsecase(t *testing.T) (*taskUsecase, repository.TaskRepository, *fakeAnalyzer) {
	t.Helper()
	repo := newTestRepo(t)
	analyzer := &fakeAnalyzer{answer: "Focus on the review queue."}
	u := &taskUsecase{taskRepo: repo, analyzer: analyzer, now: func() time.Time { return fixedNow }}
	return u, repo, analyzer
}

func TestListTasksFilters(t *testing.T) {
	u, repo, _ := newTestTaskUsecase(t)
	day := func(d int) time.Time { return time.Date(2024, 5, d, 9, 0, 0, 0, time.Local) }
	seedTask(t, repo, "a", domain.StatusDone, domain.CategoryVideo, day(1))
	seedTask(t, repo, "b", domain.StatusInReview, domain.CategoryImage, day(3))
	seedTask(t, repo, "c", domain.StatusDone, domain.CategoryNote, day(6))
	ctx := context.Background()

	all, err := u.ListTasks(ctx, TaskFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	done, err := u.ListTasks(ctx, TaskFilter{Status: "Done"})
	require.NoError(t, err)
	require.Len(t, done, 2)
	assert.Equal(t, "a", done[0].Name)

	ranged, err := u.ListTasks(ctx, TaskFilter{Start: "2024-05-03", End: "2024-05-06", Status: "Done"})
	require.NoError(t, err)
	require.Len(t, ranged, 1)
	assert.Equal(t, "c", ranged[0].Name)

	_, err = u.ListTasks(ctx, TaskFilter{Status: "Blocked"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	_, err = u.ListTasks(ctx, TaskFilter{Start: "05/03/2024"})
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)

	_, err = u.ListTasks(ctx, TaskFilter{Start: "2024-05-06", End: "2024-05-01"})
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)
}

func TestUpdateStatusPublishesTransition(t *testing.T) {
	u, repo, _ := newTestTaskUsecase(t)
	notifier := &fakeNotifier{}
	index := &fakeIndex{}
	u.SetNotifier(notifier)
	u.SetTaskIndex(index)
	id := seedTask(t, repo, "a", domain.StatusInReview, domain.CategoryVideo, fixedNow)

	task, err := u.UpdateStatus(context.Background(), id, "Passed In Review")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPassedInReview, task.Status)

	require.Len(t, notifier.events, 1)
	ev := notifier.events[0]
	assert.Equal(t, domain.EventTaskStatusChanged, ev.Type)
	assert.Equal(t, domain.StatusInReview, ev.PreviousStatus)
	assert.Equal(t, domain.StatusPassedInReview, ev.Status)
	assert.Equal(t, "Passed In Review", index.docs[id].Status)

	// setting the same status again is not a transition
	_, err = u.UpdateStatus(context.Background(), id, "Passed In Review")
	require.NoError(t, err)
	assert.Len(t, notifier.events, 1)
}

func TestUpdateStatusRejectsBeforeWrite(t *testing.T) {
	u, repo, _ := newTestTaskUsecase(t)
	id := seedTask(t, repo, "a", domain.StatusInReview, domain.CategoryVideo, fixedNow)

	_, err := u.UpdateStatus(context.Background(), id, "Shipped")
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	_, err = u.UpdateStatus(context.Background(), "42", "Done")
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)

	got, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInReview, got.Status)
}

func TestUpdateTaskIgnoresImmutableAndUnknownFields(t *testing.T) {
	u, repo, _ := newTestTaskUsecase(t)
	notifier := &fakeNotifier{}
	u.SetNotifier(notifier)
	id := seedTask(t, repo, "a", domain.StatusInReview, domain.CategoryVideo, fixedNow)

	task, err := u.UpdateTask(context.Background(), id, map[string]string{
		"name":     "renamed",
		"category": "image",
		"color":    "blue",
	})
	require.NoError(t, err)
	assert.Equal(t, "renamed", task.Name)
	assert.Equal(t, domain.CategoryVideo, task.Category)
	assert.Empty(t, notifier.events)

	task, err = u.UpdateTask(context.Background(), id, map[string]string{"Status": "Done"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDone, task.Status)
	require.Len(t, notifier.events, 1)
	assert.Equal(t, domain.StatusInReview, notifier.events[0].PreviousStatus)

	_, err = u.UpdateTask(context.Background(), id, map[string]string{"status": "Nope"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestStatsCountsPerStatus(t *testing.T) {
	u, repo, _ := newTestTaskUsecase(t)
	seedTask(t, repo, "a", domain.StatusDone, domain.CategoryVideo, fixedNow)
	seedTask(t, repo, "b", domain.StatusDone, domain.CategoryVideo, fixedNow)
	seedTask(t, repo, "c", domain.StatusInStage, domain.CategoryVideo, fixedNow)

	stats, err := u.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.ByStatus[domain.StatusDone])
	assert.Equal(t, 1, stats.ByStatus[domain.StatusInStage])
	assert.Equal(t, 0, stats.ByStatus[domain.StatusInReview])
	assert.Zero(t, stats.Other)
}

func TestStatsOtherBucket(t *testing.T) {
	table := repository.NewMemoryTable(domain.Headers(),
		[]string{"1", "a", "2024-05-01 10:00:00", "Done", "video"},
		[]string{"2", "b", "2024-05-01 10:00:00", "Blocked", "video"},
	)
	repo := repository.NewTableRepository(table, time.Minute)
	u := &taskUsecase{taskRepo: repo, now: time.Now}

	stats, err := u.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.ByStatus[domain.StatusDone])
	assert.Equal(t, 1, stats.Other)
}

func TestRecentNotesNewestFirst(t *testing.T) {
	u, repo, _ := newTestTaskUsecase(t)
	seedTask(t, repo, "n1", domain.StatusInReview, domain.CategoryNote, fixedNow)
	seedTask(t, repo, "v", domain.StatusInReview, domain.CategoryVideo, fixedNow)
	seedTask(t, repo, "n2", domain.StatusInReview, domain.CategoryNote, fixedNow)
	seedTask(t, repo, "n3", domain.StatusInReview, domain.CategoryNote, fixedNow)

	notes, err := u.RecentNotes(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "n3", notes[0].Name)
	assert.Equal(t, "n2", notes[1].Name)
}

func TestSearchFallsBackToFuzzy(t *testing.T) {
	u, repo, _ := newTestTaskUsecase(t)
	seedTask(t, repo, "Checkout payment flow", domain.StatusDone, domain.CategoryVideo, fixedNow)
	seedTask(t, repo, "Login screen", domain.StatusDone, domain.CategoryImage, fixedNow)

	hits, err := u.Search(context.Background(), "payment", 0)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "Checkout payment flow", hits[0].Task.Name)
	assert.Equal(t, "fuzzy", hits[0].Source)

	u.SetTaskIndex(&fakeIndex{searchErr: errBoom})
	hits, err = u.Search(context.Background(), "payment", 0)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "fuzzy", hits[0].Source)

	hits, err = u.Search(context.Background(), "  ", 0)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearchUsesSemanticIndex(t *testing.T) {
	u, repo, _ := newTestTaskUsecase(t)
	seedTask(t, repo, "a", domain.StatusDone, domain.CategoryVideo, fixedNow)
	seedTask(t, repo, "b", domain.StatusDone, domain.CategoryVideo, fixedNow)
	u.SetTaskIndex(&fakeIndex{ids: []string{"2", "99", "1"}, distances: []float64{0, 0.5, 1}})

	hits, err := u.Search(context.Background(), "anything", 5)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "b", hits[0].Task.Name)
	assert.Equal(t, "semantic", hits[0].Source)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-9)
	assert.InDelta(t, 0.5, hits[1].Score, 1e-9)
}

func TestAskBuildsContextOnRequest(t *testing.T) {
	u, repo, analyzer := newTestTaskUsecase(t)
	seedTask(t, repo, "a", domain.StatusDone, domain.CategoryVideo, fixedNow)

	answer, err := u.Ask(context.Background(), "what is left?", true)
	require.NoError(t, err)
	assert.Equal(t, "Focus on the review queue.", answer)
	assert.Contains(t, analyzer.lastContext, "You have 1 tasks in total.")

	_, err = u.Ask(context.Background(), "general question", false)
	require.NoError(t, err)
	assert.Empty(t, analyzer.lastContext)

	_, err = u.Ask(context.Background(), " ", true)
	assert.ErrorIs(t, err, domain.ErrEmptyQuestion)
}

func TestWeekStartIsMonday(t *testing.T) {
	assert.Equal(t, "2024-05-06", weekStart(fixedNow).Format(dateLayout))
	sunday := time.Date(2024, 5, 12, 8, 0, 0, 0, time.Local)
	assert.Equal(t, "2024-05-06", weekStart(sunday).Format(dateLayout))
	monday := time.Date(2024, 5, 6, 0, 0, 0, 0, time.Local)
	assert.Equal(t, "2024-05-06", weekStart(monday).Format(dateLayout))
}
