package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"flux-backend/internal/analysis"
	"flux-backend/internal/task/domain"
	"flux-backend/internal/task/repository"
	"flux-backend/pkg/chroma"
	"flux-backend/pkg/drive"

	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

type fakeEvidence struct {
	calls     int
	err       error
	lastName  string
	lastMIME  string
	lastGroup string
}

func (f *fakeEvidence) UploadEvidence(ctx context.Context, data []byte, filename, mimeType, category string) (*drive.UploadedFile, error) {
	f.calls++
	f.lastName, f.lastMIME, f.lastGroup = filename, mimeType, category
	if f.err != nil {
		return nil, f.err
	}
	return &drive.UploadedFile{
		ID:          "file-1",
		Name:        filename,
		WebViewLink: "https://drive.example/file-1",
		Size:        int64(len(data)),
	}, nil
}

type fakeAnalyzer struct {
	analyzeText  string
	analyzeErr   error
	enhanceText  string
	enhanceErr   error
	docText      string
	docErr       error
	answer       string
	analyzeCalls int
	enhanceCalls int
	docCalls     int
	lastInput    analysis.Input
	lastMode     analysis.EnhancementMode
	lastTasks    []*domain.Task
	lastRange    [2]string
	lastContext  string

	// acceptEmpty makes document generation answer even for zero tasks.
	acceptEmpty bool
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, in analysis.Input) (*analysis.ParseResult, error) {
	f.analyzeCalls++
	f.lastInput = in
	if f.analyzeErr != nil {
		return nil, f.analyzeErr
	}
	return analysis.ParseResponse(f.analyzeText), nil
}

func (f *fakeAnalyzer) Enhance(ctx context.Context, note string, mode analysis.EnhancementMode) (string, error) {
	f.enhanceCalls++
	f.lastMode = mode
	return f.enhanceText, f.enhanceErr
}

func (f *fakeAnalyzer) document(tasks []*domain.Task) (string, error) {
	if len(tasks) == 0 && !f.acceptEmpty {
		return "", domain.ErrNothingToGenerate
	}
	f.docCalls++
	f.lastTasks = tasks
	return f.docText, f.docErr
}

func (f *fakeAnalyzer) GenerateTestCases(ctx context.Context, tasks []*domain.Task) (string, error) {
	return f.document(tasks)
}

func (f *fakeAnalyzer) GenerateRequirementDoc(ctx context.Context, tasks []*domain.Task) (string, error) {
	return f.document(tasks)
}

func (f *fakeAnalyzer) GenerateScrumEmail(ctx context.Context, tasks []*domain.Task, weekStart, weekEnd string) (string, error) {
	f.lastRange = [2]string{weekStart, weekEnd}
	return f.document(tasks)
}

func (f *fakeAnalyzer) Ask(ctx context.Context, question, taskContext string) (string, error) {
	f.lastContext = taskContext
	return f.answer, nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []domain.TaskEvent
}

func (f *fakeNotifier) Notify(ctx context.Context, ev domain.TaskEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
}

type fakeIndex struct {
	docs      map[string]chroma.TaskDocument
	upsertErr error
	ids       []string
	distances []float64
	searchErr error
}

func (f *fakeIndex) UpsertTask(ctx context.Context, doc chroma.TaskDocument) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	if f.docs == nil {
		f.docs = map[string]chroma.TaskDocument{}
	}
	f.docs[doc.ID] = doc
	return nil
}

func (f *fakeIndex) Search(ctx context.Context, query string, limit int) ([]string, []float64, error) {
	return f.ids, f.distances, f.searchErr
}

type fakeDrafts struct {
	saved [][]byte
	err   error
}

func (f *fakeDrafts) SaveDraft(ctx context.Context, msg []byte) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, msg)
	return nil
}

// fixedNow is a Wednesday.
var fixedNow = time.Date(2024, 5, 8, 14, 30, 0, 0, time.Local)

func newTestRepo(t *testing.T) repository.TaskRepository {
	t.Helper()
	repo := repository.NewTableRepository(repository.NewMemoryTable(), time.Minute)
	require.NoError(t, repo.Init(context.Background()))
	return repo
}

// seedTask stores a task directly through the repository.
func seedTask(t *testing.T, repo repository.TaskRepository, name string, status domain.Status, category domain.Category, at time.Time) string {
	t.Helper()
	id, err := repo.Create(context.Background(), &domain.NewTask{
		Name:           name,
		CreatedAt:      at,
		Status:         status,
		Category:       category,
		AnalysisResult: "summary of " + name,
		Notes:          "notes for " + name,
	})
	require.NoError(t, err)
	return id
}
