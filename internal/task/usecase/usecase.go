package usecase

import (
	"context"
	"time"

	"flux-backend/internal/analysis"
	"flux-backend/internal/task/domain"
	"flux-backend/pkg/chroma"
	"flux-backend/pkg/drive"
)

// PipelineUsecase turns uploads and notes into task rows
type PipelineUsecase interface {
	// IngestEvidence validates, uploads, analyzes and stores a file. No row is
	// written unless every step succeeds.
	IngestEvidence(ctx context.Context, req IngestRequest) (*IngestResult, error)

	// SaveNote stores a text note, optionally rewritten by the model. A failed
	// rewrite stores the original text.
	SaveNote(ctx context.Context, req NoteRequest) (*NoteResult, error)

	SetNotifier(n Notifier)
	SetTaskIndex(idx TaskIndex)
}

// TaskUsecase defines the interface for task board operations
type TaskUsecase interface {
	ListTasks(ctx context.Context, filter TaskFilter) ([]*domain.Task, error)
	GetTask(ctx context.Context, id string) (*domain.Task, error)
	UpdateStatus(ctx context.Context, id, status string) (*domain.Task, error)

	// UpdateTask edits recognized mutable columns; other names are ignored
	UpdateTask(ctx context.Context, id string, fields map[string]string) (*domain.Task, error)

	Stats(ctx context.Context) (*domain.BoardStats, error)
	RecentNotes(ctx context.Context, limit int) ([]*domain.Task, error)
	Search(ctx context.Context, query string, limit int) ([]*SearchHit, error)
	Ask(ctx context.Context, question string, withContext bool) (string, error)

	SetNotifier(n Notifier)
	SetTaskIndex(idx TaskIndex)
}

// ReportUsecase derives documents from stored tasks
type ReportUsecase interface {
	TestCases(ctx context.Context) (*Report, error)
	RequirementDoc(ctx context.Context, statuses []string) (*Report, error)
	ScrumEmail(ctx context.Context, req ScrumEmailRequest) (*Report, error)

	// SetDraftSaver enables saving scrum emails to a mailbox
	SetDraftSaver(s DraftSaver, from, to string)
}

// Analyzer is the analysis engine as used by the task flows
type Analyzer interface {
	Analyze(ctx context.Context, in analysis.Input) (*analysis.ParseResult, error)
	Enhance(ctx context.Context, note string, mode analysis.EnhancementMode) (string, error)
	GenerateTestCases(ctx context.Context, tasks []*domain.Task) (string, error)
	GenerateRequirementDoc(ctx context.Context, tasks []*domain.Task) (string, error)
	GenerateScrumEmail(ctx context.Context, tasks []*domain.Task, weekStart, weekEnd string) (string, error)
	Ask(ctx context.Context, question, taskContext string) (string, error)
}

// EvidenceStore uploads evidence files into the dated folder tree
type EvidenceStore interface {
	UploadEvidence(ctx context.Context, data []byte, filename, mimeType, category string) (*drive.UploadedFile, error)
}

// Notifier receives task events. Implementations must not block on failure.
type Notifier interface {
	Notify(ctx context.Context, ev domain.TaskEvent)
}

// TaskIndex is the optional semantic search index
type TaskIndex interface {
	UpsertTask(ctx context.Context, doc chroma.TaskDocument) error
	Search(ctx context.Context, query string, limit int) ([]string, []float64, error)
}

// DraftSaver stores a composed email as a draft
type DraftSaver interface {
	SaveDraft(ctx context.Context, msg []byte) error
}

type IngestRequest struct {
	Filename string
	MIMEType string
	Data     []byte
	Notes    string
}

type IngestResult struct {
	Task     *domain.Task           `json:"task"`
	Analysis map[string]interface{} `json:"analysis"`
	Unparsed bool                   `json:"unparsed"`
	Evidence *drive.UploadedFile    `json:"evidence"`
}

type NoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Status  string `json:"status"`
	Enhance bool   `json:"enhance"`
	Mode    string `json:"mode"`
}

type NoteResult struct {
	Task     *domain.Task `json:"task"`
	Enhanced bool         `json:"enhanced"`
	// EnhanceError is set when enhancement was requested but failed
	EnhanceError string `json:"enhance_error,omitempty"`
}

// TaskFilter selects tasks for listing. Zero values mean no filter.
type TaskFilter struct {
	Status string
	Start  string // YYYY-MM-DD, inclusive
	End    string // YYYY-MM-DD, inclusive
}

type SearchHit struct {
	Task  *domain.Task `json:"task"`
	Score float64      `json:"score"`
	// Source is "semantic" or "fuzzy"
	Source string `json:"source"`
}

type ScrumEmailRequest struct {
	Start     string `json:"start"`
	End       string `json:"end"`
	SaveDraft bool   `json:"save_draft"`
}

// Report is a generated document. Generated is false when no task matched.
type Report struct {
	Kind       string    `json:"kind"`
	Generated  bool      `json:"generated"`
	Content    string    `json:"content,omitempty"`
	Filename   string    `json:"filename,omitempty"`
	TaskCount  int       `json:"task_count"`
	RangeStart string    `json:"range_start,omitempty"`
	RangeEnd   string    `json:"range_end,omitempty"`
	DraftSaved bool      `json:"draft_saved,omitempty"`
	DraftError string    `json:"draft_error,omitempty"`
	Message    []byte    `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}

const dateLayout = "2006-01-02"
