package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"flux-backend/internal/analysis"
	"flux-backend/internal/task/domain"
	"flux-backend/internal/task/repository"
	"flux-backend/pkg/filetype"
	"flux-backend/pkg/metrics"

	log "github.com/sirupsen/logrus"
)

// notePlaceholderLayout names notes saved without a title.
const notePlaceholderLayout = "Note from 2006-01-02 15:04"

// pipelineUsecase implements PipelineUsecase interface
type pipelineUsecase struct {
	hooks
	taskRepo  repository.TaskRepository
	evidence  EvidenceStore
	analyzer  Analyzer
	maxFileMB int
	now       func() time.Time
}

// NewPipelineUsecase creates a new instance of pipelineUsecase
func NewPipelineUsecase(taskRepo repository.TaskRepository, evidence EvidenceStore, analyzer Analyzer, maxFileMB int) PipelineUsecase {
	return newPipelineUsecase(taskRepo, evidence, analyzer, maxFileMB, time.Now)
}

func newPipelineUsecase(taskRepo repository.TaskRepository, evidence EvidenceStore, analyzer Analyzer, maxFileMB int, now func() time.Time) *pipelineUsecase {
	return &pipelineUsecase{
		taskRepo:  taskRepo,
		evidence:  evidence,
		analyzer:  analyzer,
		maxFileMB: maxFileMB,
		now:       now,
	}
}

func (u *pipelineUsecase) IngestEvidence(ctx context.Context, req IngestRequest) (*IngestResult, error) {
	category, err := filetype.Validate(req.Filename, int64(len(req.Data)), u.maxFileMB)
	metrics.Stage("validate", err)
	if err != nil {
		return nil, err
	}
	mimeType := filetype.MIMEType(req.Filename, req.MIMEType)
	logger := log.WithFields(log.Fields{"filename": req.Filename, "category": category})

	uploaded, err := u.evidence.UploadEvidence(ctx, req.Data, req.Filename, mimeType, string(category))
	metrics.Stage("upload", err)
	if err != nil {
		logger.Errorf("[Pipeline] Upload failed: %v", err)
		return nil, fmt.Errorf("failed to upload evidence: %w", err)
	}
	logger.Infof("[Pipeline] Uploaded evidence %s", uploaded.ID)

	result, err := u.analyzer.Analyze(ctx, analysis.Input{
		Data:     req.Data,
		Filename: req.Filename,
		MIMEType: mimeType,
		Category: category,
		Notes:    req.Notes,
	})
	metrics.Stage("analyze", err)
	if err != nil {
		logger.Errorf("[Pipeline] Analysis failed: %v", err)
		return nil, fmt.Errorf("failed to analyze evidence: %w", err)
	}
	if result.Unparsed {
		logger.Warn("[Pipeline] Model output was not valid JSON, storing raw text")
	}

	name := result.TaskName()
	if name == "" {
		name = "Task from " + req.Filename
	}
	createdAt := u.now()
	in := &domain.NewTask{
		Name:              name,
		CreatedAt:         createdAt,
		Status:            domain.StatusInReview,
		Category:          category,
		EvidenceReference: uploaded.WebViewLink,
		AnalysisResult:    result.JSON(),
		Notes:             req.Notes,
	}
	id, err := u.taskRepo.Create(ctx, in)
	metrics.Stage("store", err)
	if err != nil {
		logger.Errorf("[Pipeline] Failed to store task: %v", err)
		return nil, err
	}

	task := newTaskRow(id, in)
	u.afterWrite(ctx, task, createdEvent(task, createdAt))
	logger.WithField("task_id", id).Info("[Pipeline] Ingest complete")

	return &IngestResult{
		Task:     task,
		Analysis: result.Fields,
		Unparsed: result.Unparsed,
		Evidence: uploaded,
	}, nil
}

func (u *pipelineUsecase) SaveNote(ctx context.Context, req NoteRequest) (*NoteResult, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, domain.NewValidationError(domain.ErrEmptyNote, "please write something before saving")
	}

	status := domain.StatusInReview
	if req.Status != "" {
		s, err := domain.ParseStatus(req.Status)
		if err != nil {
			return nil, err
		}
		status = s
	}

	var mode analysis.EnhancementMode
	if req.Enhance {
		m, err := analysis.ParseEnhancementMode(req.Mode)
		if err != nil {
			return nil, err
		}
		mode = m
	}

	res := &NoteResult{}
	summary := content
	if req.Enhance {
		enhanced, err := u.analyzer.Enhance(ctx, content, mode)
		metrics.Stage("enhance", err)
		if err != nil {
			log.Warnf("[Pipeline] Enhancement failed, saving original note: %v", err)
			res.EnhanceError = err.Error()
		} else {
			summary = enhanced
			res.Enhanced = true
		}
	}

	createdAt := u.now()
	name := strings.TrimSpace(req.Title)
	if name == "" {
		name = createdAt.Format(notePlaceholderLayout)
	}
	in := &domain.NewTask{
		Name:           name,
		CreatedAt:      createdAt,
		Status:         status,
		Category:       domain.CategoryNote,
		AnalysisResult: summary,
		Notes:          content,
	}
	id, err := u.taskRepo.Create(ctx, in)
	metrics.Stage("store", err)
	if err != nil {
		return nil, err
	}

	res.Task = newTaskRow(id, in)
	u.afterWrite(ctx, res.Task, createdEvent(res.Task, createdAt))
	log.WithField("task_id", id).Infof("[Pipeline] Saved note %q", name)
	return res, nil
}

// newTaskRow mirrors what the store wrote for in.
func newTaskRow(id string, in *domain.NewTask) *domain.Task {
	return &domain.Task{
		ID:                id,
		Name:              in.Name,
		CreatedAt:         in.CreatedAt.Format(domain.TimeLayout),
		Status:            in.Status,
		Category:          in.Category,
		EvidenceReference: in.EvidenceReference,
		AnalysisResult:    in.AnalysisResult,
		Notes:             in.Notes,
	}
}
