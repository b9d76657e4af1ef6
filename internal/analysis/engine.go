// Package analysis turns evidence files and notes into structured task data using a
// generative model, and derives reports from stored tasks.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"flux-backend/internal/task/domain"
	"flux-backend/pkg/ai"
	"flux-backend/pkg/filetype"
	"flux-backend/pkg/gemini"
	"flux-backend/pkg/metrics"

	log "github.com/sirupsen/logrus"
)

const (
	DefaultPollInterval = 2 * time.Second
	releaseTimeout      = 30 * time.Second
)

var ErrFileProcessingFailed = errors.New("model failed to process staged file")

// ModelClient is the multimodal model API used for file analysis.
type ModelClient interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	GenerateWithImage(ctx context.Context, prompt, mimeType string, data []byte) (string, error)
	StageFile(ctx context.Context, data []byte, mimeType, displayName string) (*gemini.StagedFile, error)
	GetFile(ctx context.Context, name string) (*gemini.StagedFile, error)
	GenerateWithFile(ctx context.Context, prompt string, file *gemini.StagedFile) (string, error)
	ReleaseFile(ctx context.Context, name string) error
}

// Input is one item to analyze. Data is set for files, Text for notes.
type Input struct {
	Data     []byte
	Text     string
	Filename string
	MIMEType string
	Category domain.Category
	Notes    string
}

type Engine struct {
	model        ModelClient
	text         ai.TextGenerator
	pollInterval time.Duration
}

// NewEngine builds an engine. model handles file analysis; text handles notes, chat
// and derived documents.
func NewEngine(model ModelClient, text ai.TextGenerator, pollInterval time.Duration) *Engine {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &Engine{model: model, text: text, pollInterval: pollInterval}
}

// Analyze sends the input to the model with the template for its category. Model and
// transport failures are returned; malformed model output is not an error.
func (e *Engine) Analyze(ctx context.Context, in Input) (*ParseResult, error) {
	prompt, err := PromptFor(in.Category, in.Notes)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	var text string
	switch in.Category {
	case domain.CategoryVideo, domain.CategoryDocument:
		text, err = e.analyzeStaged(ctx, prompt, in)
	case domain.CategoryImage:
		text, err = e.model.GenerateWithImage(ctx, prompt, filetype.MIMEType(in.Filename, in.MIMEType), in.Data)
	case domain.CategorySpreadsheet:
		var preview string
		preview, err = SpreadsheetPreview(in.Data, in.Filename)
		if err == nil {
			text, err = e.model.GenerateText(ctx, prompt+"\n\n"+preview)
		}
	case domain.CategoryNote:
		text, err = e.model.GenerateText(ctx, prompt+"\n\nNote:\n"+in.Text)
	case domain.CategoryUnknown:
		err = unknownCategory(in.Category)
	default:
		err = unknownCategory(in.Category)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to analyze %s %q: %w", in.Category, in.Filename, err)
	}

	d := metrics.ObserveCall("gemini", "analyze_"+string(in.Category), start)
	log.WithFields(log.Fields{"category": in.Category, "duration_ms": d.Milliseconds()}).
		Infof("[Analysis] Processed %s", in.Filename)
	return ParseResponse(text), nil
}

// analyzeStaged uploads the bytes to the model's file store, waits until the file is
// ready, and generates. The staged file is released whatever the outcome.
func (e *Engine) analyzeStaged(ctx context.Context, prompt string, in Input) (string, error) {
	file, err := e.model.StageFile(ctx, in.Data, filetype.MIMEType(in.Filename, in.MIMEType), in.Filename)
	if err != nil {
		return "", err
	}
	defer e.release(ctx, file.Name)

	file, err = e.waitActive(ctx, file)
	if err != nil {
		return "", err
	}
	return e.model.GenerateWithFile(ctx, prompt, file)
}

func (e *Engine) waitActive(ctx context.Context, file *gemini.StagedFile) (*gemini.StagedFile, error) {
	for file.State == gemini.FileStateProcessing {
		timer := time.NewTimer(e.pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		next, err := e.model.GetFile(ctx, file.Name)
		if err != nil {
			return nil, err
		}
		file = next
	}
	if file.State == gemini.FileStateFailed {
		return nil, fmt.Errorf("%w: %s", ErrFileProcessingFailed, file.Name)
	}
	return file, nil
}

// release runs on a context detached from cancellation so an aborted request still
// cleans up the staged file.
func (e *Engine) release(ctx context.Context, name string) {
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()
	if err := e.model.ReleaseFile(rctx, name); err != nil {
		log.WithError(err).WithField("file", name).Warn("[Analysis] Failed to release staged file")
	}
}
