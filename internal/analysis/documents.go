package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"flux-backend/internal/task/domain"
	"flux-backend/pkg/metrics"

	log "github.com/sirupsen/logrus"
)

// GenerateTestCases asks the model for TestRail CSV covering tasks. The text is
// returned as the model produced it.
func (e *Engine) GenerateTestCases(ctx context.Context, tasks []*domain.Task) (string, error) {
	if len(tasks) == 0 {
		return "", domain.ErrNothingToGenerate
	}
	entries := make([]string, len(tasks))
	for i, t := range tasks {
		entries[i] = fmt.Sprintf("Task %d: %s\nSummary: %s\nEvidence: %s",
			i+1, orDefault(t.Name, "Untitled"), orDefault(t.AnalysisResult, "No summary"), orDefault(t.EvidenceReference, "N/A"))
	}
	prompt := testCasePrompt + "\n\nTasks:\n" + strings.Join(entries, "\n\n")
	return e.generateDocument(ctx, "test_cases", prompt)
}

// GenerateRequirementDoc asks the model for a Markdown requirement document.
func (e *Engine) GenerateRequirementDoc(ctx context.Context, tasks []*domain.Task) (string, error) {
	if len(tasks) == 0 {
		return "", domain.ErrNothingToGenerate
	}
	entries := make([]string, len(tasks))
	for i, t := range tasks {
		link := orDefault(t.EvidenceReference, "N/A")
		target := orDefault(t.EvidenceReference, "#")
		entries[i] = fmt.Sprintf("### Task %d: %s\n**Date:** %s\n**Type:** %s\n**Summary:** %s\n**Evidence:** [%s](%s)",
			i+1, orDefault(t.Name, "Untitled"), orDefault(t.CreatedAt, "N/A"), orDefault(string(t.Category), "N/A"),
			orDefault(t.AnalysisResult, "No summary"), link, target)
	}
	prompt := requirementDocPrompt + "\n\nTasks:\n" + strings.Join(entries, "\n\n")
	return e.generateDocument(ctx, "requirement_doc", prompt)
}

// GenerateScrumEmail asks the model for a weekly status email covering weekStart to weekEnd.
func (e *Engine) GenerateScrumEmail(ctx context.Context, tasks []*domain.Task, weekStart, weekEnd string) (string, error) {
	if len(tasks) == 0 {
		return "", domain.ErrNothingToGenerate
	}
	lines := make([]string, len(tasks))
	for i, t := range tasks {
		lines[i] = fmt.Sprintf("- %s [%s]", orDefault(t.Name, "Untitled"), orDefault(string(t.Category), "N/A"))
	}
	prompt := fmt.Sprintf("%s\n\nWeek: %s to %s\nCompleted Tasks (%d):\n%s",
		scrumEmailPrompt, weekStart, weekEnd, len(tasks), strings.Join(lines, "\n"))
	return e.generateDocument(ctx, "scrum_email", prompt)
}

func (e *Engine) generateDocument(ctx context.Context, kind, prompt string) (string, error) {
	start := time.Now()
	out, err := e.text.GenerateText(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s: %w", kind, err)
	}
	d := metrics.ObserveCall("model", kind, start)
	log.WithFields(log.Fields{"kind": kind, "duration_ms": d.Milliseconds()}).Info("[Analysis] Generated document")
	return out, nil
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
