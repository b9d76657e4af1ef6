package analysis

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"flux-backend/internal/task/domain"
)

const (
	chatTasksPerStatus = 3
	chatRecentTasks    = 5
	chatSummaryMax     = 100
)

// TaskContext summarizes tasks for the chat assistant: totals and a sample per
// status, then the most recent tasks with a truncated summary.
func TaskContext(tasks []*domain.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You have %d tasks in total.\n\n", len(tasks))

	for _, status := range domain.Statuses {
		var inStatus []*domain.Task
		for _, t := range tasks {
			if t.Status == status {
				inStatus = append(inStatus, t)
			}
		}
		if len(inStatus) == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s: %d tasks\n", status, len(inStatus))
		for i, t := range inStatus {
			if i == chatTasksPerStatus {
				break
			}
			fmt.Fprintf(&b, "  - %s (%s)\n", t.Name, t.Category)
		}
	}

	b.WriteString("\nRecent tasks:\n")
	recent := tasks
	if len(recent) > chatRecentTasks {
		recent = recent[len(recent)-chatRecentTasks:]
	}
	for _, t := range recent {
		fmt.Fprintf(&b, "- %s: %s...\n", t.Name, truncateRunes(orDefault(t.AnalysisResult, "No summary"), chatSummaryMax))
	}
	return b.String()
}

// Ask answers question, grounded on taskContext when it is not empty.
func (e *Engine) Ask(ctx context.Context, question, taskContext string) (string, error) {
	var prompt string
	if taskContext != "" {
		prompt = fmt.Sprintf(`You are an AI assistant for a task management system called "FLUX".

Here's the current state of the user's tasks:

%s

The user has a 5-stage workflow: In Review → Passed In Review → In Stage → Passed In Stage → Done.

Answer the user's question based on this context. Be helpful, concise, and actionable.

User question: %s`, taskContext, question)
	} else {
		prompt = fmt.Sprintf(`You are an AI assistant for a task management system called "FLUX".

The user hasn't loaded their context yet, so you don't have access to their specific tasks.
You can still help with general questions about task management, workflows, and best practices.

User question: %s`, question)
	}

	out, err := e.text.GenerateText(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to answer chat question: %w", err)
	}
	return out, nil
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
