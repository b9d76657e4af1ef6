package analysis

import (
	"context"
	"fmt"
	"strings"

	"flux-backend/internal/task/domain"
)

// EnhancementMode selects how a quick note is rewritten by the model.
type EnhancementMode string

const (
	EnhanceStructure   EnhancementMode = "structure"
	EnhanceActionItems EnhancementMode = "action_items"
	EnhanceSummarize   EnhancementMode = "summarize"
	EnhanceTestCases   EnhancementMode = "test_cases"
)

var enhancementPrefixes = map[EnhancementMode]string{
	EnhanceStructure:   "Please analyze and improve this note. Make it clearer, better structured, and more professional:",
	EnhanceActionItems: "Extract all action items and tasks from this note. Format as a numbered list:",
	EnhanceSummarize:   "Summarize the key points from this note in bullet points:",
	EnhanceTestCases:   "Convert this note into test cases with steps and expected results:",
}

// ParseEnhancementMode accepts an empty value as EnhanceStructure.
func ParseEnhancementMode(value string) (EnhancementMode, error) {
	if value == "" {
		return EnhanceStructure, nil
	}
	m := EnhancementMode(value)
	if _, ok := enhancementPrefixes[m]; !ok {
		return "", domain.NewValidationError(domain.ErrInvalidEnhancement,
			fmt.Sprintf("invalid enhancement mode %q: must be one of structure, action_items, summarize, test_cases", value))
	}
	return m, nil
}

// Enhance rewrites note according to mode.
func (e *Engine) Enhance(ctx context.Context, note string, mode EnhancementMode) (string, error) {
	prefix, ok := enhancementPrefixes[mode]
	if !ok {
		prefix = enhancementPrefixes[EnhanceStructure]
	}
	out, err := e.text.GenerateText(ctx, prefix+"\n\n"+note)
	if err != nil {
		return "", fmt.Errorf("failed to enhance note: %w", err)
	}
	if strings.TrimSpace(out) == "" {
		return "", fmt.Errorf("failed to enhance note: empty response")
	}
	return out, nil
}
