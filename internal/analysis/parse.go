package analysis

import (
	"encoding/json"
	"strings"

	log "github.com/sirupsen/logrus"
)

const untitledTask = "Untitled Task"

// ParseResult is the decoded model response. When the text was not a JSON object,
// Unparsed is set and Fields holds the fallback {task_name, summary: raw, raw_response}.
type ParseResult struct {
	Fields   map[string]interface{}
	Raw      string
	Unparsed bool
}

// ParseResponse strips code fences and decodes a JSON object. It never fails.
func ParseResponse(text string) *ParseResult {
	var fields map[string]interface{}
	if err := json.Unmarshal([]byte(StripCodeFence(text)), &fields); err != nil || fields == nil {
		log.WithField("length", len(text)).Warn("[Analysis] Failed to parse JSON, returning raw text")
		return &ParseResult{
			Fields: map[string]interface{}{
				"task_name":    untitledTask,
				"summary":      text,
				"raw_response": true,
			},
			Raw:      text,
			Unparsed: true,
		}
	}
	return &ParseResult{Fields: fields, Raw: text}
}

// StripCodeFence removes a leading ```json or ``` marker and a trailing ``` marker.
func StripCodeFence(text string) string {
	s := strings.TrimSpace(text)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// TaskName returns the model's title, empty when it gave none.
func (r *ParseResult) TaskName() string {
	name, _ := r.Fields["task_name"].(string)
	return strings.TrimSpace(name)
}

// Summary returns the summary field, or the raw text for unparsed results.
func (r *ParseResult) Summary() string {
	if s, ok := r.Fields["summary"].(string); ok {
		return s
	}
	return r.Raw
}

// JSON serializes Fields for storage in the analysis_result column.
func (r *ParseResult) JSON() string {
	b, err := json.Marshal(r.Fields)
	if err != nil {
		return r.Raw
	}
	return string(b)
}
