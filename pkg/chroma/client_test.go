package chroma

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocumentText(t *testing.T) {
	text := DocumentText(TaskDocument{ID: "3", Name: "Login bug", Category: "image", Status: "Done", Summary: "misaligned", Notes: "mobile"})
	assert.Equal(t, "Task: Login bug\nType: image\nStatus: Done\n\nSummary: misaligned\n\nNotes: mobile", text)
}

func TestDocumentTextTruncates(t *testing.T) {
	text := DocumentText(TaskDocument{Summary: strings.Repeat("a", 20000)})
	assert.Len(t, text, maxDocumentLen)
}
