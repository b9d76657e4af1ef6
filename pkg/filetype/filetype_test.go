package filetype

import (
	"errors"
	"testing"

	"flux-backend/internal/task/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	cases := map[string]domain.Category{
		"demo.mp4":        domain.CategoryVideo,
		"Recording.MOV":   domain.CategoryVideo,
		"brief.pdf":       domain.CategoryDocument,
		"cases.xlsx":      domain.CategorySpreadsheet,
		"export.csv":      domain.CategorySpreadsheet,
		"shot.png":        domain.CategoryImage,
		"photo.JPG":       domain.CategoryImage,
		"photo.jpeg":      domain.CategoryImage,
		"archive.zip":     domain.CategoryUnknown,
		"no-extension":    domain.CategoryUnknown,
		"notes.pdf.exe":   domain.CategoryUnknown,
	}
	for name, want := range cases {
		assert.Equal(t, want, Classify(name), name)
	}
}

func TestValidateRejectsUnknownExtension(t *testing.T) {
	category, err := Validate("malware.exe", 10, 100)
	require.Error(t, err)
	assert.Equal(t, domain.CategoryUnknown, category)
	assert.True(t, errors.Is(err, domain.ErrUnsupportedFileType))
	assert.True(t, domain.IsValidation(err))
	assert.Contains(t, err.Error(), ".exe")
}

func TestValidateRejectsOversizedFile(t *testing.T) {
	_, err := Validate("big.mp4", 3*1024*1024, 2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrFileTooLarge))
	assert.Contains(t, err.Error(), "3.0MB")
}

func TestCheckSizeDefaultLimit(t *testing.T) {
	assert.NoError(t, CheckSize(100*1024*1024, 0))
	assert.Error(t, CheckSize(100*1024*1024+1, 0))
}

func TestMIMEType(t *testing.T) {
	assert.Equal(t, "video/quicktime", MIMEType("a.mov", ""))
	assert.Equal(t, "image/png", MIMEType("a.png", "application/octet-stream"))
	assert.Equal(t, "image/webp", MIMEType("a.png", "image/webp"))
	assert.Equal(t, "application/octet-stream", MIMEType("a.bin", ""))
}
