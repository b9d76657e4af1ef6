// Package filetype maps uploaded filenames to task categories and checks upload limits.
package filetype

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"flux-backend/internal/task/domain"
)

const DefaultMaxSizeMB = 100

var extensionCategory = map[string]domain.Category{
	".mp4":  domain.CategoryVideo,
	".mov":  domain.CategoryVideo,
	".pdf":  domain.CategoryDocument,
	".xlsx": domain.CategorySpreadsheet,
	".csv":  domain.CategorySpreadsheet,
	".png":  domain.CategoryImage,
	".jpg":  domain.CategoryImage,
	".jpeg": domain.CategoryImage,
}

var extensionMIME = map[string]string{
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".pdf":  "application/pdf",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".csv":  "text/csv",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
}

// Extension returns the lower-cased extension of filename, including the dot.
func Extension(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

// Classify returns the category for filename, or CategoryUnknown.
func Classify(filename string) domain.Category {
	if c, ok := extensionCategory[Extension(filename)]; ok {
		return c
	}
	return domain.CategoryUnknown
}

// AllowedExtensions returns every accepted extension, sorted.
func AllowedExtensions() []string {
	exts := make([]string, 0, len(extensionCategory))
	for ext := range extensionCategory {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// MIMEType returns the MIME type for filename. declared wins when set, since the
// browser usually knows better than the extension table.
func MIMEType(filename, declared string) string {
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	if m, ok := extensionMIME[Extension(filename)]; ok {
		return m
	}
	return "application/octet-stream"
}

// CheckType validates the extension of filename.
func CheckType(filename string) (domain.Category, error) {
	category := Classify(filename)
	if category == domain.CategoryUnknown {
		return category, domain.NewValidationError(domain.ErrUnsupportedFileType,
			fmt.Sprintf("File type '%s' not allowed. Allowed types: %s", Extension(filename), strings.Join(AllowedExtensions(), ", ")))
	}
	return category, nil
}

// CheckSize validates size against maxMB megabytes. A non-positive maxMB uses the default.
func CheckSize(size int64, maxMB int) error {
	if maxMB <= 0 {
		maxMB = DefaultMaxSizeMB
	}
	limit := int64(maxMB) * 1024 * 1024
	if size > limit {
		return domain.NewValidationError(domain.ErrFileTooLarge,
			fmt.Sprintf("File size (%.1fMB) exceeds maximum allowed size (%dMB)", float64(size)/(1024*1024), maxMB))
	}
	return nil
}

// Validate runs the type and size checks and returns the category of an accepted file.
func Validate(filename string, size int64, maxMB int) (domain.Category, error) {
	category, err := CheckType(filename)
	if err != nil {
		return category, err
	}
	if err := CheckSize(size, maxMB); err != nil {
		return domain.CategoryUnknown, err
	}
	return category, nil
}
