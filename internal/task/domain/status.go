package domain

import "fmt"

// Status is a stage of the review workflow. The set is fixed and ordered.
type Status string

const (
	StatusInReview       Status = "In Review"
	StatusPassedInReview Status = "Passed In Review"
	StatusInStage        Status = "In Stage"
	StatusPassedInStage  Status = "Passed In Stage"
	StatusDone           Status = "Done"
)

// Statuses lists the workflow stages in board order.
var Statuses = []Status{
	StatusInReview,
	StatusPassedInReview,
	StatusInStage,
	StatusPassedInStage,
	StatusDone,
}

// Valid reports whether s is one of the five workflow stages.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// ParseStatus converts a wire value into a Status, rejecting anything outside the set.
func ParseStatus(value string) (Status, error) {
	s := Status(value)
	if !s.Valid() {
		return "", NewValidationError(ErrInvalidStatus, fmt.Sprintf("invalid status %q: must be one of %v", value, Statuses))
	}
	return s, nil
}

// Category is the semantic kind of an ingested item.
type Category string

const (
	CategoryVideo       Category = "video"
	CategoryDocument    Category = "document"
	CategorySpreadsheet Category = "spreadsheet"
	CategoryImage       Category = "image"
	CategoryNote        Category = "note"
	CategoryUnknown     Category = "unknown"
)

// Known reports whether c is one of the categories a task can be created with.
func (c Category) Known() bool {
	switch c {
	case CategoryVideo, CategoryDocument, CategorySpreadsheet, CategoryImage, CategoryNote:
		return true
	case CategoryUnknown:
		return false
	default:
		return false
	}
}

// IsFile reports whether the category is backed by an uploaded artifact.
func (c Category) IsFile() bool {
	switch c {
	case CategoryVideo, CategoryDocument, CategorySpreadsheet, CategoryImage:
		return true
	default:
		return false
	}
}
