package filetype

import (
	"testing"

	"flux-backend/internal/task/domain"

	"pgregory.net/rapid"
)

func TestProperty_AcceptedExtensionsClassifyToFileCategory(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		exts := AllowedExtensions()
		ext := exts[rapid.IntRange(0, len(exts)-1).Draw(t, "ext")]
		base := rapid.StringMatching(`[a-zA-Z0-9_-]{1,20}`).Draw(t, "base")

		c := Classify(base + ext)
		if !c.IsFile() {
			t.Fatalf("Classify(%q) = %q, want a file category", base+ext, c)
		}
	})
}

func TestProperty_RejectedExtensionsAreUnknown(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ext := "." + rapid.StringMatching(`[a-z]{1,5}`).Draw(t, "ext")
		if _, ok := extensionCategory[ext]; ok {
			t.Skip("accepted extension")
		}
		name := "file" + ext
		if c := Classify(name); c != domain.CategoryUnknown {
			t.Fatalf("Classify(%q) = %q, want unknown", name, c)
		}
		if _, err := Validate(name, 1, 100); err == nil {
			t.Fatalf("Validate(%q) accepted an unknown extension", name)
		}
	})
}
