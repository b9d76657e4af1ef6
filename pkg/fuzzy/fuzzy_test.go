package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshteinDistance(t *testing.T) {
	assert.Equal(t, 0, LevenshteinDistance("Login", "login"))
	assert.Equal(t, 1, LevenshteinDistance("login", "logn"))
	assert.Equal(t, 3, LevenshteinDistance("kitten", "sitting"))
	assert.Equal(t, 5, LevenshteinDistance("", "hello"))
}

func TestFuzzyMatchTaskToleratesTypos(t *testing.T) {
	assert.True(t, FuzzyMatchTask("checkout", "Checkout button misaligned", "", ""))
	assert.True(t, FuzzyMatchTask("chekout", "Checkout button misaligned", "", ""))
	assert.True(t, FuzzyMatchTask("mobile", "Login bug", "repro on mobile", ""))
	assert.False(t, FuzzyMatchTask("invoice", "Login bug", "repro on mobile", "Button misaligned"))
}

func TestTaskRelevanceScorePrefersName(t *testing.T) {
	inName := TaskRelevanceScore("login", "Login bug", "", "")
	inNotes := TaskRelevanceScore("login", "Crash", "after login", "")
	inSummary := TaskRelevanceScore("login", "Crash", "", "happens after login")

	assert.Greater(t, inName, inNotes)
	assert.Greater(t, inNotes, inSummary)
	assert.Greater(t, inSummary, 0.0)
	assert.Equal(t, 0.0, TaskRelevanceScore("payment", "Crash", "", ""))
	assert.Equal(t, 0.0, TaskRelevanceScore("  ", "Crash", "", ""))
}

func TestNormalizeStripsAccents(t *testing.T) {
	assert.Equal(t, "dang nhap", normalizeString("  Đăng   nhập "))
	assert.True(t, FuzzyMatchTask("dang nhap", "Lỗi đăng nhập", "", ""))
}
