package fuzzy

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// LevenshteinDistance returns the number of single-rune insertions, deletions or
// substitutions needed to turn s1 into s2, after normalization.
func LevenshteinDistance(s1, s2 string) int {
	r1 := []rune(normalizeString(s1))
	r2 := []rune(normalizeString(s2))
	if len(r1) == 0 {
		return len(r2)
	}
	if len(r2) == 0 {
		return len(r1)
	}

	// two rows of the DP matrix are enough
	prev := make([]int, len(r2)+1)
	curr := make([]int, len(r2)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(r1); i++ {
		curr[0] = i
		for j := 1; j <= len(r2); j++ {
			cost := 1
			if r1[i-1] == r2[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(r2)]
}

// FuzzyMatch checks if query fuzzy-matches text within a given threshold
// threshold is the maximum allowed edit distance
func FuzzyMatch(query, text string, threshold int) bool {
	query = normalizeString(query)
	text = normalizeString(text)

	// If query is contained in text, it's a match
	if strings.Contains(text, query) {
		return true
	}

	// Check if any word in text fuzzy-matches the query
	words := strings.Fields(text)
	for _, word := range words {
		if LevenshteinDistance(query, word) <= threshold {
			return true
		}
		// Check if word starts with query (partial match)
		if strings.HasPrefix(word, query) {
			return true
		}
	}

	// Check overall distance for short texts
	if len(text) < 50 {
		distance := LevenshteinDistance(query, text)
		// Allow more tolerance for longer queries
		maxDistance := threshold + len(query)/5
		if distance <= maxDistance {
			return true
		}
	}

	return false
}

// fieldWeights sets how much a hit in each task field counts toward relevance.
type fieldWeights struct {
	contains float64 // query is a substring of the field
	word     float64 // bonus when query is a whole word of the field
	fuzzy    float64 // per-word score for a near match, reduced per edit
	perEdit  float64
	prefix   float64 // per-word score when a word starts with the query
}

var (
	nameWeights    = fieldWeights{contains: 100, word: 50, fuzzy: 50, perEdit: 15, prefix: 40}
	notesWeights   = fieldWeights{contains: 60, word: 20, fuzzy: 30, perEdit: 10, prefix: 20}
	summaryWeights = fieldWeights{contains: 40, word: 10, fuzzy: 20, perEdit: 6, prefix: 10}
)

// TaskRelevanceScore scores how relevant a task is to a query.
// Higher score = more relevant. The name weighs most, then notes, then the AI summary.
func TaskRelevanceScore(query, name, notes, summary string) float64 {
	query = normalizeString(query)
	if query == "" {
		return 0
	}
	score := fieldScore(query, name, nameWeights)
	score += fieldScore(query, notes, notesWeights)
	score += fieldScore(query, truncate(summary, 2000), summaryWeights)
	return score
}

func fieldScore(query, field string, w fieldWeights) float64 {
	norm := normalizeString(field)
	if norm == "" {
		return 0
	}
	if strings.Contains(norm, query) {
		score := w.contains
		if containsWord(norm, query) {
			score += w.word
		}
		return score
	}

	score := 0.0
	for _, word := range strings.Fields(norm) {
		dist := LevenshteinDistance(query, word)
		if dist <= 2 {
			score += w.fuzzy - float64(dist)*w.perEdit
		}
		if strings.HasPrefix(word, query) {
			score += w.prefix
		}
	}
	return score
}

// FuzzyMatchTask checks if a task matches the query
func FuzzyMatchTask(query, name, notes, summary string) bool {
	// Typo tolerance threshold based on query length
	threshold := 2
	if len(query) <= 3 {
		threshold = 1
	} else if len(query) >= 8 {
		threshold = 3
	}

	if FuzzyMatch(query, name, threshold) {
		return true
	}
	if FuzzyMatch(query, notes, threshold) {
		return true
	}
	// Only the start of the summary, for performance
	return FuzzyMatch(query, truncate(summary, 500), threshold)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// Helper functions

// normalizeString converts to lowercase and strips accents
func normalizeString(s string) string {
	s = removeAccents(strings.ToLower(s))
	// Remove extra whitespace
	s = strings.Join(strings.Fields(s), " ")
	return s
}

// containsWord checks if text contains query as a whole word
func containsWord(text, query string) bool {
	words := strings.Fields(text)
	for _, word := range words {
		if word == query {
			return true
		}
	}
	return false
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// removeAccents drops diacritics so "Đăng nhập" matches "dang nhap". The
// stroked d has no decomposition and is mapped by hand.
func removeAccents(s string) string {
	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		return s
	}
	return strings.NewReplacer("đ", "d", "Đ", "D").Replace(out)
}
