package services

import (
	"regexp"
	"strconv"
	"strings"

	"axiona-learning-core/models"
)

// Use cases a book can be classified into.
const (
	UseCaseTextbook  = "primary_textbook"
	UseCaseReference = "reference"
	UseCasePractice  = "practice"
)

// DifficultyClassifier assigns a learner level from title/description
// keywords. The rule table is data, not code: tuning the keywords does not
// touch retrieval or ranking.
type DifficultyClassifier struct {
	Rules map[string][]string
}

func NewDifficultyClassifier() *DifficultyClassifier {
	return &DifficultyClassifier{Rules: map[string][]string{
		models.LevelBeginner: {"intro", "basics", "101", "fundamentals", "beginner", "getting started"},
		models.LevelAdvanced: {"advanced", "deep dive", "internals", "expert", "mastering"},
	}}
}

// Classify returns the first level whose keyword list matches; beginner
// keywords are checked before advanced, and intermediate is the default.
func (c *DifficultyClassifier) Classify(texts ...string) string {
	haystack := strings.ToLower(strings.Join(texts, " "))
	for _, level := range []string{models.LevelBeginner, models.LevelAdvanced} {
		for _, kw := range c.Rules[level] {
			if strings.Contains(haystack, kw) {
				return level
			}
		}
	}
	return models.LevelIntermediate
}

// UseCaseClassifier sorts books into textbook / reference / practice from
// metadata keyword matches.
type UseCaseClassifier struct {
	Rules map[string][]string
}

func NewUseCaseClassifier() *UseCaseClassifier {
	return &UseCaseClassifier{Rules: map[string][]string{
		UseCaseTextbook:  {"introduction", "fundamentals", "textbook", "course", "primer"},
		UseCaseReference: {"advanced", "handbook", "reference", "encyclopedia", "cookbook"},
	}}
}

func (c *UseCaseClassifier) Classify(texts ...string) string {
	haystack := strings.ToLower(strings.Join(texts, " "))
	for _, useCase := range []string{UseCaseTextbook, UseCaseReference} {
		for _, kw := range c.Rules[useCase] {
			if strings.Contains(haystack, kw) {
				return useCase
			}
		}
	}
	return UseCasePractice
}

var (
	clockDurationRe = regexp.MustCompile(`^(?:(\d+):)?(\d{1,2}):(\d{2})$`)
	unitDurationRe  = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(hours?|hrs?|h|minutes?|mins?|m|seconds?|secs?|s)\b`)
)

// ParseDurationSeconds turns a human-readable duration field ("1h 30m",
// "90 minutes", "1:30:00") into seconds. Unparseable input reports ok=false
// so callers can fall back instead of guessing.
func ParseDurationSeconds(raw string) (int, bool) {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" {
		return 0, false
	}

	if m := clockDurationRe.FindStringSubmatch(raw); m != nil {
		hours, _ := strconv.Atoi(m[1])
		mins, _ := strconv.Atoi(m[2])
		secs, _ := strconv.Atoi(m[3])
		return hours*3600 + mins*60 + secs, true
	}

	total := 0.0
	matched := false
	for _, m := range unitDurationRe.FindAllStringSubmatch(raw, -1) {
		n, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		matched = true
		switch m[2][0] {
		case 'h':
			total += n * 3600
		case 'm':
			total += n * 60
		case 's':
			total += n
		}
	}
	if !matched {
		// A bare number is taken as minutes, the common provider shorthand.
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			return int(n * 60), true
		}
		return 0, false
	}
	return int(total), true
}

// BestVideo picks the strongest candidate: highest relevance, then a
// difficulty matching the learner's level, then shorter duration, then title.
func BestVideo(candidates []models.VideoResult, learnerLevel string) (models.VideoResult, bool) {
	if len(candidates) == 0 {
		return models.VideoResult{}, false
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if videoLess(c, best, learnerLevel) {
			best = c
		}
	}
	return best, true
}

func videoLess(a, b models.VideoResult, learnerLevel string) bool {
	if a.Relevance != b.Relevance {
		return a.Relevance > b.Relevance
	}
	am, bm := a.Difficulty == learnerLevel, b.Difficulty == learnerLevel
	if am != bm {
		return am
	}
	if a.DurationSeconds != b.DurationSeconds {
		return a.DurationSeconds < b.DurationSeconds
	}
	return a.Metadata.Title < b.Metadata.Title
}

// BestBook prefers relevance, then primary textbooks over references over
// practice books, then title.
func BestBook(candidates []models.BookResult) (models.BookResult, bool) {
	if len(candidates) == 0 {
		return models.BookResult{}, false
	}
	rank := map[string]int{UseCaseTextbook: 0, UseCaseReference: 1, UseCasePractice: 2}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Relevance != best.Relevance {
			if c.Relevance > best.Relevance {
				best = c
			}
			continue
		}
		if rank[c.UseCase] != rank[best.UseCase] {
			if rank[c.UseCase] < rank[best.UseCase] {
				best = c
			}
			continue
		}
		if c.Metadata.Title < best.Metadata.Title {
			best = c
		}
	}
	return best, true
}
