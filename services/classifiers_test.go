package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"axiona-learning-core/models"
)

func TestDifficultyClassify(t *testing.T) {
	c := NewDifficultyClassifier()

	cases := []struct {
		text string
		want string
	}{
		{"Python 101 for absolute beginners", models.LevelBeginner},
		{"Getting Started with Rust", models.LevelBeginner},
		{"Advanced Compiler Internals", models.LevelAdvanced},
		{"Mastering Distributed Systems", models.LevelAdvanced},
		{"Build a REST API", models.LevelIntermediate},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, c.Classify(tc.text), tc.text)
	}
}

func TestDifficultyClassifyBeginnerWinsTies(t *testing.T) {
	c := NewDifficultyClassifier()
	// Both rule sets match; beginner keywords are checked first.
	assert.Equal(t, models.LevelBeginner, c.Classify("Intro to advanced topics"))
}

func TestUseCaseClassify(t *testing.T) {
	c := NewUseCaseClassifier()

	assert.Equal(t, UseCaseTextbook, c.Classify("Introduction to Algorithms"))
	assert.Equal(t, UseCaseReference, c.Classify("The SRE Handbook"))
	assert.Equal(t, UseCasePractice, c.Classify("99 Coding Challenges"))
}

func TestParseDurationSeconds(t *testing.T) {
	cases := []struct {
		raw  string
		want int
		ok   bool
	}{
		{"1:30:00", 5400, true},
		{"12:45", 765, true},
		{"1h 30m", 5400, true},
		{"90 minutes", 5400, true},
		{"45 min", 2700, true},
		{"2 hours", 7200, true},
		{"30s", 30, true},
		{"1.5h", 5400, true},
		{"25", 1500, true}, // bare number reads as minutes
		{"", 0, false},
		{"soon", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseDurationSeconds(tc.raw)
		assert.Equal(t, tc.ok, ok, tc.raw)
		if tc.ok {
			assert.Equal(t, tc.want, got, tc.raw)
		}
	}
}

func video(title, level string, relevance float64, duration int) models.VideoResult {
	return models.VideoResult{
		SearchResult: models.SearchResult{
			Relevance: relevance,
			Metadata:  models.Metadata{Kind: models.KindVideo, Title: title},
		},
		Difficulty:      level,
		DurationSeconds: duration,
	}
}

func TestBestVideoPrefersRelevance(t *testing.T) {
	best, ok := BestVideo([]models.VideoResult{
		video("a", models.LevelBeginner, 0.4, 100),
		video("b", models.LevelAdvanced, 0.9, 900),
	}, models.LevelBeginner)
	require.True(t, ok)
	assert.Equal(t, "b", best.Metadata.Title)
}

func TestBestVideoTieBreaks(t *testing.T) {
	// Equal relevance: level match wins.
	best, ok := BestVideo([]models.VideoResult{
		video("a", models.LevelAdvanced, 0.8, 100),
		video("b", models.LevelBeginner, 0.8, 900),
	}, models.LevelBeginner)
	require.True(t, ok)
	assert.Equal(t, "b", best.Metadata.Title)

	// Equal relevance and level: shorter wins.
	best, ok = BestVideo([]models.VideoResult{
		video("long", models.LevelBeginner, 0.8, 900),
		video("short", models.LevelBeginner, 0.8, 100),
	}, models.LevelBeginner)
	require.True(t, ok)
	assert.Equal(t, "short", best.Metadata.Title)
}

func TestBestVideoEmpty(t *testing.T) {
	_, ok := BestVideo(nil, models.LevelBeginner)
	assert.False(t, ok)
}

func book(title, useCase string, relevance float64) models.BookResult {
	return models.BookResult{
		SearchResult: models.SearchResult{
			Relevance: relevance,
			Metadata:  models.Metadata{Kind: models.KindBook, Title: title},
		},
		UseCase: useCase,
	}
}

func TestBestBookPrefersTextbooksOnTies(t *testing.T) {
	best, ok := BestBook([]models.BookResult{
		book("ref", UseCaseReference, 0.7),
		book("text", UseCaseTextbook, 0.7),
		book("drill", UseCasePractice, 0.7),
	})
	require.True(t, ok)
	assert.Equal(t, "text", best.Metadata.Title)
}

func TestBestBookRelevanceFirst(t *testing.T) {
	best, ok := BestBook([]models.BookResult{
		book("text", UseCaseTextbook, 0.2),
		book("drill", UseCasePractice, 0.9),
	})
	require.True(t, ok)
	assert.Equal(t, "drill", best.Metadata.Title)
}
