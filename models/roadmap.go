package models

// Learner levels used by profiles and the difficulty classifier.
const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

// WarningNoResources annotates a phase that received zero resources from
// every namespace (or whose retrieval failed). The phase is still emitted.
const WarningNoResources = "no_resources_found"

// LearnerProfile drives roadmap synthesis.
type LearnerProfile struct {
	UserID         string                 `json:"user_id"`
	Domain         string                 `json:"domain" binding:"required"`
	CurrentLevel   string                 `json:"current_level" binding:"required"`
	TimeCommitment string                 `json:"time_commitment"`
	Goals          []string               `json:"goals,omitempty"`
	Preferences    map[string]interface{} `json:"preferences,omitempty"`
}

// PhaseResources holds the per-namespace resource assignments of a phase.
type PhaseResources struct {
	Videos    []SearchResult `json:"videos"`
	Materials []SearchResult `json:"materials"`
	Books     []SearchResult `json:"books"`
}

// Empty reports whether no namespace contributed anything.
func (r PhaseResources) Empty() bool {
	return len(r.Videos) == 0 && len(r.Materials) == 0 && len(r.Books) == 0
}

// RoadmapPhase is one ordered step of a learning plan.
type RoadmapPhase struct {
	Index         int            `json:"index"`
	Title         string         `json:"title"`
	Topic         string         `json:"-"`
	DurationDays  int            `json:"duration_days"`
	Resources     PhaseResources `json:"resources"`
	Prerequisites []string       `json:"prerequisites"`
	Outcomes      []string       `json:"outcomes"`
	Warning       string         `json:"warning,omitempty"`
}

// Roadmap is constructed fresh per synthesis request and handed to the
// caller; nothing here is persisted. TotalDurationDays always equals the sum
// of the phases' DurationDays.
type Roadmap struct {
	RoadmapID         string         `json:"roadmap_id"`
	Phases            []RoadmapPhase `json:"phases"`
	TotalDurationDays int            `json:"total_duration_days"`
}
