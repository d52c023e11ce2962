package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"regexp"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"axiona-learning-core/internal/ai"
	"axiona-learning-core/models"
)

// phaseTemplate is one deterministic phase blueprint. Titles interpolate the
// learner's domain; EffortHours is the fixed baseline the timing step scales
// by the learner's weekly commitment.
type phaseTemplate struct {
	Title         string
	Topic         string
	EffortHours   int
	Prerequisites []string
	Outcomes      []string
}

// phaseTemplates maps the learner's current level to the ordered phase
// topics. This is a pure function of level and domain, never of retrieval.
var phaseTemplates = map[string][]phaseTemplate{
	models.LevelBeginner: {
		{
			Title: "Foundations of %s", Topic: "foundations and basics",
			EffortHours:   20,
			Prerequisites: []string{"none"},
			Outcomes:      []string{"understand core terminology", "follow introductory material unaided"},
		},
		{
			Title: "Core Skills in %s", Topic: "core concepts and techniques",
			EffortHours:   30,
			Prerequisites: []string{"foundations phase"},
			Outcomes:      []string{"apply standard techniques to guided problems"},
		},
		{
			Title: "Applying %s", Topic: "practical applications and projects",
			EffortHours:   30,
			Prerequisites: []string{"core skills phase"},
			Outcomes:      []string{"complete an end-to-end project independently"},
		},
	},
	models.LevelIntermediate: {
		{
			Title: "Consolidating %s", Topic: "core concepts and techniques",
			EffortHours:   20,
			Prerequisites: []string{"working knowledge of the basics"},
			Outcomes:      []string{"close gaps in core understanding"},
		},
		{
			Title: "Advanced Topics in %s", Topic: "advanced topics and patterns",
			EffortHours:   30,
			Prerequisites: []string{"consolidation phase"},
			Outcomes:      []string{"reason about advanced material and trade-offs"},
		},
		{
			Title: "Applying %s at Depth", Topic: "real-world applications and case studies",
			EffortHours:   30,
			Prerequisites: []string{"advanced topics phase"},
			Outcomes:      []string{"deliver a substantial project using advanced techniques"},
		},
	},
	models.LevelAdvanced: {
		{
			Title: "Advanced %s Internals", Topic: "internals and deep dives",
			EffortHours:   25,
			Prerequisites: []string{"solid advanced grounding"},
			Outcomes:      []string{"explain internal mechanics and edge behavior"},
		},
		{
			Title: "Specializing in %s", Topic: "specialization and current research",
			EffortHours:   30,
			Prerequisites: []string{"internals phase"},
			Outcomes:      []string{"evaluate and adopt state-of-the-art approaches"},
		},
		{
			Title: "%s Mastery Project", Topic: "expert-level capstone project",
			EffortHours:   35,
			Prerequisites: []string{"specialization phase"},
			Outcomes:      []string{"produce expert-level original work"},
		},
	},
}

// RoadmapService assembles personalized learning plans from retrieval
// results and learner-profile heuristics.
type RoadmapService struct {
	retrieval      *RetrievalService
	generator      ai.Generator
	resourcesPerNS int
}

func NewRoadmapService(retrieval *RetrievalService, generator ai.Generator, resourcesPerNS int) *RoadmapService {
	if resourcesPerNS <= 0 {
		resourcesPerNS = 3
	}
	return &RoadmapService{
		retrieval:      retrieval,
		generator:      generator,
		resourcesPerNS: resourcesPerNS,
	}
}

// Synthesize builds a fresh roadmap for the profile. The service holds no
// state for it afterwards.
func (s *RoadmapService) Synthesize(ctx context.Context, profile models.LearnerProfile) (models.Roadmap, error) {
	tracer := otel.Tracer("roadmap")
	ctx, span := tracer.Start(ctx, "roadmap.synthesize")
	defer span.End()
	span.SetAttributes(
		attribute.String("roadmap.domain", profile.Domain),
		attribute.String("roadmap.level", profile.CurrentLevel),
	)

	// The roadmap moves through draft -> resourced -> timed -> finalized;
	// each step consumes only what the previous one produced.
	phases := s.draftPhases(profile)

	if err := s.resourcePhases(ctx, profile, phases); err != nil {
		return models.Roadmap{}, err
	}

	total := s.timePhases(profile, phases)

	roadmap := models.Roadmap{
		RoadmapID:         uuid.NewString(),
		Phases:            phases,
		TotalDurationDays: total,
	}

	span.SetAttributes(attribute.Int("roadmap.total_days", roadmap.TotalDurationDays))
	return roadmap, nil
}

// draftPhases derives the ordered phase list from domain and level alone.
func (s *RoadmapService) draftPhases(profile models.LearnerProfile) []models.RoadmapPhase {
	templates, ok := phaseTemplates[profile.CurrentLevel]
	if !ok {
		templates = phaseTemplates[models.LevelBeginner]
	}

	phases := make([]models.RoadmapPhase, len(templates))
	for i, t := range templates {
		phases[i] = models.RoadmapPhase{
			Index:         i,
			Title:         fmt.Sprintf(t.Title, profile.Domain),
			Topic:         t.Topic,
			Prerequisites: append([]string(nil), t.Prerequisites...),
			Outcomes:      append([]string(nil), t.Outcomes...),
		}
	}
	return phases
}

// resourcePhases runs one multi-namespace search per phase, in parallel,
// and assigns the top hits per namespace. A phase whose retrieval fails is
// treated like a phase with zero results; the synthesis only fails when
// every phase hit a dead index.
func (s *RoadmapService) resourcePhases(ctx context.Context, profile models.LearnerProfile, phases []models.RoadmapPhase) error {
	errs := make([]error, len(phases))

	var wg sync.WaitGroup
	for i := range phases {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.resourceOnePhase(ctx, profile, &phases[i])
		}(i)
	}
	wg.Wait()

	outages := 0
	for i, err := range errs {
		if err == nil {
			continue
		}
		if errors.Is(err, models.ErrIndexUnavailable) {
			outages++
		}
		log.Printf("Roadmap: phase %d retrieval degraded: %v", i, err)
		phases[i].Resources = models.PhaseResources{
			Videos:    []models.SearchResult{},
			Materials: []models.SearchResult{},
			Books:     []models.SearchResult{},
		}
		phases[i].Warning = models.WarningNoResources
	}
	if len(phases) > 0 && outages == len(phases) {
		return fmt.Errorf("%w: retrieval failed for every phase", models.ErrIndexUnavailable)
	}
	return nil
}

func (s *RoadmapService) resourceOnePhase(ctx context.Context, profile models.LearnerProfile, phase *models.RoadmapPhase) error {
	query := fmt.Sprintf("%s for %s", phase.Topic, profile.Domain)
	resp, err := s.retrieval.Search(ctx, models.SearchRequest{
		Query: query,
		TopK:  s.resourcesPerNS,
	})
	if err != nil {
		return err
	}

	resources := models.PhaseResources{
		Videos:    []models.SearchResult{},
		Materials: []models.SearchResult{},
		Books:     []models.SearchResult{},
	}
	for _, r := range resp.Results {
		switch r.Namespace {
		case models.NamespaceVideos:
			if len(resources.Videos) < s.resourcesPerNS {
				resources.Videos = append(resources.Videos, r)
			}
		case models.NamespaceMaterials:
			if len(resources.Materials) < s.resourcesPerNS {
				resources.Materials = append(resources.Materials, r)
			}
		case models.NamespaceBooks:
			if len(resources.Books) < s.resourcesPerNS {
				resources.Books = append(resources.Books, r)
			}
		}
	}
	phase.Resources = resources
	if resources.Empty() {
		phase.Warning = models.WarningNoResources
	}
	return nil
}

// timePhases computes each phase's duration from the learner's weekly hours
// against the phase's effort baseline, and returns the total. Fewer weekly
// hours stretch the same effort over proportionally more days.
func (s *RoadmapService) timePhases(profile models.LearnerProfile, phases []models.RoadmapPhase) int {
	weekly := parseWeeklyHours(profile.TimeCommitment)
	templates, ok := phaseTemplates[profile.CurrentLevel]
	if !ok {
		templates = phaseTemplates[models.LevelBeginner]
	}

	total := 0
	for i := range phases {
		effort := 25
		if i < len(templates) {
			effort = templates[i].EffortHours
		}
		weeks := int(math.Ceil(float64(effort) / weekly))
		if weeks < 1 {
			weeks = 1
		}
		phases[i].DurationDays = weeks * 7
		total += phases[i].DurationDays
	}
	return total
}

var hoursRe = regexp.MustCompile(`(\d+(?:\.\d+)?)`)

// parseWeeklyHours reads a commitment like "3-5 hours" as the midpoint of
// the stated range; a single number stands for itself. Unparseable input
// falls back to 5 hours a week.
func parseWeeklyHours(commitment string) float64 {
	matches := hoursRe.FindAllString(commitment, -1)
	if len(matches) == 0 {
		return 5
	}
	sum := 0.0
	count := 0
	for _, m := range matches {
		if n, err := strconv.ParseFloat(m, 64); err == nil && n > 0 {
			sum += n
			count++
		}
	}
	if count == 0 {
		return 5
	}
	return sum / float64(count)
}

// BuildNarrativeContext packages the roadmap and its best snippets for the
// external narrative generator.
func (s *RoadmapService) BuildNarrativeContext(profile models.LearnerProfile, roadmap models.Roadmap) ai.NarrativeContext {
	var snippets []string
	for _, p := range roadmap.Phases {
		for _, lists := range [][]models.SearchResult{p.Resources.Materials, p.Resources.Books, p.Resources.Videos} {
			if len(lists) > 0 && lists[0].Snippet != "" {
				snippets = append(snippets, lists[0].Snippet)
			}
		}
	}
	return ai.NarrativeContext{Profile: profile, Roadmap: roadmap, Snippets: snippets}
}

// Narrate hands the structured context to the generator: context in, prose
// out, nothing else promised.
func (s *RoadmapService) Narrate(ctx context.Context, profile models.LearnerProfile, roadmap models.Roadmap) (string, error) {
	return s.generator.Generate(ctx, s.BuildNarrativeContext(profile, roadmap))
}
