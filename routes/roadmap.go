package routes

import (
	"net/http"

	"axiona-learning-core/internal/logger"
	"axiona-learning-core/internal/telemetry"
	"axiona-learning-core/models"
	"axiona-learning-core/services"
	"axiona-learning-core/utils"

	"github.com/gin-gonic/gin"
)

// RoadmapRequest wraps a learner profile with output options.
type RoadmapRequest struct {
	Profile          models.LearnerProfile `json:"profile" binding:"required"`
	IncludeNarrative bool                  `json:"include_narrative"`
}

// HandleRoadmap synthesizes a personalized learning roadmap for the profile.
// The narrative is optional and its failure never fails the roadmap.
func HandleRoadmap(roadmaps *services.RoadmapService, metrics *telemetry.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RoadmapRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request body", gin.H{"error": err.Error()})
			return
		}

		switch req.Profile.CurrentLevel {
		case models.LevelBeginner, models.LevelIntermediate, models.LevelAdvanced:
		default:
			utils.RespondWithBadRequest(c, "Unknown learner level", gin.H{
				"current_level": req.Profile.CurrentLevel,
			})
			return
		}

		roadmap, err := roadmaps.Synthesize(c.Request.Context(), req.Profile)
		if err != nil {
			utils.RespondWithDomainError(c, err)
			return
		}

		if metrics != nil {
			metrics.RecordRoadmap(req.Profile.CurrentLevel)
		}

		response := gin.H{"roadmap": roadmap}
		if req.IncludeNarrative {
			narrative, err := roadmaps.Narrate(c.Request.Context(), req.Profile, roadmap)
			if err != nil {
				logger.Warn("narrative generation failed", "roadmap_id", roadmap.RoadmapID, "error", err)
			} else {
				response["narrative"] = narrative
			}
		}

		c.JSON(http.StatusOK, response)
	}
}
