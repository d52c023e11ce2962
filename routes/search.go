package routes

import (
	"net/http"
	"strings"

	"axiona-learning-core/internal/telemetry"
	"axiona-learning-core/models"
	"axiona-learning-core/services"
	"axiona-learning-core/utils"

	"github.com/gin-gonic/gin"
)

// HandleSearch fans a query out over the requested namespaces and returns the
// merged ranking.
func HandleSearch(retrieval *services.RetrievalService, metrics *telemetry.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.SearchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request body", gin.H{"error": err.Error()})
			return
		}

		resp, err := retrieval.Search(c.Request.Context(), req)
		if err != nil {
			utils.RespondWithDomainError(c, err)
			return
		}

		if metrics != nil {
			namespaces := strings.Join(req.Namespaces, ",")
			if namespaces == "" {
				namespaces = "all"
			}
			metrics.RecordSearch(namespaces, resp.Partial)
		}

		c.JSON(http.StatusOK, resp)
	}
}

// HandleSearchMaterials searches the materials namespace only.
func HandleSearchMaterials(retrieval *services.RetrievalService, metrics *telemetry.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.SearchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request body", gin.H{"error": err.Error()})
			return
		}

		resp, err := retrieval.SearchMaterials(c.Request.Context(), req)
		if err != nil {
			utils.RespondWithDomainError(c, err)
			return
		}

		if metrics != nil {
			metrics.RecordSearch(string(models.NamespaceMaterials), resp.Partial)
		}
		c.JSON(http.StatusOK, resp)
	}
}

// HandleSearchBooks searches books and annotates each hit with the difficulty
// and use-case classifications.
func HandleSearchBooks(retrieval *services.RetrievalService, metrics *telemetry.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.SearchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request body", gin.H{"error": err.Error()})
			return
		}

		resp, err := retrieval.SearchBooks(c.Request.Context(), req)
		if err != nil {
			utils.RespondWithDomainError(c, err)
			return
		}

		if metrics != nil {
			metrics.RecordSearch(string(models.NamespaceBooks), resp.Partial)
		}
		c.JSON(http.StatusOK, resp)
	}
}

// HandleSearchVideos searches videos and groups them into a beginner-first
// watch order.
func HandleSearchVideos(retrieval *services.RetrievalService, metrics *telemetry.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.SearchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request body", gin.H{"error": err.Error()})
			return
		}

		resp, err := retrieval.SearchVideos(c.Request.Context(), req)
		if err != nil {
			utils.RespondWithDomainError(c, err)
			return
		}

		if metrics != nil {
			metrics.RecordSearch(string(models.NamespaceVideos), resp.Partial)
		}
		c.JSON(http.StatusOK, resp)
	}
}
