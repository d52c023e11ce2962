package routes

import (
	"io"
	"net/http"
	"strings"

	"axiona-learning-core/internal/queue"
	"axiona-learning-core/models"
	"axiona-learning-core/services"
	"axiona-learning-core/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const maxBatchRecords = 500

// IngestBatchRequest carries a batch of provider records.
type IngestBatchRequest struct {
	Records []models.SourceRecord `json:"records" binding:"required"`
}

// HandleIngestBatch runs a batch through the pipeline synchronously and
// returns the per-record summary.
func HandleIngestBatch(ingestion *services.IngestionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req IngestBatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request body", gin.H{"error": err.Error()})
			return
		}
		if len(req.Records) == 0 {
			utils.RespondWithBadRequest(c, "Batch contains no records", nil)
			return
		}
		if len(req.Records) > maxBatchRecords {
			utils.RespondWithBadRequest(c, "Batch too large", gin.H{"max_records": maxBatchRecords})
			return
		}

		summary := ingestion.IngestBatch(c.Request.Context(), req.Records)
		c.JSON(http.StatusOK, summary)
	}
}

// HandleIngestBatchAsync enqueues each record as its own task and returns
// immediately with the batch ID.
func HandleIngestBatchAsync(queueClient *asynq.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req IngestBatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request body", gin.H{"error": err.Error()})
			return
		}
		if len(req.Records) == 0 {
			utils.RespondWithBadRequest(c, "Batch contains no records", nil)
			return
		}
		if len(req.Records) > maxBatchRecords {
			utils.RespondWithBadRequest(c, "Batch too large", gin.H{"max_records": maxBatchRecords})
			return
		}

		batchID := uuid.NewString()
		enqueued := 0
		var rejected []gin.H
		for _, rec := range req.Records {
			task, err := queue.NewIngestRecordTask(batchID, rec)
			if err != nil {
				rejected = append(rejected, gin.H{"source_id": rec.ID, "error": err.Error()})
				continue
			}
			if _, err := queueClient.Enqueue(task); err != nil {
				rejected = append(rejected, gin.H{"source_id": rec.ID, "error": err.Error()})
				continue
			}
			enqueued++
		}

		c.JSON(http.StatusAccepted, gin.H{
			"batch_id": batchID,
			"enqueued": enqueued,
			"rejected": rejected,
		})
	}
}

// HandleIngestPDF accepts a PDF upload, extracts its text and ingests it as a
// study material record.
func HandleIngestPDF(ingestion *services.IngestionService, maxFileSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := c.Request.ParseMultipartForm(maxFileSize); err != nil {
			utils.RespondWithBadRequest(c, "File size exceeds maximum limit", nil)
			return
		}

		file, header, err := c.Request.FormFile("pdf")
		if err != nil {
			utils.RespondWithBadRequest(c, "No PDF file provided", nil)
			return
		}
		defer file.Close()

		ct := header.Header.Get("Content-Type")
		if !strings.Contains(ct, "pdf") && !strings.HasSuffix(strings.ToLower(header.Filename), ".pdf") {
			utils.RespondWithBadRequest(c, "Only PDF files are allowed", nil)
			return
		}
		if header.Size > maxFileSize {
			utils.RespondWithBadRequest(c, "File size exceeds maximum limit", nil)
			return
		}

		content, err := io.ReadAll(io.LimitReader(file, maxFileSize))
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to read upload", nil)
			return
		}

		text, err := services.ExtractPDFText(content)
		if err != nil {
			utils.RespondWithBadRequest(c, "Could not extract text from PDF", gin.H{"error": err.Error()})
			return
		}

		title := c.PostForm("title")
		if title == "" {
			title = strings.TrimSuffix(header.Filename, ".pdf")
		}
		sourceID := c.PostForm("source_id")
		if sourceID == "" {
			sourceID = uuid.NewString()
		}

		record := models.SourceRecord{
			ID:    sourceID,
			Kind:  models.KindMaterial,
			Title: title,
			TextFields: map[string]string{
				"content": text,
			},
			Metadata: map[string]interface{}{
				"format":   "pdf",
				"filename": header.Filename,
			},
		}
		if subject := c.PostForm("subject"); subject != "" {
			record.Metadata["subject"] = subject
		}

		count, err := ingestion.IngestRecord(c.Request.Context(), record)
		if err != nil {
			utils.RespondWithDomainError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"source_id":   sourceID,
			"title":       title,
			"chunk_count": count,
		})
	}
}

// HandleDeleteSource removes every chunk of a source from its namespace.
func HandleDeleteSource(ingestion *services.IngestionService, queueClient *asynq.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		kind := models.Kind(c.Param("kind"))
		sourceID := c.Param("id")
		if sourceID == "" {
			utils.RespondWithBadRequest(c, "Source ID required", nil)
			return
		}

		if c.Query("async") == "true" {
			task, err := queue.NewDeleteSourceTask(kind, sourceID)
			if err != nil {
				utils.RespondWithInternalError(c, "Failed to create delete task", nil)
				return
			}
			if _, err := queueClient.Enqueue(task); err != nil {
				utils.RespondWithInternalError(c, "Failed to enqueue delete task", nil)
				return
			}
			c.JSON(http.StatusAccepted, gin.H{"source_id": sourceID, "status": "queued"})
			return
		}

		if err := ingestion.DeleteSource(c.Request.Context(), kind, sourceID); err != nil {
			utils.RespondWithDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"source_id": sourceID, "status": "deleted"})
	}
}
