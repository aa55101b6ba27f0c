package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/finproc/statement-processor/internal/models"
	"github.com/finproc/statement-processor/internal/service"
	"github.com/finproc/statement-processor/pkg/logger"
)

type StatementHandler struct {
	service        *service.StatementService
	maxUploadBytes int64
	logger         logger.Logger
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type UploadResponse struct {
	JobID     string  `json:"jobId"`
	Filename  string  `json:"filename"`
	State     string  `json:"state"`
	Progress  float64 `json:"progress"`
	CreatedAt string  `json:"createdAt"`
}

func NewStatementHandler(svc *service.StatementService, maxUploadBytes int64, log logger.Logger) *StatementHandler {
	return &StatementHandler{
		service:        svc,
		maxUploadBytes: maxUploadBytes,
		logger:         log,
	}
}

// Upload accepts a multipart file plus optional csv_format and
// date_format form fields and registers a processing job.
func (h *StatementHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.handleError(c, http.StatusBadRequest, "Invalid file upload", err)
		return
	}
	defer file.Close()

	if h.maxUploadBytes > 0 && header.Size > h.maxUploadBytes {
		h.handleError(c, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("File exceeds the %d byte upload limit", h.maxUploadBytes), nil)
		return
	}

	layout := models.Layout(c.PostForm("csv_format"))
	dateFormat := models.DateFormat(c.PostForm("date_format"))

	job, err := h.service.Submit(c.Request.Context(), header.Filename, file, header.Size, layout, dateFormat)
	if err != nil {
		h.handleError(c, http.StatusBadRequest, "Failed to submit job", err)
		return
	}

	c.JSON(http.StatusAccepted, UploadResponse{
		JobID:     job.JobID,
		Filename:  job.SourceFile,
		State:     string(job.State),
		Progress:  job.Progress,
		CreatedAt: job.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

// GetStatus returns the full job record.
func (h *StatementHandler) GetStatus(c *gin.Context) {
	jobID := c.Param("jobId")

	job, err := h.service.GetStatus(c.Request.Context(), jobID)
	if errors.Is(err, service.ErrJobNotFound) {
		h.handleError(c, http.StatusNotFound, "Job not found", err)
		return
	}
	if err != nil {
		h.handleError(c, http.StatusInternalServerError, "Failed to get status", err)
		return
	}

	c.JSON(http.StatusOK, job)
}

// Download streams the finished CSV artifact.
func (h *StatementHandler) Download(c *gin.Context) {
	jobID := c.Param("jobId")

	artifact, err := h.service.GetArtifact(c.Request.Context(), jobID)
	if errors.Is(err, service.ErrJobNotFound) {
		h.handleError(c, http.StatusNotFound, "Job not found", err)
		return
	}
	if errors.Is(err, service.ErrResultNotReady) {
		h.handleError(c, http.StatusConflict, "Job has not completed", err)
		return
	}
	if err != nil {
		h.handleError(c, http.StatusInternalServerError, "Failed to fetch result", err)
		return
	}
	defer artifact.Close()

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s_output.csv", jobID))
	if _, err := io.Copy(c.Writer, artifact); err != nil {
		h.logger.Error("failed to stream artifact",
			logger.String("jobId", jobID),
			logger.Error(err),
		)
	}
}

// ListJobs returns all jobs, newest first.
func (h *StatementHandler) ListJobs(c *gin.Context) {
	jobs, err := h.service.ListJobs(c.Request.Context())
	if err != nil {
		h.handleError(c, http.StatusInternalServerError, "Failed to list jobs", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"jobs": jobs, "count": len(jobs)})
}

// Health reports liveness and the supported upload formats.
func (h *StatementHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"formats": strings.Join(h.service.SupportedExtensions(), ","),
	})
}

func (h *StatementHandler) handleError(c *gin.Context, status int, message string, err error) {
	detail := ""
	if err != nil {
		detail = err.Error()
		h.logger.Error(message, logger.Error(err))
	}
	c.JSON(status, ErrorResponse{Error: message, Message: detail})
}
