package controllers

import (
	"errors"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/survey-hub/middleware"
	"github.com/vnkhanh/survey-hub/models"
	"github.com/vnkhanh/survey-hub/services"
	"github.com/vnkhanh/survey-hub/storage"
)

type ExportRequest struct {
	Format string `json:"format" binding:"omitempty,oneof=csv xlsx"`
}

type ExportController struct {
	exports *services.ExportService
}

func NewExportController(exports *services.ExportService) *ExportController {
	return &ExportController{exports: exports}
}

// POST /api/surveys/:id/exports
func (ec *ExportController) Create(c *gin.Context) {
	u := middleware.CurrentUser(c)
	s := middleware.CurrentSurvey(c)

	var req ExportRequest
	// an empty body means the default format
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		bindError(c, err)
		return
	}

	job, err := ec.exports.Queue(c.Request.Context(), s.ID, u.ID, req.Format)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"jobId":  job.JobID,
		"status": job.Status,
	})
}

// GET /api/exports/:jobId
// Returns the job status until it is done, then the file itself (local
// storage) or a redirect to its public URL (Supabase).
func (ec *ExportController) Get(c *gin.Context) {
	u := middleware.CurrentUser(c)

	job, err := ec.exports.Job(c.Request.Context(), c.Param("jobId"), u.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	if job.Status == models.ExportDone && job.Location != nil && job.StorageKind != nil {
		switch *job.StorageKind {
		case storage.KindLocal:
			c.FileAttachment(*job.Location, path.Base(*job.Location))
			return
		case storage.KindSupabase:
			c.Redirect(http.StatusFound, *job.Location)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"jobId":  job.JobID,
		"status": job.Status,
		"format": job.Format,
		"error":  job.ErrorMsg,
	})
}

// GET /api/surveys/:id/results/export?format=csv|xlsx
func (ec *ExportController) Download(c *gin.Context) {
	u := middleware.CurrentUser(c)
	s := middleware.CurrentSurvey(c)

	format := strings.ToLower(c.DefaultQuery("format", services.FormatCSV))
	data, filename, err := ec.exports.Render(c.Request.Context(), s.ID, u.ID, format)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, services.ContentType(format), data)
}
