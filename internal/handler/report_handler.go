package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gpsfleet/fleet-reports-go/internal/jobs"
	"github.com/gpsfleet/fleet-reports-go/internal/models"
	"github.com/gpsfleet/fleet-reports-go/internal/service"
	"github.com/gpsfleet/fleet-reports-go/pkg/response"
)

const dateLayout = "2006-01-02"

// ReportHandler handles HTTP requests for report jobs
type ReportHandler struct {
	service *service.ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(service *service.ReportService) *ReportHandler {
	return &ReportHandler{service: service}
}

// GenerateRequest represents the request body for submitting a report
type GenerateRequest struct {
	AccountID int64  `json:"account_id" binding:"required"`
	Report    string `json:"report" binding:"required"`
	StartDate string `json:"start_date" binding:"required"` // YYYY-MM-DD
	EndDate   string `json:"end_date" binding:"required"`   // YYYY-MM-DD
	EmailTo   string `json:"email_to"`
}

// ListReports returns the report registry
// GET /api/reports
func (h *ReportHandler) ListReports(c *gin.Context) {
	response.Success(c, models.Reports())
}

// Generate submits a report job and returns its id
// POST /api/reports/generate
func (h *ReportHandler) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	report, err := models.ParseReportType(req.Report)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		response.BadRequest(c, "Invalid start_date")
		return
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		response.BadRequest(c, "Invalid end_date")
		return
	}
	// The end date is inclusive, as in the dashboard's date pickers.
	end = end.Add(24*time.Hour - time.Second)

	job, err := h.service.Submit(models.ReportParams{
		AccountID: req.AccountID,
		Report:    report,
		Start:     start,
		End:       end,
		EmailTo:   req.EmailTo,
	})
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, job)
}

// GetJob returns a job's status and progress
// GET /api/reports/jobs/:id
func (h *ReportHandler) GetJob(c *gin.Context) {
	job, err := h.service.GetJob(c.Param("id"))
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			response.NotFound(c, "Job not found")
			return
		}
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, job)
}

// Download streams a complete job's artifact
// GET /api/reports/jobs/:id/download
func (h *ReportHandler) Download(c *gin.Context) {
	job, err := h.service.GetJob(c.Param("id"))
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			response.NotFound(c, "Job not found")
			return
		}
		response.InternalError(c, err.Error())
		return
	}

	if job.Status != models.JobStatusComplete {
		response.BadRequest(c, "Job is not complete")
		return
	}

	c.Header("Content-Type", "text/csv")
	c.FileAttachment(job.ResultPath, job.Params.Report.Name()+".csv")
}
