package delivery

import (
	"net/http"

	"flux-backend/internal/task/usecase"

	"github.com/gin-gonic/gin"
)

// ReportHandler serves generated documents
type ReportHandler struct {
	reportUsecase usecase.ReportUsecase
}

func NewReportHandler(reportUsecase usecase.ReportUsecase) *ReportHandler {
	return &ReportHandler{reportUsecase: reportUsecase}
}

type RequirementDocRequest struct {
	Statuses []string `json:"statuses"`
}

// TestCases generates TestRail CSV from Done tasks
// POST /api/reports/test-cases?download=1
func (h *ReportHandler) TestCases(c *gin.Context) {
	report, err := h.reportUsecase.TestCases(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	h.write(c, report, "text/csv; charset=utf-8", []byte(report.Content))
}

// RequirementDoc generates a Markdown requirement document
// POST /api/reports/requirements?download=1
func (h *ReportHandler) RequirementDoc(c *gin.Context) {
	var req RequirementDocRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	report, err := h.reportUsecase.RequirementDoc(c.Request.Context(), req.Statuses)
	if err != nil {
		respondError(c, err)
		return
	}
	h.write(c, report, "text/markdown; charset=utf-8", []byte(report.Content))
}

// ScrumEmail generates the weekly status email
// POST /api/reports/scrum-email?download=1
func (h *ReportHandler) ScrumEmail(c *gin.Context) {
	var req usecase.ScrumEmailRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	report, err := h.reportUsecase.ScrumEmail(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	h.write(c, report, "message/rfc822", report.Message)
}

// write sends the report as JSON, or as an attachment when download=1 and
// something was generated.
func (h *ReportHandler) write(c *gin.Context, report *usecase.Report, contentType string, body []byte) {
	if !report.Generated {
		c.JSON(http.StatusOK, gin.H{
			"generated":  false,
			"kind":       report.Kind,
			"task_count": 0,
			"message":    "No matching tasks to generate from",
		})
		return
	}
	if c.Query("download") == "1" {
		c.Header("Content-Disposition", `attachment; filename="`+report.Filename+`"`)
		c.Data(http.StatusOK, contentType, body)
		return
	}
	c.JSON(http.StatusOK, report)
}
