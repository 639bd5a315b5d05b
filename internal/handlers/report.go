package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskhub-api/internal/constants"
	apierrors "github.com/yukikurage/taskhub-api/internal/errors"
	"github.com/yukikurage/taskhub-api/internal/models"
	"github.com/yukikurage/taskhub-api/internal/services"
)

type ReportHandler struct {
	reportService *services.ReportService
}

func NewReportHandler(reportService *services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

func (h *ReportHandler) Summary(c *gin.Context) {
	filter, ok := reportFilter(c)
	if !ok {
		return
	}

	summary, err := h.reportService.Summary(c.Request.Context(), filter)
	if err != nil {
		respondReportError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"report": summary})
}

// Export streams the report as an xlsx workbook.
func (h *ReportHandler) Export(c *gin.Context) {
	filter, ok := reportFilter(c)
	if !ok {
		return
	}

	data, err := h.reportService.ExportXLSX(c.Request.Context(), filter)
	if err != nil {
		respondReportError(c, err)
		return
	}

	filename := fmt.Sprintf("%s-%s.xlsx", constants.ReportExportFilePrefix, time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, constants.XLSXContentType, data)
}

// reportFilter reads department, from and to. A date-only "to" includes
// that whole day.
func reportFilter(c *gin.Context) (services.ReportFilter, bool) {
	var filter services.ReportFilter

	if v := c.Query("department"); v != "" {
		department := models.Department(v)
		filter.Department = &department
	}
	if v := c.Query("from"); v != "" {
		from, ok := parseTime(v)
		if !ok {
			apierrors.BadRequest(c, "Invalid from date")
			return filter, false
		}
		filter.From = &from
	}
	if v := c.Query("to"); v != "" {
		to, ok := parseTime(v)
		if !ok {
			apierrors.BadRequest(c, "Invalid to date")
			return filter, false
		}
		if isDateOnly(v) {
			to = to.AddDate(0, 0, 1)
		}
		filter.To = &to
	}

	return filter, true
}

func respondReportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidDepartment),
		errors.Is(err, services.ErrInvalidReportRange):
		apierrors.BadRequest(c, err.Error())
	default:
		internalError(c, err)
	}
}
