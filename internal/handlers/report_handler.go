package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/prescripto/prescripto-api/internal/httperr"
	"github.com/prescripto/prescripto-api/internal/httpresp"
	"github.com/prescripto/prescripto-api/internal/middleware"
	"github.com/prescripto/prescripto-api/internal/usecase/report"
)

type ReportHandler struct {
	revenue   *report.RevenueSummary
	dashboard *report.DashboardStats
}

func NewReportHandler(revenue *report.RevenueSummary, dashboard *report.DashboardStats) *ReportHandler {
	return &ReportHandler{revenue: revenue, dashboard: dashboard}
}

func (h *ReportHandler) RevenueSummary(c *gin.Context) {
	session := middleware.MustSession(c)

	summary, err := h.revenue.Execute(c.Request.Context(), session.UserID)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, summary)
}

func (h *ReportHandler) Dashboard(c *gin.Context) {
	session := middleware.MustSession(c)

	stats, err := h.dashboard.Execute(c.Request.Context(), session.UserID)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, stats)
}
