package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/funny-backend/internal/http/response"
	"github.com/yungbote/funny-backend/internal/services"
)

type ReportHandler struct {
	reports services.ReportService
}

func NewReportHandler(reports services.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// POST /relatorios-ia/crianca
func (h *ReportHandler) GenerateChild(c *gin.Context) {
	var req struct {
		ChildID    uint `json:"crianca_id" binding:"required"`
		PeriodDays *int `json:"periodo_dias"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	report, err := h.reports.GenerateChildReport(c.Request.Context(), req.ChildID, req.PeriodDays)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, report)
}

// POST /relatorios-ia/turma
func (h *ReportHandler) GenerateClass(c *gin.Context) {
	var req struct {
		ClassID    *uint `json:"turma_id" binding:"omitempty,gte=1"`
		PeriodDays *int  `json:"periodo_dias"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	report, err := h.reports.GenerateClassReport(c.Request.Context(), req.ClassID, req.PeriodDays)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, report)
}

// GET /relatorios-ia/crianca/:id/preview?periodo_dias=
func (h *ReportHandler) PreviewChild(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	days, ok := optionalInt(c, "periodo_dias")
	if !ok {
		return
	}
	data, err := h.reports.PrepareChildData(c.Request.Context(), id, days)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, data)
}

// GET /relatorios-ia/turma/preview?turma_id=&periodo_dias=
func (h *ReportHandler) PreviewClass(c *gin.Context) {
	classID, ok := optionalUint(c, "turma_id")
	if !ok {
		return
	}
	days, ok := optionalInt(c, "periodo_dias")
	if !ok {
		return
	}
	data, err := h.reports.PrepareClassData(c.Request.Context(), classID, days)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, data)
}

// GET /relatorios-ia/crianca/:id/historico?limit=
func (h *ReportHandler) History(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	limit, ok := optionalInt(c, "limit")
	if !ok {
		return
	}
	var n int
	if limit != nil {
		n = *limit
	}
	rows, err := h.reports.History(c.Request.Context(), id, n)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondList(c, rows)
}

// GET /relatorios-ia/health
func (h *ReportHandler) Health(c *gin.Context) {
	response.RespondOK(c, h.reports.Health())
}
