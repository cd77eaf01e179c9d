package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/funny-backend/internal/domain"
	"github.com/yungbote/funny-backend/internal/http/response"
	"github.com/yungbote/funny-backend/internal/services"
)

type ProgressHandler struct {
	progress services.ProgressService
}

func NewProgressHandler(progress services.ProgressService) *ProgressHandler {
	return &ProgressHandler{progress: progress}
}

// POST /progresso/registrar-minijogo
func (h *ProgressHandler) RecordMiniGame(c *gin.Context) {
	var req struct {
		Score          *float64 `json:"pontuacao" binding:"required"`
		Category       string   `json:"categoria" binding:"required,categoria"`
		ChildID        uint     `json:"crianca_id" binding:"required"`
		Title          *string  `json:"titulo"`
		Description    *string  `json:"descricao"`
		Notes          *string  `json:"observacoes"`
		ElapsedSeconds *int     `json:"tempo_segundos" binding:"omitempty,gte=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	row, created, err := h.progress.RecordMiniGame(c.Request.Context(), services.MiniGameInput{
		ChildID:        req.ChildID,
		Category:       req.Category,
		Title:          req.Title,
		Description:    req.Description,
		Notes:          req.Notes,
		Score:          *req.Score,
		ElapsedSeconds: req.ElapsedSeconds,
	})
	respondRecorded(c, row, created, err)
}

// POST /progresso/registrar
// concluida is accepted and ignored: every recorded result is complete.
func (h *ProgressHandler) Record(c *gin.Context) {
	var req struct {
		ChildID        uint     `json:"crianca_id" binding:"required"`
		ActivityID     uint     `json:"atividade_id" binding:"required"`
		Score          *float64 `json:"pontuacao" binding:"required"`
		Notes          *string  `json:"observacoes"`
		Completed      *bool    `json:"concluida"`
		ElapsedSeconds *int     `json:"tempo_segundos" binding:"omitempty,gte=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	row, created, err := h.progress.RecordProgress(c.Request.Context(), services.RecordProgressInput{
		ChildID:        req.ChildID,
		ActivityID:     req.ActivityID,
		Score:          *req.Score,
		Notes:          req.Notes,
		ElapsedSeconds: req.ElapsedSeconds,
	})
	respondRecorded(c, row, created, err)
}

func respondRecorded(c *gin.Context, row *domain.Progress, created bool, err error) {
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if created {
		response.RespondCreated(c, row)
		return
	}
	response.RespondOK(c, row)
}

// GET /progresso/crianca/:id
func (h *ProgressHandler) ListByChild(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	rows, err := h.progress.ListByChild(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondList(c, rows)
}

// GET /progresso/atividade/:id
func (h *ProgressHandler) ListByActivity(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	rows, err := h.progress.ListByActivity(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondList(c, rows)
}

// GET /progresso/crianca/:id/resumo
func (h *ProgressHandler) Summary(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	sum, err := h.progress.Summary(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, sum)
}
