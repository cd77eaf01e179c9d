package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/funny-backend/internal/http/response"
	"github.com/yungbote/funny-backend/internal/services"
)

type ActivityHandler struct {
	activities services.ActivityService
}

func NewActivityHandler(activities services.ActivityService) *ActivityHandler {
	return &ActivityHandler{activities: activities}
}

// GET /atividades
func (h *ActivityHandler) List(c *gin.Context) {
	p, ok := page(c)
	if !ok {
		return
	}
	rows, err := h.activities.List(c.Request.Context(), p)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondList(c, rows)
}

// GET /atividades/:id
func (h *ActivityHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	row, err := h.activities.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, row)
}

// POST /atividades
func (h *ActivityHandler) Create(c *gin.Context) {
	var req struct {
		Category    string  `json:"categoria" binding:"required,categoria"`
		Title       *string `json:"titulo"`
		Description *string `json:"descricao"`
		Difficulty  *int    `json:"nivel_dificuldade" binding:"omitempty,gte=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	row, err := h.activities.Create(c.Request.Context(), services.ActivityInput{
		Category:    req.Category,
		Title:       req.Title,
		Description: req.Description,
		Difficulty:  req.Difficulty,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondCreated(c, row)
}

// PUT /atividades/:id
func (h *ActivityHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Category    *string          `json:"categoria" binding:"omitempty,categoria"`
		Title       Nullable[string] `json:"titulo"`
		Description Nullable[string] `json:"descricao"`
		Difficulty  *int             `json:"nivel_dificuldade" binding:"omitempty,gte=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	row, err := h.activities.Update(c.Request.Context(), id, services.ActivityPatch{
		Category:         req.Category,
		Title:            req.Title.Ptr(),
		ClearTitle:       req.Title.Cleared(),
		Description:      req.Description.Ptr(),
		ClearDescription: req.Description.Cleared(),
		Difficulty:       req.Difficulty,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, row)
}

// DELETE /atividades/:id
func (h *ActivityHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.activities.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondNoContent(c)
}
