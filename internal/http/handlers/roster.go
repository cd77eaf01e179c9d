package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/funny-backend/internal/domain"
	"github.com/yungbote/funny-backend/internal/http/response"
	"github.com/yungbote/funny-backend/internal/services"
)

type guardianResponse struct {
	ID      uint    `json:"id"`
	Name    string  `json:"nome"`
	Email   string  `json:"email"`
	Phone   *string `json:"telefone"`
	Classes []uint  `json:"turmas"`
}

func toGuardianResponse(g *domain.Guardian) *guardianResponse {
	if g == nil {
		return nil
	}
	return &guardianResponse{ID: g.ID, Name: g.Name, Email: g.Email, Phone: g.Phone, Classes: g.ClassIDs()}
}

type classResponse struct {
	ID         uint              `json:"id"`
	Name       string            `json:"nome"`
	GuardianID *uint             `json:"responsavel_id"`
	Guardian   *guardianResponse `json:"responsavel"`
}

func toClassResponse(c *domain.Class) classResponse {
	return classResponse{ID: c.ID, Name: c.Name, GuardianID: c.GuardianID, Guardian: toGuardianResponse(c.Guardian)}
}

type GuardianHandler struct {
	guardians services.GuardianService
}

func NewGuardianHandler(guardians services.GuardianService) *GuardianHandler {
	return &GuardianHandler{guardians: guardians}
}

// GET /responsaveis
func (h *GuardianHandler) List(c *gin.Context) {
	p, ok := page(c)
	if !ok {
		return
	}
	rows, err := h.guardians.List(c.Request.Context(), p)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	out := make([]*guardianResponse, 0, len(rows))
	for _, g := range rows {
		out = append(out, toGuardianResponse(g))
	}
	response.RespondOK(c, out)
}

// GET /responsaveis/:id
func (h *GuardianHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	g, err := h.guardians.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, toGuardianResponse(g))
}

// POST /responsaveis
func (h *GuardianHandler) Create(c *gin.Context) {
	var req struct {
		Name  string  `json:"nome" binding:"required,notblank"`
		Email string  `json:"email" binding:"required,email"`
		Phone *string `json:"telefone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	g, err := h.guardians.Create(c.Request.Context(), services.GuardianInput{Name: req.Name, Email: req.Email, Phone: req.Phone})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondCreated(c, toGuardianResponse(g))
}

// PUT /responsaveis/:id
func (h *GuardianHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Name  *string          `json:"nome"`
		Email *string          `json:"email"`
		Phone Nullable[string] `json:"telefone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	g, err := h.guardians.Update(c.Request.Context(), id, services.GuardianPatch{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone.Ptr(),
		ClearPhone: req.Phone.Cleared(),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, toGuardianResponse(g))
}

// DELETE /responsaveis/:id
func (h *GuardianHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.guardians.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondNoContent(c)
}

type ClassHandler struct {
	classes services.ClassService
}

func NewClassHandler(classes services.ClassService) *ClassHandler {
	return &ClassHandler{classes: classes}
}

// GET /turmas
func (h *ClassHandler) List(c *gin.Context) {
	p, ok := page(c)
	if !ok {
		return
	}
	rows, err := h.classes.List(c.Request.Context(), p)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	out := make([]classResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, toClassResponse(row))
	}
	response.RespondOK(c, out)
}

// GET /turmas/:id
func (h *ClassHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	row, err := h.classes.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, toClassResponse(row))
}

// POST /turmas
func (h *ClassHandler) Create(c *gin.Context) {
	var req struct {
		Name       string `json:"nome" binding:"required,notblank"`
		GuardianID *uint  `json:"responsavel_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	row, err := h.classes.Create(c.Request.Context(), services.ClassInput{Name: req.Name, GuardianID: req.GuardianID})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondCreated(c, toClassResponse(row))
}

// PUT /turmas/:id
func (h *ClassHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Name       *string        `json:"nome"`
		GuardianID Nullable[uint] `json:"responsavel_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	row, err := h.classes.Update(c.Request.Context(), id, services.ClassPatch{
		Name:          req.Name,
		GuardianID:    req.GuardianID.Ptr(),
		ClearGuardian: req.GuardianID.Cleared(),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, toClassResponse(row))
}

// DELETE /turmas/:id
func (h *ClassHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.classes.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondNoContent(c)
}

type ChildHandler struct {
	children services.ChildService
}

func NewChildHandler(children services.ChildService) *ChildHandler {
	return &ChildHandler{children: children}
}

// GET /criancas
func (h *ChildHandler) List(c *gin.Context) {
	p, ok := page(c)
	if !ok {
		return
	}
	rows, err := h.children.List(c.Request.Context(), p)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondList(c, rows)
}

// GET /criancas/:id
func (h *ChildHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	row, err := h.children.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, row)
}

// POST /criancas
func (h *ChildHandler) Create(c *gin.Context) {
	var req struct {
		Name        string `json:"nome" binding:"required,notblank"`
		Age         *int   `json:"idade" binding:"required,gte=0"`
		DiagnosisID *uint  `json:"diagnostico_id"`
		ClassID     *uint  `json:"turma_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	row, err := h.children.Create(c.Request.Context(), services.ChildInput{
		Name:        req.Name,
		Age:         *req.Age,
		DiagnosisID: req.DiagnosisID,
		ClassID:     req.ClassID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondCreated(c, row)
}

// PUT /criancas/:id
func (h *ChildHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Name        *string        `json:"nome"`
		Age         *int           `json:"idade"`
		DiagnosisID Nullable[uint] `json:"diagnostico_id"`
		ClassID     Nullable[uint] `json:"turma_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	row, err := h.children.Update(c.Request.Context(), id, services.ChildPatch{
		Name:           req.Name,
		Age:            req.Age,
		DiagnosisID:    req.DiagnosisID.Ptr(),
		ClearDiagnosis: req.DiagnosisID.Cleared(),
		ClassID:        req.ClassID.Ptr(),
		ClearClass:     req.ClassID.Cleared(),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, row)
}

// DELETE /criancas/:id
func (h *ChildHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.children.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondNoContent(c)
}

type DiagnosisHandler struct {
	diagnoses services.DiagnosisService
}

func NewDiagnosisHandler(diagnoses services.DiagnosisService) *DiagnosisHandler {
	return &DiagnosisHandler{diagnoses: diagnoses}
}

// GET /diagnosticos
func (h *DiagnosisHandler) List(c *gin.Context) {
	p, ok := page(c)
	if !ok {
		return
	}
	rows, err := h.diagnoses.List(c.Request.Context(), p)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondList(c, rows)
}

// GET /diagnosticos/:id
func (h *DiagnosisHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	row, err := h.diagnoses.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, row)
}

// POST /diagnosticos
func (h *DiagnosisHandler) Create(c *gin.Context) {
	var req struct {
		Type        string  `json:"tipo" binding:"required,notblank"`
		Description *string `json:"descricao"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	row, err := h.diagnoses.Create(c.Request.Context(), services.DiagnosisInput{Type: req.Type, Description: req.Description})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondCreated(c, row)
}

// PUT /diagnosticos/:id
func (h *DiagnosisHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Type        *string          `json:"tipo"`
		Description Nullable[string] `json:"descricao"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	row, err := h.diagnoses.Update(c.Request.Context(), id, services.DiagnosisPatch{
		Type:             req.Type,
		Description:      req.Description.Ptr(),
		ClearDescription: req.Description.Cleared(),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, row)
}

// DELETE /diagnosticos/:id
func (h *DiagnosisHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.diagnoses.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondNoContent(c)
}
