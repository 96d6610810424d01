package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"claimdesk/internal/middleware"
	"claimdesk/internal/models"
	"claimdesk/internal/service"
)

// ClaimHandler serves the claim endpoints.
type ClaimHandler struct {
	claims *service.ClaimService
}

// NewClaimHandler creates a ClaimHandler.
func NewClaimHandler(claims *service.ClaimService) *ClaimHandler {
	return &ClaimHandler{claims: claims}
}

// ---------- request/response types ----------

type claimReq struct {
	ProjectID   string  `json:"project_id" binding:"required"`
	Title       string  `json:"title" binding:"required,max=200"`
	Description string  `json:"description" binding:"max=2000"`
	Hours       float64 `json:"hours" binding:"gte=0"`
	Amount      string  `json:"amount" binding:"required"`
	PeriodStart int64   `json:"period_start"`
	PeriodEnd   int64   `json:"period_end"`
}

type transitionReq struct {
	Event          string `json:"event" binding:"required,claimevent"`
	ExpectedStatus string `json:"expected_status" binding:"required,claimstatus"`
	Comment        string `json:"comment" binding:"max=2000"`
	// ToStatus is only meaningful for the admin_override event.
	ToStatus string `json:"to_status" binding:"omitempty,claimstatus"`
}

type claimResp struct {
	ID           string  `json:"id"`
	ClaimantID   string  `json:"claimant_id"`
	ClaimantName string  `json:"claimant_name"`
	ProjectID    string  `json:"project_id"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Hours        float64 `json:"hours"`
	Amount       string  `json:"amount"`
	PeriodStart  int64   `json:"period_start"`
	PeriodEnd    int64   `json:"period_end"`
	Status       string  `json:"status"`
	CreatedAt    int64   `json:"created_at"`
	UpdatedAt    int64   `json:"updated_at"`
}

type logEntryResp struct {
	Seq        int64  `json:"seq"`
	ClaimID    string `json:"claim_id"`
	FromStatus string `json:"from_status"`
	ToStatus   string `json:"to_status"`
	Event      string `json:"event"`
	ActorID    string `json:"actor_id"`
	ActorName  string `json:"actor_name"`
	ActorRole  string `json:"actor_role"`
	Comment    string `json:"comment,omitempty"`
	CreatedAt  int64  `json:"created_at"`
}

func toClaimResp(claim *models.Claim) claimResp {
	return claimResp{
		ID:           claim.ID,
		ClaimantID:   claim.ClaimantID,
		ClaimantName: claim.ClaimantName,
		ProjectID:    claim.ProjectID,
		Title:        claim.Title,
		Description:  claim.Description,
		Hours:        claim.Hours,
		Amount:       claim.Amount.String(),
		PeriodStart:  claim.PeriodStart,
		PeriodEnd:    claim.PeriodEnd,
		Status:       string(claim.Status),
		CreatedAt:    claim.CreatedAt,
		UpdatedAt:    claim.UpdatedAt,
	}
}

func (r claimReq) toInput() (service.ClaimInput, error) {
	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return service.ClaimInput{}, fmt.Errorf("%w: amount %q is not a number",
			models.ErrValidation, r.Amount)
	}
	return service.ClaimInput{
		ProjectID:   r.ProjectID,
		Title:       r.Title,
		Description: r.Description,
		Hours:       r.Hours,
		Amount:      amount,
		PeriodStart: r.PeriodStart,
		PeriodEnd:   r.PeriodEnd,
	}, nil
}

// ---------- endpoints ----------

// Create handles POST /api/claims.
func (h *ClaimHandler) Create(c *gin.Context) {
	var req claimReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		respondError(c, err)
		return
	}

	claim, err := h.claims.Create(c.Request.Context(), middleware.GetActor(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toClaimResp(claim))
}

// Get handles GET /api/claims/:id.
func (h *ClaimHandler) Get(c *gin.Context) {
	claim, err := h.claims.Get(c.Request.Context(), middleware.GetActor(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toClaimResp(claim))
}

// List handles GET /api/claims?status=&q=&page=&page_size=.
func (h *ClaimHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	result, err := h.claims.Query(c.Request.Context(), middleware.GetActor(c), service.QueryParams{
		Status:   models.ClaimStatus(c.Query("status")),
		Keyword:  c.Query("q"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]claimResp, len(result.Claims))
	for i, claim := range result.Claims {
		items[i] = toClaimResp(claim)
	}
	c.JSON(http.StatusOK, gin.H{
		"items":     items,
		"total":     result.Total,
		"page":      result.Page,
		"page_size": result.PageSize,
	})
}

// History handles GET /api/claims/:id/history. Entries are newest-first
// unless ?order=asc.
func (h *ClaimHandler) History(c *gin.Context) {
	newestFirst := c.Query("order") != "asc"
	entries, err := h.claims.History(c.Request.Context(), middleware.GetActor(c), c.Param("id"), newestFirst)
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]logEntryResp, len(entries))
	for i, entry := range entries {
		items[i] = logEntryResp{
			Seq:        entry.Seq,
			ClaimID:    entry.ClaimID,
			FromStatus: string(entry.FromStatus),
			ToStatus:   string(entry.ToStatus),
			Event:      string(entry.Event),
			ActorID:    entry.ActorID,
			ActorName:  entry.ActorName,
			ActorRole:  string(entry.ActorRole),
			Comment:    entry.Comment,
			CreatedAt:  entry.CreatedAt,
		}
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// Transition handles POST /api/claims/:id/transitions.
func (h *ClaimHandler) Transition(c *gin.Context) {
	var req transitionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	claim, err := h.claims.Transition(
		c.Request.Context(),
		middleware.GetActor(c),
		c.Param("id"),
		models.Event(req.Event),
		models.ClaimStatus(req.ExpectedStatus),
		req.Comment,
		models.ClaimStatus(req.ToStatus),
	)
	if err != nil {
		respondError(c, err)
		return
	}
	if claim == nil {
		// The delete event removes the claim.
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, toClaimResp(claim))
}

// Update handles PUT /api/claims/:id (draft edits only).
func (h *ClaimHandler) Update(c *gin.Context) {
	var req claimReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		respondError(c, err)
		return
	}

	claim, err := h.claims.UpdateDraft(c.Request.Context(), middleware.GetActor(c), c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toClaimResp(claim))
}

// Delete handles DELETE /api/claims/:id: a shortcut for the delete event on
// the caller's own draft.
func (h *ClaimHandler) Delete(c *gin.Context) {
	_, err := h.claims.Transition(
		c.Request.Context(),
		middleware.GetActor(c),
		c.Param("id"),
		models.EventDelete,
		models.StatusDraft,
		"",
		"",
	)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
