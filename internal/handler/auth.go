package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"claimdesk/internal/middleware"
	"claimdesk/internal/service"
)

// AuthHandler serves registration, login and the current-user endpoint.
type AuthHandler struct {
	authSvc *service.AuthService
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(authSvc *service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

type registerReq struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required,max=100"`
	Password string `json:"password" binding:"required"`
}

type loginReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type userResp struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Active    bool   `json:"active"`
	CreatedAt int64  `json:"created_at"`
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.authSvc.Register(c.Request.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, userResp{
		ID: user.ID, Name: user.Name, Email: user.Email,
		Role: string(user.Role), Active: user.Active, CreatedAt: user.CreatedAt,
	})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, token, err := h.authSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": userResp{
			ID: user.ID, Name: user.Name, Email: user.Email,
			Role: string(user.Role), Active: user.Active, CreatedAt: user.CreatedAt,
		},
	})
}

// Me handles GET /api/me: the identity behind the presented token.
func (h *AuthHandler) Me(c *gin.Context) {
	actor := middleware.GetActor(c)
	c.JSON(http.StatusOK, gin.H{
		"id":   actor.ID,
		"name": actor.Name,
		"role": string(actor.Role),
	})
}
