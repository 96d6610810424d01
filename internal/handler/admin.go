package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"claimdesk/internal/models"
	"claimdesk/internal/service"
)

// AdminHandler serves user and project administration. The router guards
// every route here with the admin role.
type AdminHandler struct {
	authSvc    *service.AuthService
	projectSvc *service.ProjectService
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(authSvc *service.AuthService, projectSvc *service.ProjectService) *AdminHandler {
	return &AdminHandler{authSvc: authSvc, projectSvc: projectSvc}
}

type setRoleReq struct {
	Role string `json:"role" binding:"required,userrole"`
}

type setActiveReq struct {
	Active *bool `json:"active" binding:"required"`
}

type createProjectReq struct {
	Name string `json:"name" binding:"required,max=200"`
	Code string `json:"code" binding:"required,max=32"`
}

type setArchivedReq struct {
	Archived *bool `json:"archived" binding:"required"`
}

type projectResp struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Code      string `json:"code"`
	Archived  bool   `json:"archived"`
	CreatedAt int64  `json:"created_at"`
}

// ListUsers handles GET /api/users.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.authSvc.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]userResp, len(users))
	for i, user := range users {
		items[i] = userResp{
			ID: user.ID, Name: user.Name, Email: user.Email,
			Role: string(user.Role), Active: user.Active, CreatedAt: user.CreatedAt,
		}
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// SetUserRole handles PUT /api/users/:id/role.
func (h *AdminHandler) SetUserRole(c *gin.Context) {
	var req setRoleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if err := h.authSvc.SetRole(c.Request.Context(), c.Param("id"), models.Role(req.Role)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetUserActive handles PUT /api/users/:id/active.
func (h *AdminHandler) SetUserActive(c *gin.Context) {
	var req setActiveReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if err := h.authSvc.SetActive(c.Request.Context(), c.Param("id"), *req.Active); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CreateProject handles POST /api/projects.
func (h *AdminHandler) CreateProject(c *gin.Context) {
	var req createProjectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	project, err := h.projectSvc.Create(c.Request.Context(), req.Name, req.Code)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, projectResp{
		ID: project.ID, Name: project.Name, Code: project.Code,
		Archived: project.Archived, CreatedAt: project.CreatedAt,
	})
}

// ListProjects handles GET /api/projects?include_archived=true. Readable by
// every authenticated role; claimants need it to pick a project.
func (h *AdminHandler) ListProjects(c *gin.Context) {
	includeArchived := c.Query("include_archived") == "true"
	projects, err := h.projectSvc.List(c.Request.Context(), includeArchived)
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]projectResp, len(projects))
	for i, project := range projects {
		items[i] = projectResp{
			ID: project.ID, Name: project.Name, Code: project.Code,
			Archived: project.Archived, CreatedAt: project.CreatedAt,
		}
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// SetProjectArchived handles PUT /api/projects/:id/archived.
func (h *AdminHandler) SetProjectArchived(c *gin.Context) {
	var req setArchivedReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if err := h.projectSvc.SetArchived(c.Request.Context(), c.Param("id"), *req.Archived); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
