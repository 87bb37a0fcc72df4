package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/smartcampus/portal/backend/internal/users"
)

// AdminHandler exposes user administration.
type AdminHandler struct {
	users *users.Service
}

func NewAdminHandler(u *users.Service) *AdminHandler {
	return &AdminHandler{users: u}
}

func (h *AdminHandler) Register(rg *gin.RouterGroup, g Guards) {
	a := rg.Group("/admin", g.Session, g.Admin)
	a.GET("/users", h.ListUsers)
	a.POST("/users/:id/role", h.SetRole)
}

// ListUsers pages through accounts (?page, ?limit up to 100).
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(users.DefaultPageSize)))
	list, err := h.users.List(c.Request.Context(), page, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "users": list})
}

// SetRole changes a user's stored role.
func (h *AdminHandler) SetRole(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req struct {
		Role string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Role == "" {
		badRequest(c, "Role is required")
		return
	}
	u, err := h.users.SetRole(c.Request.Context(), id, req.Role)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": gin.H{"id": u.ID.Hex(), "email": u.Email, "role": u.Role}})
}
