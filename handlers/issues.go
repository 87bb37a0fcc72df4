package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smartcampus/portal/backend/internal/issues"
	"github.com/smartcampus/portal/backend/pkg/middleware"
)

type IssuesHandler struct {
	svc *issues.Service
}

func NewIssuesHandler(s *issues.Service) *IssuesHandler {
	return &IssuesHandler{svc: s}
}

func (h *IssuesHandler) Register(rg *gin.RouterGroup, g Guards) {
	is := rg.Group("/issues")
	is.GET("", h.List)
	is.GET("/:id", h.Get)
	is.POST("", h.Create)
	is.PATCH("/:id", g.Session, g.Admin, h.Moderate)
}

// List returns reports, optionally filtered by ?type=.
func (h *IssuesHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context(), c.Query("type"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "items": list})
}

func (h *IssuesHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	it, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "item": it})
}

// Create accepts reports from anonymous callers too.
func (h *IssuesHandler) Create(c *gin.Context) {
	var in issues.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Missing fields")
		return
	}
	it, err := h.svc.Create(c.Request.Context(), middleware.CurrentPrincipal(c), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "item": it})
}

func (h *IssuesHandler) Moderate(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var m issues.Moderation
	if err := c.ShouldBindJSON(&m); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	it, err := h.svc.Moderate(c.Request.Context(), middleware.CurrentPrincipal(c), id, m)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "item": it})
}
