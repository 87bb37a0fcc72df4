package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smartcampus/portal/backend/internal/clubs"
	"github.com/smartcampus/portal/backend/pkg/middleware"
)

type ClubsHandler struct {
	svc *clubs.Service
}

func NewClubsHandler(s *clubs.Service) *ClubsHandler {
	return &ClubsHandler{svc: s}
}

func (h *ClubsHandler) Register(rg *gin.RouterGroup, g Guards) {
	cl := rg.Group("/clubs")
	cl.GET("", h.List)
	cl.GET("/:id", h.Get)
	cl.POST("", g.Session, h.Create)
	cl.POST("/:id/join", g.Session, h.Join)
	cl.POST("/:id/leave", g.Session, h.Leave)
	cl.PATCH("/:id", g.Session, g.Role, h.Update)
	cl.DELETE("/:id", g.Session, g.Role, h.Delete)
}

func (h *ClubsHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "clubs": list})
}

func (h *ClubsHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	club, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "club": club})
}

func (h *ClubsHandler) Create(c *gin.Context) {
	var in clubs.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	club, err := h.svc.Create(c.Request.Context(), middleware.CurrentPrincipal(c), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "club": club})
}

func (h *ClubsHandler) Join(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	club, err := h.svc.Join(c.Request.Context(), middleware.CurrentPrincipal(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "club": club})
}

func (h *ClubsHandler) Leave(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	club, err := h.svc.Leave(c.Request.Context(), middleware.CurrentPrincipal(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "club": club})
}

// Update applies a partial change; owner or admin only.
func (h *ClubsHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var patch clubs.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	club, err := h.svc.Update(c.Request.Context(), middleware.CurrentPrincipal(c), id, patch)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "club": club})
}

func (h *ClubsHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), middleware.CurrentPrincipal(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
