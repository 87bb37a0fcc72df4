package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smartcampus/portal/backend/internal/events"
	"github.com/smartcampus/portal/backend/pkg/middleware"
)

type EventsHandler struct {
	svc *events.Service
}

func NewEventsHandler(s *events.Service) *EventsHandler {
	return &EventsHandler{svc: s}
}

func (h *EventsHandler) Register(rg *gin.RouterGroup, g Guards) {
	rg.GET("/events", h.List)
	rg.POST("/events", g.Session, h.Create)
}

func (h *EventsHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "events": list})
}

func (h *EventsHandler) Create(c *gin.Context) {
	var in events.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	ev, err := h.svc.Create(c.Request.Context(), middleware.CurrentPrincipal(c), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "event": ev})
}
