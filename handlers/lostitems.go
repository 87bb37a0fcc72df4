package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smartcampus/portal/backend/internal/lostitems"
	"github.com/smartcampus/portal/backend/pkg/middleware"
)

// MaxImageBytes caps lost-item photo uploads.
const MaxImageBytes = 5 << 20

type LostItemsHandler struct {
	svc *lostitems.Service
}

func NewLostItemsHandler(s *lostitems.Service) *LostItemsHandler {
	return &LostItemsHandler{svc: s}
}

func (h *LostItemsHandler) Register(rg *gin.RouterGroup, g Guards) {
	li := rg.Group("/lost-items")
	li.GET("", h.List)
	li.POST("", g.Session, h.Create)
	li.PATCH("/:id", g.Session, g.Role, h.Update)
	li.PATCH("/:id/return", g.Session, h.Return)
	li.POST("/:id/image", g.Session, g.Role, h.UploadImage)
	li.DELETE("/:id", g.Session, g.Role, h.Delete)
}

func (h *LostItemsHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "items": list})
}

func (h *LostItemsHandler) Create(c *gin.Context) {
	var in lostitems.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	it, err := h.svc.Create(c.Request.Context(), middleware.CurrentPrincipal(c), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "item": it})
}

func (h *LostItemsHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in lostitems.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	it, err := h.svc.Update(c.Request.Context(), middleware.CurrentPrincipal(c), id, in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "item": it})
}

func (h *LostItemsHandler) Return(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	it, err := h.svc.MarkReturned(c.Request.Context(), middleware.CurrentPrincipal(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "item": it})
}

// UploadImage takes a multipart "image" field.
func (h *LostItemsHandler) UploadImage(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxImageBytes+1<<20)
	fh, err := c.FormFile("image")
	if err != nil {
		badRequest(c, "Image is required")
		return
	}
	if fh.Size > MaxImageBytes {
		badRequest(c, "Image too large")
		return
	}
	f, err := fh.Open()
	if err != nil {
		writeError(c, err)
		return
	}
	defer f.Close()

	it, err := h.svc.AttachImage(c.Request.Context(), middleware.CurrentPrincipal(c), id, lostitems.Image{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "item": it})
}

func (h *LostItemsHandler) Delete(c *gin.Context) {
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
