package handlers

import (
	"net/http"
	"threadline/internal/content"

	"github.com/gin-gonic/gin"
)

type RenderHandler struct {
	renderer *content.Renderer
}

func NewRenderHandler(renderer *content.Renderer) *RenderHandler {
	return &RenderHandler{renderer: renderer}
}

type renderRequest struct {
	Text string `json:"text"`
}

// Preview sanitizes the text the same way a stored post would be, then
// returns its display blocks.
func (h *RenderHandler) Preview(c *gin.Context) {
	var req renderRequest
	if !bindJSON(c, &req) {
		return
	}
	c.JSON(http.StatusOK, h.renderer.Blocks(content.Sanitize(req.Text)))
}
