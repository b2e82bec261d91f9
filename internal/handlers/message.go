package handlers

import (
	"net/http"
	"threadline/internal/content"
	"threadline/internal/middleware"
	"threadline/internal/services"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	forum    *services.ForumService
	renderer *content.Renderer
}

func NewMessageHandler(forum *services.ForumService, renderer *content.Renderer) *MessageHandler {
	return &MessageHandler{forum: forum, renderer: renderer}
}

type updateContentRequest struct {
	Content  *string `json:"content"`
	ImageURL *string `json:"image_url"`
}

func (h *MessageHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	msg, err := h.forum.Message(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, msg)
}

func (h *MessageHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req updateContentRequest
	if !bindJSON(c, &req) {
		return
	}
	msg, err := h.forum.UpdateMessage(c.Request.Context(), middleware.CurrentUser(c), id, services.ContentPatch{
		Content:  req.Content,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, msg)
}

func (h *MessageHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.forum.DeleteMessage(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Replies lists the top-level replies, oldest first.
func (h *MessageHandler) Replies(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	replies, err := h.forum.RepliesByMessage(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, replies)
}

func (h *MessageHandler) Blocks(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	msg, err := h.forum.Message(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.renderer.Blocks(msg.Content))
}
