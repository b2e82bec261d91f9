package handlers

import (
	"net/http"
	"threadline/internal/content"
	"threadline/internal/middleware"
	"threadline/internal/models"
	"threadline/internal/services"

	"github.com/gin-gonic/gin"
)

type ChannelHandler struct {
	forum    *services.ForumService
	renderer *content.Renderer
}

func NewChannelHandler(forum *services.ForumService, renderer *content.Renderer) *ChannelHandler {
	return &ChannelHandler{forum: forum, renderer: renderer}
}

type channelResponse struct {
	*models.Channel
	DescriptionHTML string `json:"description_html"`
}

type createChannelRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description"`
}

type updateChannelRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=100"`
	Description *string `json:"description"`
}

type createMessageRequest struct {
	Content  string `json:"content" binding:"required"`
	ImageURL string `json:"image_url"`
}

func (h *ChannelHandler) view(ch *models.Channel) channelResponse {
	return channelResponse{Channel: ch, DescriptionHTML: h.renderer.Markdown(ch.Description)}
}

func (h *ChannelHandler) List(c *gin.Context) {
	channels, err := h.forum.Channels(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	out := make([]channelResponse, len(channels))
	for i := range channels {
		out[i] = h.view(&channels[i])
	}
	c.JSON(http.StatusOK, out)
}

func (h *ChannelHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ch, err := h.forum.Channel(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.view(ch))
}

func (h *ChannelHandler) Create(c *gin.Context) {
	var req createChannelRequest
	if !bindJSON(c, &req) {
		return
	}
	ch, err := h.forum.CreateChannel(c.Request.Context(), middleware.CurrentUser(c), req.Name, req.Description)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.view(ch))
}

func (h *ChannelHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req updateChannelRequest
	if !bindJSON(c, &req) {
		return
	}
	ch, err := h.forum.UpdateChannel(c.Request.Context(), middleware.CurrentUser(c), id, services.ChannelPatch{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.view(ch))
}

func (h *ChannelHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.forum.DeleteChannel(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Messages lists a channel's messages, newest first.
func (h *ChannelHandler) Messages(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	msgs, err := h.forum.MessagesByChannel(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}

func (h *ChannelHandler) PostMessage(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req createMessageRequest
	if !bindJSON(c, &req) {
		return
	}
	msg, err := h.forum.CreateMessage(c.Request.Context(), middleware.CurrentUser(c), id, req.Content, req.ImageURL)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}
