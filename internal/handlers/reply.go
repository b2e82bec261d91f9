package handlers

import (
	"net/http"
	"threadline/internal/content"
	"threadline/internal/middleware"
	"threadline/internal/services"

	"github.com/gin-gonic/gin"
)

type ReplyHandler struct {
	forum    *services.ForumService
	renderer *content.Renderer
}

func NewReplyHandler(forum *services.ForumService, renderer *content.Renderer) *ReplyHandler {
	return &ReplyHandler{forum: forum, renderer: renderer}
}

type createReplyRequest struct {
	MessageID     *uint  `json:"message_id"`
	ParentReplyID *uint  `json:"parent_reply_id"`
	Content       string `json:"content" binding:"required"`
	ImageURL      string `json:"image_url"`
}

func (h *ReplyHandler) Create(c *gin.Context) {
	var req createReplyRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.MessageID == nil && req.ParentReplyID == nil {
		badInput(c, "message_id or parent_reply_id is required")
		return
	}
	reply, err := h.forum.CreateReply(c.Request.Context(), middleware.CurrentUser(c), services.NewReply{
		MessageID:     req.MessageID,
		ParentReplyID: req.ParentReplyID,
		Content:       req.Content,
		ImageURL:      req.ImageURL,
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, reply)
}

func (h *ReplyHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	reply, err := h.forum.Reply(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

func (h *ReplyHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req updateContentRequest
	if !bindJSON(c, &req) {
		return
	}
	reply, err := h.forum.UpdateReply(c.Request.Context(), middleware.CurrentUser(c), id, services.ContentPatch{
		Content:  req.Content,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

func (h *ReplyHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.forum.DeleteReply(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Children lists the direct replies to a reply, oldest first.
func (h *ReplyHandler) Children(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	replies, err := h.forum.RepliesByParent(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, replies)
}

func (h *ReplyHandler) Blocks(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	reply, err := h.forum.Reply(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.renderer.Blocks(reply.Content))
}
