package handlers

import (
	"net/http"
	"threadline/internal/services"

	"github.com/gin-gonic/gin"
)

type ImageHandler struct {
	uploader *services.ImageUploader
}

func NewImageHandler(uploader *services.ImageUploader) *ImageHandler {
	return &ImageHandler{uploader: uploader}
}

// Upload handles POST /api/upload with a multipart "image" field.
// The route is behind AuthRequired.
func (h *ImageHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		badInput(c, "an image file is required")
		return
	}
	defer file.Close()

	url, err := h.uploader.Upload(c.Request.Context(), header.Filename, file)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}
