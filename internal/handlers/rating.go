package handlers

import (
	"net/http"
	"strconv"
	"threadline/internal/middleware"
	"threadline/internal/services"

	"github.com/gin-gonic/gin"
)

type RatingHandler struct {
	ratings *services.RatingService
}

func NewRatingHandler(ratings *services.RatingService) *RatingHandler {
	return &RatingHandler{ratings: ratings}
}

type rateRequest struct {
	ContentID   uint   `json:"content_id" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
	IsPositive  *bool  `json:"is_positive" binding:"required"`
}

type unrateRequest struct {
	ContentID   uint   `json:"content_id" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
}

// Rate handles PUT /api/ratings. Repeating a vote keeps it; removing a vote
// is an explicit DELETE.
func (h *RatingHandler) Rate(c *gin.Context) {
	var req rateRequest
	if !bindJSON(c, &req) {
		return
	}
	rating, err := h.ratings.Rate(c.Request.Context(), middleware.CurrentUser(c), req.ContentID, req.ContentType, *req.IsPositive)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rating)
}

func (h *RatingHandler) Unrate(c *gin.Context) {
	var req unrateRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.ratings.Unrate(c.Request.Context(), middleware.CurrentUser(c), req.ContentID, req.ContentType); err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// List handles GET /api/ratings?contentId=&contentType=
func (h *RatingHandler) List(c *gin.Context) {
	id, err := strconv.ParseUint(c.Query("contentId"), 10, 64)
	if err != nil || id == 0 {
		badInput(c, "invalid contentId")
		return
	}
	ratings, err := h.ratings.Ratings(c.Request.Context(), uint(id), c.Query("contentType"))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ratings)
}
