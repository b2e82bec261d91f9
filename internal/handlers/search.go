package handlers

import (
	"net/http"
	"threadline/internal/services"

	"github.com/gin-gonic/gin"
)

type SearchHandler struct {
	search *services.SearchService
}

func NewSearchHandler(search *services.SearchService) *SearchHandler {
	return &SearchHandler{search: search}
}

// Content handles GET /api/search?q=
func (h *SearchHandler) Content(c *gin.Context) {
	res, err := h.search.SearchContent(c.Request.Context(), c.Query("q"))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *SearchHandler) Channels(c *gin.Context) {
	res, err := h.search.SearchChannels(c.Request.Context(), c.Query("q"), c.DefaultQuery("sortBy", services.SortRecent))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *SearchHandler) Messages(c *gin.Context) {
	res, err := h.search.SearchMessages(c.Request.Context(), c.Query("q"), c.DefaultQuery("sortBy", services.SortRecent))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *SearchHandler) Users(c *gin.Context) {
	res, err := h.search.SearchUsers(c.Request.Context(), c.Query("q"))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
