package handlers

import (
	"net/http"
	"strconv"
	"threadline/internal/middleware"
	"threadline/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	users  *services.UserService
	search *services.SearchService
}

func NewUserHandler(users *services.UserService, search *services.SearchService) *UserHandler {
	return &UserHandler{users: users, search: search}
}

func (h *UserHandler) List(c *gin.Context) {
	users, err := h.users.Users(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// Top handles GET /api/users/top?sortBy=posts|ratings&limit=N
func (h *UserHandler) Top(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	users, err := h.users.TopUsers(c.Request.Context(), c.DefaultQuery("sortBy", services.TopByPosts), limit)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *UserHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	user, err := h.users.User(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) ByName(c *gin.Context) {
	user, err := h.users.UserByName(c.Request.Context(), c.Param("username"))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Content lists everything the user authored.
func (h *UserHandler) Content(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	res, err := h.search.ContentByUser(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Delete cascades the user's content away. Deleting yourself also ends the session.
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	actor := middleware.CurrentUser(c)
	if err := h.users.DeleteUser(c.Request.Context(), actor, id); err != nil {
		RespondError(c, err)
		return
	}

	if actor.ID == id {
		session := sessions.Default(c)
		session.Clear()
		session.Save()
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
