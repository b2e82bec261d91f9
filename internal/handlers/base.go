package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"threadline/internal/services"

	"github.com/gin-gonic/gin"
)

// RespondError maps a service error onto its HTTP status and error code.
// Internal details are recorded on the context for the request logger and
// never sent to the client.
func RespondError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"
	switch {
	case errors.Is(err, services.ErrUnauthenticated):
		status, code = http.StatusUnauthorized, "UNAUTHENTICATED"
	case errors.Is(err, services.ErrForbidden):
		status, code = http.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, services.ErrNotFound):
		status, code = http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, services.ErrBadInput):
		status, code = http.StatusBadRequest, "BAD_USER_INPUT"
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		message = "internal server error"
	}
	c.AbortWithStatusJSON(status, gin.H{"error": message, "code": code})
}

func badInput(c *gin.Context, format string, args ...interface{}) {
	RespondError(c, fmt.Errorf("%w: "+format, append([]interface{}{services.ErrBadInput}, args...)...))
}

// paramID parses a positive numeric path parameter. On failure it has
// already written a 400 response.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		badInput(c, "invalid %s", name)
		return 0, false
	}
	return uint(id), true
}

// bindJSON decodes the request body. On failure it has already written a 400.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		badInput(c, "%v", err)
		return false
	}
	return true
}
