package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/qs-lzh/movie-review/internal/middleware"
	"github.com/qs-lzh/movie-review/internal/service"
)

func respond(c *gin.Context, status int, body gin.H) {
	body["success"] = true
	c.JSON(status, body)
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"message": message,
	})
}

// failErr maps a service error onto a status and message. Anything it does
// not recognise is logged and reported as a 500 carrying contextMessage.
func (h *Handler) failErr(c *gin.Context, err error, contextMessage string) {
	var (
		validation *service.ValidationError
		notFound   *service.NotFoundError
		conflict   *service.ConflictError
	)
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": validation.Message,
			"fields":  validation.Fields,
		})
	case errors.As(err, &notFound):
		fail(c, http.StatusNotFound, notFound.Message)
	case errors.As(err, &conflict):
		fail(c, http.StatusBadRequest, conflict.Message)
	case errors.Is(err, service.ErrInvalidCredentials):
		fail(c, http.StatusUnauthorized, "Invalid password. Please try again.")
	case errors.Is(err, service.ErrBusy):
		c.Header("Retry-After", "1")
		fail(c, http.StatusServiceUnavailable, "This movie is busy right now. Please try again.")
	default:
		h.internalError(c, err, contextMessage)
	}
}

func (h *Handler) internalError(c *gin.Context, err error, contextMessage string) {
	h.app.Logger.Error(contextMessage,
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", c.GetString(middleware.RequestIDKey)),
	)
	body := gin.H{
		"success": false,
		"message": contextMessage,
	}
	if !h.app.Config.IsProduction() {
		body["error"] = err.Error()
	}
	c.JSON(http.StatusInternalServerError, body)
}

func bindJSON(c *gin.Context, dest any) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body.")
		return false
	}
	return true
}

// paramID reads a positive numeric path parameter.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// queryInt returns 0 when the parameter is absent or not a number.
func queryInt(c *gin.Context, name string) int {
	v, err := strconv.Atoi(strings.TrimSpace(c.Query(name)))
	if err != nil {
		return 0
	}
	return v
}

// stringList accepts either a JSON array of strings or a single
// comma separated string.
type stringList []string

func (l *stringList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*l = list
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*l = strings.Split(s, ",")
	return nil
}

// flexID accepts an id sent either as a JSON number or as a numeric string.
type flexID uint

func (id *flexID) UnmarshalJSON(data []byte) error {
	var n uint
	if err := json.Unmarshal(data, &n); err == nil {
		*id = flexID(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s = strings.TrimSpace(s); s == "" {
		*id = 0
		return nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return err
	}
	*id = flexID(v)
	return nil
}
