package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qs-lzh/movie-review/internal/app"
)

type Handler struct {
	app *app.App
}

func New(app *app.App) *Handler {
	return &Handler{
		app: app,
	}
}

// HandleHealth reports whether the database answers.
func (h *Handler) HandleHealth(c *gin.Context) {
	sqlDB, err := h.app.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		fail(c, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	respond(c, http.StatusOK, gin.H{"status": "ok"})
}
