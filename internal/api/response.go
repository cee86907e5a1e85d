package api

import (
	"errors"
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"

	"github.com/youruser/backdrop/internal/export"
	imagepkg "github.com/youruser/backdrop/internal/image"
	"github.com/youruser/backdrop/internal/session"
)

// ok sends a 200 response. Slices are wrapped in {data: [...]}.
func ok(c *gin.Context, data interface{}) {
	if data != nil && reflect.ValueOf(data).Kind() == reflect.Slice {
		c.JSON(http.StatusOK, gin.H{"data": data})
		return
	}
	c.JSON(http.StatusOK, data)
}

func created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// fail aborts with the {ok, code, message} error envelope.
func fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"ok": 0, "code": status, "message": message})
}

func badRequest(c *gin.Context, err error) {
	fail(c, http.StatusBadRequest, err.Error())
}

// failErr maps domain errors onto HTTP statuses.
func failErr(c *gin.Context, err error) {
	var loadErr *imagepkg.AssetLoadError
	switch {
	case errors.Is(err, session.ErrNotFound):
		fail(c, http.StatusNotFound, "session not found")
	case errors.Is(err, export.ErrNotFound):
		fail(c, http.StatusNotFound, "export not found")
	case errors.Is(err, export.ErrPrecondition):
		fail(c, http.StatusConflict, "select a background before exporting")
	case errors.As(err, &loadErr):
		fail(c, http.StatusBadGateway, loadErr.Error())
	default:
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, err.Error())
	}
}
