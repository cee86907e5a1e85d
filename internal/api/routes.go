package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter builds the gin engine with logging, recovery and CORS.
func NewRouter(s *Server, dev bool, origins []string) *gin.Engine {
	if dev {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Recovery())
	r.Use(requestLogger(s.Logger.Named("http")))
	r.Use(corsMiddleware(origins))
	r.NoRoute(func(c *gin.Context) { fail(c, http.StatusNotFound, "Not Found") })
	s.RegisterRoutes(r)
	return r
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")
	{
		api.GET("/health", s.health)
		api.GET("/backgrounds", s.listBackgrounds)
		api.GET("/backgrounds/:id/thumbnail", s.backgroundThumbnail)

		api.POST("/sessions", s.createSession)
		api.GET("/sessions/:id", s.getSession)
		api.DELETE("/sessions/:id", s.deleteSession)
		api.PUT("/sessions/:id/background", s.selectBackground)
		api.PUT("/sessions/:id/fields/:field", s.setField)
		api.PUT("/sessions/:id/badge", s.setBadge)
		api.PUT("/sessions/:id/size", s.resize)
		api.GET("/sessions/:id/preview.png", s.preview)
		api.GET("/sessions/:id/export", s.downloadExport)
		api.POST("/sessions/:id/exports", s.storeExport)

		api.GET("/exports/:key", s.storedExport)
		api.GET("/exports/:key/qr", s.storedExportQR)
	}
	s.Logger.Debug("routes registered", zap.Int("count", len(r.Routes())))
}
