// Package api exposes composition sessions over HTTP.
package api

import (
	"context"
	"image/color"
	"time"

	"go.uber.org/zap"

	"github.com/youruser/backdrop/internal/catalog"
	"github.com/youruser/backdrop/internal/compose"
	"github.com/youruser/backdrop/internal/export"
	imagepkg "github.com/youruser/backdrop/internal/image"
	"github.com/youruser/backdrop/internal/session"
)

const defaultSettleTimeout = 15 * time.Second

// Deps are the components the handlers drive.
type Deps struct {
	Catalog  *catalog.Catalog
	Sessions *session.Store
	Exports  *export.Engine
	// Store persists exports for later download; nil disables it.
	Store  export.Store
	Loader imagepkg.Loader
	Fonts  *imagepkg.Fonts
	Logger *zap.Logger

	PublicURL     string
	DefaultWidth  int
	DefaultHeight int
	MaxWidth      int
	MaxHeight     int
	SettleTimeout time.Duration
}

// Server holds the HTTP handlers.
type Server struct {
	Deps
	previewFill color.Color
}

// NewServer fills in defaults for zero-valued deps.
func NewServer(d Deps) *Server {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.SettleTimeout <= 0 {
		d.SettleTimeout = defaultSettleTimeout
	}
	if d.DefaultWidth <= 0 || d.DefaultHeight <= 0 {
		d.DefaultWidth, d.DefaultHeight = 1280, 720
	}
	if d.MaxWidth <= 0 || d.MaxHeight <= 0 {
		d.MaxWidth, d.MaxHeight = 4096, 4096
	}
	return &Server{Deps: d, previewFill: color.White}
}

// settle waits for the session's in-flight fetches so the reply reflects them.
// A timeout is not an error: the snapshot then shows the loading state.
func (s *Server) settle(ctx context.Context, r *compose.Renderer) {
	ctx, cancel := context.WithTimeout(ctx, s.SettleTimeout)
	defer cancel()
	if err := r.Wait(ctx); err != nil {
		s.Logger.Debug("session did not settle", zap.Error(err))
	}
}
