package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/youruser/backdrop/internal/catalog"
	"github.com/youruser/backdrop/internal/compose"
	"github.com/youruser/backdrop/internal/export"
	imagepkg "github.com/youruser/backdrop/internal/image"
	"github.com/youruser/backdrop/internal/session"
)

const (
	thumbWidth  = 320
	thumbHeight = 180
)

type sessionView struct {
	ID string `json:"id"`
	compose.Snapshot
}

type sizeRequest struct {
	Width  int `json:"width" binding:"gt=0"`
	Height int `json:"height" binding:"gt=0"`
}

// checkSize rejects canvases larger than the configured maximum.
func (s *Server) checkSize(req sizeRequest) error {
	if req.Width > s.MaxWidth || req.Height > s.MaxHeight {
		return fmt.Errorf("canvas %dx%d exceeds the maximum %dx%d", req.Width, req.Height, s.MaxWidth, s.MaxHeight)
	}
	return nil
}

func attachment(c *gin.Context, filename string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, export.ContentType, data)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": s.Sessions.Len()})
}

func (s *Server) listBackgrounds(c *gin.Context) {
	ok(c, s.Catalog.Filter(c.Query("q")))
}

func (s *Server) backgroundThumbnail(c *gin.Context) {
	def, found := s.Catalog.Get(c.Param("id"))
	if !found {
		fail(c, http.StatusNotFound, "background not found")
		return
	}
	asset, err := s.Loader.Load(c.Request.Context(), def.Source)
	if err != nil {
		failErr(c, err)
		return
	}
	var buf bytes.Buffer
	if err := imagepkg.EncodePNG(&buf, imagepkg.Thumbnail(asset.Image, thumbWidth, thumbHeight)); err != nil {
		failErr(c, err)
		return
	}
	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}

func (s *Server) createSession(c *gin.Context) {
	req := sizeRequest{Width: s.DefaultWidth, Height: s.DefaultHeight}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}
	if err := s.checkSize(req); err != nil {
		badRequest(c, err)
		return
	}
	sess := s.Sessions.Create(req.Width, req.Height)
	created(c, sessionView{ID: sess.ID, Snapshot: sess.Renderer.Snapshot()})
}

// lookup resolves :id, answering 404 itself when the session is gone.
func (s *Server) lookup(c *gin.Context) (*session.Session, bool) {
	sess, err := s.Sessions.Get(c.Param("id"))
	if err != nil {
		failErr(c, err)
		return nil, false
	}
	return sess, true
}

func (s *Server) reply(c *gin.Context, sess *session.Session) {
	s.settle(c.Request.Context(), sess.Renderer)
	ok(c, sessionView{ID: sess.ID, Snapshot: sess.Renderer.Snapshot()})
}

func (s *Server) getSession(c *gin.Context) {
	if sess, found := s.lookup(c); found {
		s.reply(c, sess)
	}
}

func (s *Server) selectBackground(c *gin.Context) {
	sess, found := s.lookup(c)
	if !found {
		return
	}
	var req struct {
		BackgroundID string `json:"background_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	def, known := s.Catalog.Get(req.BackgroundID)
	if !known {
		fail(c, http.StatusNotFound, "background not found")
		return
	}
	sess.Renderer.SelectBackground(def)
	s.reply(c, sess)
}

func (s *Server) setField(c *gin.Context) {
	sess, found := s.lookup(c)
	if !found {
		return
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	sess.Renderer.SetFieldText(c.Param("field"), req.Text)
	s.reply(c, sess)
}

func (s *Server) setBadge(c *gin.Context) {
	sess, found := s.lookup(c)
	if !found {
		return
	}
	var req struct {
		Status catalog.BadgeStatus `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	sess.Renderer.SetBadgeStatus(req.Status)
	s.reply(c, sess)
}

// resize only records the size; the frame ticker or the next preview applies it.
func (s *Server) resize(c *gin.Context) {
	sess, found := s.lookup(c)
	if !found {
		return
	}
	var req sizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := s.checkSize(req); err != nil {
		badRequest(c, err)
		return
	}
	sess.Renderer.RequestResize(req.Width, req.Height)
	c.JSON(http.StatusAccepted, gin.H{"ok": 1, "width": req.Width, "height": req.Height})
}

func (s *Server) preview(c *gin.Context) {
	sess, found := s.lookup(c)
	if !found {
		return
	}
	s.settle(c.Request.Context(), sess.Renderer)
	img, err := sess.Renderer.Preview(s.Fonts, s.previewFill)
	if err != nil {
		failErr(c, err)
		return
	}
	var buf bytes.Buffer
	if err := imagepkg.EncodePNG(&buf, img); err != nil {
		failErr(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}

func (s *Server) render(c *gin.Context) (*export.Result, bool) {
	sess, found := s.lookup(c)
	if !found {
		return nil, false
	}
	s.settle(c.Request.Context(), sess.Renderer)
	res, err := s.Exports.Export(c.Request.Context(), sess.Renderer.ExportState())
	if err != nil {
		failErr(c, err)
		return nil, false
	}
	return res, true
}

func (s *Server) downloadExport(c *gin.Context) {
	if res, rendered := s.render(c); rendered {
		attachment(c, res.Filename, res.Data)
	}
}

func (s *Server) storeExport(c *gin.Context) {
	if s.Store == nil {
		fail(c, http.StatusNotImplemented, "export storage is disabled")
		return
	}
	res, rendered := s.render(c)
	if !rendered {
		return
	}
	key, err := s.Store.Put(c.Request.Context(), res.Filename, res.Data)
	if err != nil {
		failErr(c, err)
		return
	}
	s.Logger.Info("export stored", zap.String("key", key), zap.String("filename", res.Filename))
	created(c, gin.H{"key": key, "filename": res.Filename, "url": s.exportURL(c, key)})
}

func (s *Server) storedExport(c *gin.Context) {
	if s.Store == nil {
		fail(c, http.StatusNotImplemented, "export storage is disabled")
		return
	}
	a, err := s.Store.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		failErr(c, err)
		return
	}
	attachment(c, a.Filename, a.Data)
}

func (s *Server) storedExportQR(c *gin.Context) {
	if s.Store == nil {
		fail(c, http.StatusNotImplemented, "export storage is disabled")
		return
	}
	key := c.Param("key")
	if _, err := s.Store.Get(c.Request.Context(), key); err != nil {
		failErr(c, err)
		return
	}
	size := imagepkg.DefaultQRSize
	if v := c.Query("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			badRequest(c, errors.New("size must be an integer"))
			return
		}
		size = n
	}
	png, err := imagepkg.ShareQR(s.exportURL(c, key), size)
	if err != nil {
		failErr(c, err)
		return
	}
	c.Data(http.StatusOK, export.ContentType, png)
}

func (s *Server) deleteSession(c *gin.Context) {
	if err := s.Sessions.Delete(c.Param("id")); err != nil {
		failErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// exportURL is the public download link for a stored export.
func (s *Server) exportURL(c *gin.Context, key string) string {
	base := strings.TrimSuffix(s.PublicURL, "/")
	if base == "" {
		scheme := "http"
		if c.Request.TLS != nil {
			scheme = "https"
		}
		if p := strings.ToLower(c.GetHeader("X-Forwarded-Proto")); p == "http" || p == "https" {
			scheme = p
		}
		base = scheme + "://" + c.Request.Host
	}
	return base + "/api/exports/" + key
}
