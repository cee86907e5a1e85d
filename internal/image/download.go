package imagepkg

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"net/http"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/youruser/backdrop/internal/util"
)

// Asset is a decoded image and its pixel size.
type Asset struct {
	Source string
	Image  image.Image
	Width  int
	Height int
}

func newAsset(src string, img image.Image) *Asset {
	b := img.Bounds()
	return &Asset{Source: src, Image: img, Width: b.Dx(), Height: b.Dy()}
}

// AssetLoadError reports a background or badge image that could not be fetched
// or decoded.
type AssetLoadError struct {
	Resource string
	Err      error
}

func (e *AssetLoadError) Error() string {
	return fmt.Sprintf("load asset %q: %v", e.Resource, e.Err)
}

func (e *AssetLoadError) Unwrap() error { return e.Err }

// Loader fetches an image asset.
type Loader interface {
	Load(ctx context.Context, src string) (*Asset, error)
}

// SourceLoader reads http(s) URLs over the network and everything else from
// files under Root.
type SourceLoader struct {
	Root   string
	Client *http.Client
}

// NewSourceLoader returns a loader rooted at root.
func NewSourceLoader(root string, client *http.Client) *SourceLoader {
	return &SourceLoader{Root: root, Client: client}
}

func isRemote(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// Load implements Loader.
func (l *SourceLoader) Load(ctx context.Context, src string) (*Asset, error) {
	var (
		img image.Image
		err error
	)
	if isRemote(src) {
		var body []byte
		body, err = util.GetBytes(ctx, l.Client, src)
		if err == nil {
			img, err = imaging.Decode(bytes.NewReader(body), imaging.AutoOrientation(true))
		}
	} else {
		img, err = imaging.Open(util.JoinRooted(l.Root, src), imaging.AutoOrientation(true))
	}
	if err != nil {
		return nil, &AssetLoadError{Resource: src, Err: err}
	}
	return newAsset(src, img), nil
}

// Cache memoises decoded assets and collapses concurrent loads of the same
// source into one fetch. Failures are not cached.
type Cache struct {
	next Loader
	log  *zap.Logger

	group singleflight.Group
	mu    sync.RWMutex
	items map[string]*Asset
}

// NewCache wraps next.
func NewCache(next Loader, log *zap.Logger) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{next: next, log: log, items: map[string]*Asset{}}
}

// Load implements Loader.
func (c *Cache) Load(ctx context.Context, src string) (*Asset, error) {
	c.mu.RLock()
	a, ok := c.items[src]
	c.mu.RUnlock()
	if ok {
		return a, nil
	}

	// The shared fetch runs detached so one caller giving up does not fail the
	// others waiting on the same source.
	ch := c.group.DoChan(src, func() (interface{}, error) {
		c.mu.RLock()
		a, ok := c.items[src]
		c.mu.RUnlock()
		if ok {
			return a, nil
		}
		a, err := c.next.Load(context.WithoutCancel(ctx), src)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.items[src] = a
		c.mu.Unlock()
		return a, nil
	})

	select {
	case <-ctx.Done():
		return nil, &AssetLoadError{Resource: src, Err: ctx.Err()}
	case res := <-ch:
		if res.Err != nil {
			c.log.Warn("asset load failed", zap.String("src", src), zap.Error(res.Err))
			return nil, res.Err
		}
		a := res.Val.(*Asset)
		if !res.Shared {
			c.log.Debug("asset loaded", zap.String("src", src), zap.Int("width", a.Width), zap.Int("height", a.Height))
		}
		return a, nil
	}
}

// Forget drops src from the cache.
func (c *Cache) Forget(src string) {
	c.mu.Lock()
	delete(c.items, src)
	c.mu.Unlock()
	c.group.Forget(src)
}
