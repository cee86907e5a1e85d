// Package session keeps one composition renderer per client.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/youruser/backdrop/internal/compose"
	imagepkg "github.com/youruser/backdrop/internal/image"
)

// ErrNotFound is returned for unknown or evicted session ids.
var ErrNotFound = errors.New("session: not found")

// Options configures a Store.
type Options struct {
	Loader        imagepkg.Loader
	BadgeSource   string
	Logger        *zap.Logger
	IdleTTL       time.Duration
	FrameInterval time.Duration
	MaxWidth      int
	MaxHeight     int
}

// Session is one client's composition.
type Session struct {
	ID       string
	Renderer *compose.Renderer

	lastSeen time.Time
}

// Store owns every live session.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session

	opts Options
	log  *zap.Logger
	now  func() time.Time
}

// NewStore returns an empty store. Call Run to start frame ticks and eviction.
func NewStore(opts Options) *Store {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		sessions: map[string]*Session{},
		opts:     opts,
		log:      log,
		now:      time.Now,
	}
}

// Create starts a session with an empty canvas of the given size.
func (s *Store) Create(width, height int) *Session {
	sess := &Session{
		ID: uuid.NewString(),
		Renderer: compose.New(width, height, compose.Options{
			Loader:      s.opts.Loader,
			BadgeSource: s.opts.BadgeSource,
			Logger:      s.log,
			MaxWidth:    s.opts.MaxWidth,
			MaxHeight:   s.opts.MaxHeight,
		}),
	}

	s.mu.Lock()
	sess.lastSeen = s.now()
	s.sessions[sess.ID] = sess
	n := len(s.sessions)
	s.mu.Unlock()

	s.log.Info("session created", zap.String("session", sess.ID), zap.Int("live", n))
	return sess
}

// Get returns the session and marks it as recently used.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	sess.lastSeen = s.now()
	return sess, nil
}

// Delete closes and forgets a session.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	sess.Renderer.Close()
	s.log.Info("session closed", zap.String("session", id))
	return nil
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Store) all() []*Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	return out
}

// Tick applies pending resizes on every session.
func (s *Store) Tick() int {
	applied := 0
	for _, sess := range s.all() {
		if sess.Renderer.Frame() {
			applied++
		}
	}
	return applied
}

// Evict closes sessions idle for longer than the TTL.
func (s *Store) Evict() int {
	if s.opts.IdleTTL <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.opts.IdleTTL)

	s.mu.Lock()
	var stale []*Session
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			stale = append(stale, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range stale {
		sess.Renderer.Close()
		s.log.Info("session evicted", zap.String("session", sess.ID))
	}
	return len(stale)
}

// Run ticks frames and evicts idle sessions until ctx is done, then closes
// every remaining session.
func (s *Store) Run(ctx context.Context) {
	frame := s.opts.FrameInterval
	if frame <= 0 {
		frame = 16 * time.Millisecond
	}
	frames := time.NewTicker(frame)
	defer frames.Stop()

	sweep := time.Minute
	if s.opts.IdleTTL > 0 && s.opts.IdleTTL/2 < sweep {
		sweep = s.opts.IdleTTL / 2
	}
	janitor := time.NewTicker(sweep)
	defer janitor.Stop()

	for {
		select {
		case <-ctx.Done():
			s.closeAll()
			return
		case <-frames.C:
			s.Tick()
		case <-janitor.C:
			s.Evict()
		}
	}
}

func (s *Store) closeAll() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = map[string]*Session{}
	s.mu.Unlock()
	for _, sess := range sessions {
		sess.Renderer.Close()
	}
}
