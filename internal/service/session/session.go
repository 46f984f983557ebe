// Package session holds bearer tokens per opaque session id.
// Presence of the token key in the cache is the only login signal.
package session

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"StockDash/internal/domain/models"
	"StockDash/pkg/cache"
	xhttp "StockDash/pkg/http"
	applogger "StockDash/pkg/logger"

	"github.com/google/uuid"
)

const DefaultTokenTTL = 24 * time.Hour

var ErrNoSession = errors.New("session: not logged in")

// Listener receives login and logout notifications.
type Listener func(models.SessionEvent)

// Manager owns the token store and the per-session listener lists.
type Manager struct {
	store cache.Service
	ttl   time.Duration
	log   *applogger.Logger

	mu   sync.Mutex
	seq  uint64
	subs map[string]map[uint64]Listener
}

type Option func(*Manager)

func WithTokenTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

func WithLogger(l *applogger.Logger) Option {
	return func(m *Manager) { m.log = l }
}

func NewManager(store cache.Service, opts ...Option) *Manager {
	m := &Manager{
		store: store,
		ttl:   DefaultTokenTTL,
		log:   applogger.Nop(),
		subs:  make(map[string]map[uint64]Listener),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// NewID returns a fresh opaque session id.
func (m *Manager) NewID() string { return uuid.NewString() }

// Session binds the manager to one id. An empty id yields a session that is never logged in.
func (m *Manager) Session(id string) *Session {
	return &Session{id: id, m: m}
}

func tokenKey(id string) string {
	return cache.GenerateKeyWithParams("session", id, "jwt_token")
}

func (m *Manager) subscribe(id string, fn Listener) func() {
	m.mu.Lock()
	m.seq++
	n := m.seq
	if m.subs[id] == nil {
		m.subs[id] = make(map[uint64]Listener)
	}
	m.subs[id][n] = fn
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs[id], n)
			if len(m.subs[id]) == 0 {
				delete(m.subs, id)
			}
			m.mu.Unlock()
		})
	}
}

// notify calls listeners outside the lock so they may unsubscribe.
func (m *Manager) notify(id string, typ models.SessionEventType) {
	m.mu.Lock()
	ls := make([]Listener, 0, len(m.subs[id]))
	for _, fn := range m.subs[id] {
		ls = append(ls, fn)
	}
	m.mu.Unlock()

	ev := models.SessionEvent{Type: typ, SessionID: id, At: time.Now().UTC()}
	for _, fn := range ls {
		fn(ev)
	}
}

// Listeners reports how many listeners are registered for id.
func (m *Manager) Listeners(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs[id])
}

// Session is a handle on one session id.
type Session struct {
	id string
	m  *Manager
}

func (s *Session) ID() string { return s.id }

// Token is a snapshot of the current bearer token; empty when logged out.
func (s *Session) Token(ctx context.Context) string {
	if s == nil || s.id == "" {
		return ""
	}
	var tok string
	if err := s.m.store.Get(ctx, tokenKey(s.id), &tok); err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.m.log.Warn("session token read failed", applogger.String("session", s.id), applogger.Error(err))
		}
		return ""
	}
	return tok
}

func (s *Session) LoggedIn(ctx context.Context) bool {
	return s.Token(ctx) != ""
}

// Subscribe registers fn for login and logout of this session.
func (s *Session) Subscribe(fn Listener) (unsubscribe func()) {
	return s.m.subscribe(s.id, fn)
}

// SetToken stores the token and notifies listeners of a login.
func (s *Session) SetToken(ctx context.Context, token string) error {
	if s.id == "" {
		return ErrNoSession
	}
	if err := s.m.store.Set(ctx, tokenKey(s.id), token, s.m.ttl); err != nil {
		return err
	}
	s.m.notify(s.id, models.SessionLogin)
	return nil
}

// Clear removes the token and notifies listeners of a logout.
func (s *Session) Clear(ctx context.Context) error {
	if s.id == "" {
		return nil
	}
	if err := s.m.store.Delete(ctx, tokenKey(s.id)); err != nil {
		return err
	}
	s.m.notify(s.id, models.SessionLogout)
	return nil
}

// InvalidateOn clears the session when err is an upstream 401.
func (s *Session) InvalidateOn(ctx context.Context, err error) bool {
	if s == nil || s.id == "" || !xhttp.IsStatus(err, http.StatusUnauthorized) {
		return false
	}
	if cerr := s.Clear(ctx); cerr != nil {
		s.m.log.Warn("session clear failed", applogger.String("session", s.id), applogger.Error(cerr))
	}
	return true
}
