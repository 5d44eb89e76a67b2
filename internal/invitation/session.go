package invitation

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// State is the local UI state a page render needs
type State struct {
	View           View
	Selected       *FamilyDetails
	DisclosureOpen bool
	Accepted       bool
	Celebrate      bool
	Effect         string
}

// Session is one guest's browser session on one invitation. Requests for the
// same session are applied one at a time.
type Session struct {
	mu         sync.Mutex
	id         string
	token      string
	view       *ViewController
	disclosure *Disclosure
	acceptance *Acceptance
	effects    *EffectScope
	celebrate  bool
	lastSeen   time.Time
}

func newSession(id, token string, onAccept func(), effects EffectFactory, log zerolog.Logger) *Session {
	s := &Session{
		id:         id,
		token:      token,
		view:       NewViewController(),
		disclosure: NewDisclosure(log),
		effects:    NewEffectScope(effects),
	}
	s.acceptance = NewAcceptance(onAccept, func() { s.celebrate = true }, log)
	return s
}

// ID returns the session id
func (s *Session) ID() string { return s.id }

// Enter moves the session to the invitation screen
func (s *Session) Enter() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Enter()
}

// SelectFamily opens the disclosure panel for family
func (s *Session) SelectFamily(family FamilyDetails) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disclosure.SelectFamily(family)
}

// SetDisclosureOpen toggles the disclosure panel
func (s *Session) SetDisclosureOpen(open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disclosure.SetOpen(open)
}

// Accept runs the acceptance workflow
func (s *Session) Accept() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.acceptance.Accept()
}

// Render attaches the ambient effect for c and returns the state to draw.
// The celebration is reported once, on the first render after acceptance.
func (s *Session) Render(c Capability) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		View:           s.view.View(),
		Selected:       s.disclosure.Selected(),
		DisclosureOpen: s.disclosure.Open(),
		Accepted:       s.acceptance.Accepted(),
		Celebrate:      s.celebrate,
	}
	s.celebrate = false
	if st.View == ViewInvitation {
		st.Effect = s.effects.Activate(c)
	}
	return st
}

func (s *Session) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.effects.Release()
}

type sessionKey struct {
	id    string
	token string
}

// Sessions is the in-memory registry of live sessions
type Sessions struct {
	mu      sync.Mutex
	items   map[sessionKey]*Session
	ttl     time.Duration
	effects EffectFactory
	log     zerolog.Logger
	now     func() time.Time
}

// NewSessions creates a registry that forgets sessions idle for longer than ttl
func NewSessions(ttl time.Duration, effects EffectFactory, log zerolog.Logger) *Sessions {
	return &Sessions{
		items:   make(map[sessionKey]*Session),
		ttl:     ttl,
		effects: effects,
		log:     log,
		now:     time.Now,
	}
}

// Get returns the session id has on the invitation identified by token.
// When there is none a new session is created under a freshly generated id,
// so callers must reissue the id whenever it differs from the one passed in.
// onAccept is only used for new sessions.
func (r *Sessions) Get(id, token string, onAccept func()) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.items[sessionKey{id: id, token: token}]; ok && id != "" {
		s.lastSeen = r.now()
		return s
	}
	id = uuid.NewString()

	s := newSession(id, token, onAccept, r.effects, r.log.With().Str("session", id).Str("token", token).Logger())
	s.lastSeen = r.now()
	r.items[sessionKey{id: id, token: token}] = s
	return s
}

// Sweep evicts idle sessions and releases their effects
func (r *Sessions) Sweep() int {
	r.mu.Lock()
	var idle []*Session
	cutoff := r.now().Add(-r.ttl)
	for k, s := range r.items {
		if s.lastSeen.Before(cutoff) {
			idle = append(idle, s)
			delete(r.items, k)
		}
	}
	r.mu.Unlock()

	for _, s := range idle {
		s.release()
	}
	if len(idle) > 0 {
		r.log.Debug().Int("count", len(idle)).Msg("evicted idle sessions")
	}
	return len(idle)
}

// Run sweeps every interval until ctx is done, then closes the registry
func (r *Sessions) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.Close()
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Close releases every session
func (r *Sessions) Close() {
	r.mu.Lock()
	items := r.items
	r.items = make(map[sessionKey]*Session)
	r.mu.Unlock()

	for _, s := range items {
		s.release()
	}
}

// Len returns the number of live sessions
func (r *Sessions) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}
