package session

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

const cookieName = "storefront_session"

// Session is the explicit per-request session context. Cart and coupon
// state live in Redis under ID; only the identity travels in the cookie.
type Session struct {
	ID     string
	UserID string // empty for guests
}

func (s *Session) LoggedIn() bool { return s.UserID != "" }

type Manager struct {
	store *sessions.CookieStore
}

func NewManager(secret string) *Manager {
	store := sessions.NewCookieStore([]byte(secret))
	store.MaxAge(86400 * 7)
	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.SameSite = http.SameSiteLaxMode
	return &Manager{store: store}
}

// Load returns the request's session, assigning a fresh id (and writing
// the cookie) on first contact.
func (m *Manager) Load(w http.ResponseWriter, r *http.Request) (*Session, error) {
	gs, err := m.store.Get(r, cookieName)
	if err != nil {
		// Tampered or stale cookie: start over with a clean session.
		gs, _ = m.store.New(r, cookieName)
	}

	s := &Session{}
	if v, ok := gs.Values["sid"].(string); ok && v != "" {
		s.ID = v
	} else {
		s.ID = uuid.NewString()
		gs.Values["sid"] = s.ID
		if err := gs.Save(r, w); err != nil {
			return nil, err
		}
	}
	if v, ok := gs.Values["uid"].(string); ok {
		s.UserID = v
	}
	return s, nil
}

// Login rotates the session id and binds the user to the cookie.
func (m *Manager) Login(w http.ResponseWriter, r *http.Request, userID string) (*Session, error) {
	gs, err := m.store.Get(r, cookieName)
	if err != nil {
		gs, _ = m.store.New(r, cookieName)
	}
	s := &Session{ID: uuid.NewString(), UserID: userID}
	gs.Values["sid"] = s.ID
	gs.Values["uid"] = userID
	if err := gs.Save(r, w); err != nil {
		return nil, err
	}
	return s, nil
}

func (m *Manager) Logout(w http.ResponseWriter, r *http.Request) error {
	gs, err := m.store.Get(r, cookieName)
	if err != nil {
		gs, _ = m.store.New(r, cookieName)
	}
	gs.Values = map[interface{}]interface{}{}
	gs.Options.MaxAge = -1
	return gs.Save(r, w)
}
