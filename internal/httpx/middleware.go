package httpx

import (
	"context"
	"net/http"

	"github.com/ariefcatur/go-storefront.git/internal/session"
	"github.com/ariefcatur/go-storefront.git/internal/users"
)

type ctxKey int

const (
	ctxKeySession ctxKey = iota
	ctxKeyUser
)

// SessionFrom returns the request session placed by WithSession. Every
// route below the middleware can rely on it being present.
func SessionFrom(ctx context.Context) *session.Session {
	s, _ := ctx.Value(ctxKeySession).(*session.Session)
	return s
}

func UserFrom(ctx context.Context) *users.User {
	u, _ := ctx.Value(ctxKeyUser).(*users.User)
	return u
}

type UserGetter interface {
	ByID(ctx context.Context, id string) (*users.User, error)
}

// WithSession resolves (or creates) the cookie session and stores it in
// the request context. Cart and checkout operate on this explicit
// session object, never on ambient globals.
func WithSession(mgr *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, err := mgr.Load(w, r)
			if err != nil {
				writeErr(w, http.StatusInternalServerError, "session error")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeySession, s)))
		})
	}
}

// RequireAuth rejects guests and loads the account onto the context.
func RequireAuth(repo UserGetter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := SessionFrom(r.Context())
			if s == nil || !s.LoggedIn() {
				writeErr(w, http.StatusUnauthorized, "login required")
				return
			}
			u, err := repo.ByID(r.Context(), s.UserID)
			if err != nil {
				writeErr(w, http.StatusUnauthorized, "login required")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyUser, u)))
		})
	}
}

// RequireCapability gates admin routes on the user's capability set
// rather than a raw role compare.
func RequireCapability(c users.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u := UserFrom(r.Context())
			if u == nil || !u.Can(c) {
				writeErr(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
