// Package session keeps the signed-in principal in a signed cookie.
//
// Sessions are stateless: Clear only expires the cookie, a copied token stays
// valid until it expires on its own.
package session

import (
	"crypto/rand"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"mediabrowser/internal/apperr"
	"mediabrowser/internal/identity"
)

const (
	CookieName    = "jwt"
	DefaultMaxAge = 7 * 24 * time.Hour

	sessionSubject = "Media Browser Session"

	claimUsername = "username"
	claimName     = "name"
	claimRole     = "role"
)

type Options struct {
	// Secret signs the tokens. A random secret is generated when empty, which
	// invalidates every session on restart.
	Secret []byte
	MaxAge time.Duration
	Secure bool
	// ErrorWriter answers requests rejected by the gates. Defaults to a bare
	// {"error": msg} JSON response.
	ErrorWriter func(http.ResponseWriter, *http.Request, error)
}

type Manager struct {
	jwtAuth  *jwtauth.JWTAuth
	maxAge   time.Duration
	secure   bool
	writeErr func(http.ResponseWriter, *http.Request, error)
}

func NewManager(opts Options) (*Manager, error) {
	secret := opts.Secret
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, err
		}
		slog.Warn("no session secret configured, sessions will not survive a restart")
	}
	if opts.MaxAge <= 0 {
		opts.MaxAge = DefaultMaxAge
	}
	if opts.ErrorWriter == nil {
		opts.ErrorWriter = writeError
	}

	return &Manager{
		jwtAuth:  jwtauth.New("HS256", secret, nil),
		maxAge:   opts.MaxAge,
		secure:   opts.Secure,
		writeErr: opts.ErrorWriter,
	}, nil
}

// Verifier decodes the session cookie into the request context.
func (m *Manager) Verifier() func(http.Handler) http.Handler {
	return jwtauth.Verify(m.jwtAuth, jwtauth.TokenFromCookie)
}

// Issue signs a token for p and sets the session cookie.
func (m *Manager) Issue(w http.ResponseWriter, r *http.Request, p identity.Principal) error {
	now := time.Now()
	expiration := now.Add(m.maxAge)

	_, signed, err := m.jwtAuth.Encode(map[string]any{
		jwt.SubjectKey:    sessionSubject,
		jwt.IssuedAtKey:   now.Unix(),
		jwt.ExpirationKey: expiration,
		claimUsername:     p.Username,
		claimName:         p.Name,
		claimRole:         string(p.Role),
	})
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    string(signed),
		Expires:  expiration,
		MaxAge:   int(m.maxAge / time.Second),
		Secure:   m.secure || r.TLS != nil,
		HttpOnly: true,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Clear expires the session cookie.
func (m *Manager) Clear(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		MaxAge:   -1,
		Secure:   m.secure || r.TLS != nil,
		Path:     "/",
		HttpOnly: true,
	})
}

// Principal returns the signed-in principal of r, or nil.
func (m *Manager) Principal(r *http.Request) *identity.Principal {
	token, claims, err := jwtauth.FromContext(r.Context())
	if err != nil || token == nil {
		return nil
	}

	if subject, _ := token.Subject(); subject != sessionSubject {
		return nil
	}

	username, _ := claims[claimUsername].(string)
	if username == "" {
		return nil
	}
	name, _ := claims[claimName].(string)
	role, _ := claims[claimRole].(string)
	return &identity.Principal{
		Username: username,
		Name:     name,
		Role:     identity.Role(role),
	}
}

// RequireAuthenticated rejects requests without a session.
func (m *Manager) RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.Principal(r) == nil {
			m.writeErr(w, r, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects requests without an admin principal, signed in or not,
// as Forbidden.
func (m *Manager) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p := m.Principal(r); p == nil || !p.IsAdmin() {
			m.writeErr(w, r, apperr.Forbidden("Admin access required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeError(w http.ResponseWriter, _ *http.Request, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apperr.Status(err))
	_ = json.NewEncoder(w).Encode(map[string]string{"error": apperr.Message(err)})
}
