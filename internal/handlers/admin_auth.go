package handlers

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmrc/retreats/internal/services"
)

const adminCookieName = "admin_session"

// AdminAuth guards the admin API with a single shared credential and
// server-side cookie sessions.
type AdminAuth struct {
	password string
	hash     []byte
	ttl      time.Duration
	secure   bool
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]time.Time // token -> expiry
}

// NewAdminAuth checks logins against hash (bcrypt) when set, else password.
func NewAdminAuth(password, hash string, ttl time.Duration, secure bool) *AdminAuth {
	a := &AdminAuth{
		password: password,
		ttl:      ttl,
		secure:   secure,
		now:      time.Now,
		sessions: make(map[string]time.Time),
	}
	if hash != "" {
		a.hash = []byte(hash)
	}
	return a
}

func (a *AdminAuth) verify(pw string) bool {
	if pw == "" {
		return false
	}
	if a.hash != nil {
		return bcrypt.CompareHashAndPassword(a.hash, []byte(pw)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(pw), []byte(a.password)) == 1
}

func (a *AdminAuth) newSession() (string, time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	now := a.now()
	for tok, exp := range a.sessions {
		if !now.Before(exp) {
			delete(a.sessions, tok)
		}
	}
	tok := uuid.NewString()
	exp := now.Add(a.ttl)
	a.sessions[tok] = exp
	return tok, exp
}

func (a *AdminAuth) valid(tok string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	exp, ok := a.sessions[tok]
	if !ok {
		return false
	}
	if !a.now().Before(exp) {
		delete(a.sessions, tok)
		return false
	}
	return true
}

// RequireAdmin rejects requests without a live session with a 401.
func (a *AdminAuth) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(adminCookieName)
		if err != nil || !a.valid(c.Value) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"error":   "unauthorized",
				"message": "admin login required",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

type loginRequest struct {
	Password string `json:"password"`
}

// POST /admin/login (JSON {"password"} or a form field)
func (a *AdminAuth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := decodeJSON(w, r, &req); err != nil {
			var verr *services.ValidationError
			if !errors.As(err, &verr) {
				verr = &services.ValidationError{Field: "body", Code: services.CodeInvalid, Message: err.Error()}
			}
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": verr.Code, "field": verr.Field, "message": verr.Error()})
			return
		}
	} else {
		req.Password = r.FormValue("password")
	}

	if !a.verify(req.Password) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"error":   "invalid_credentials",
			"message": "invalid password",
		})
		return
	}
	tok, exp := a.newSession()
	http.SetCookie(w, &http.Cookie{
		Name:     adminCookieName,
		Value:    tok,
		Path:     "/",
		HttpOnly: true,
		Secure:   a.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  exp,
	})
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "expiresAt": exp.UTC()})
}

// POST /admin/logout
func (a *AdminAuth) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(adminCookieName); err == nil {
		a.mu.Lock()
		delete(a.sessions, c.Value)
		a.mu.Unlock()
	}
	http.SetCookie(w, &http.Cookie{
		Name:     adminCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
	w.WriteHeader(http.StatusNoContent)
}
