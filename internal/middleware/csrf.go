package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"net/http"
)

// Double-submit CSRF: the token lives in a cookie the browser sends back on
// its own and must be echoed in a request header by the frontend. Tokens
// are random and never stored server-side.
const (
	csrfCookieName = "hamper_csrf"
	csrfHeaderName = "X-CSRF-Token"
	csrfTTLSeconds = 24 * 60 * 60
)

type CSRF struct {
	secure bool
}

func NewCSRF(secure bool) *CSRF {
	return &CSRF{secure: secure}
}

// Protect rejects state-changing requests whose header token does not match
// the cookie. Safe methods pass through and pick up a token on the way out.
func (c *CSRF) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.issue(w, r)
			next.ServeHTTP(w, r)
			return
		}

		cookie, err := r.Cookie(csrfCookieName)
		if err != nil || cookie.Value == "" {
			denyCSRF(w, "CSRF token missing")
			return
		}
		sent := r.Header.Get(csrfHeaderName)
		if sent == "" {
			denyCSRF(w, "CSRF token header missing")
			return
		}
		if subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(sent)) != 1 {
			denyCSRF(w, "CSRF token mismatch")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Token returns the caller's token, minting one if needed. Wired to
// GET /api/csrf so the frontend can bootstrap before its first POST.
func (c *CSRF) Token(w http.ResponseWriter, r *http.Request) {
	token := c.issue(w, r)
	w.Header().Set("Content-Type", "application/json")
	if token == "" {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "Failed to generate CSRF token"})
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]string{"token": token})
}

// issue reuses the caller's existing token or mints a fresh one, mirroring
// it into the response header so scripts can pick it up either way. The
// cookie is intentionally not HttpOnly.
func (c *CSRF) issue(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(csrfCookieName); err == nil && cookie.Value != "" {
		w.Header().Set(csrfHeaderName, cookie.Value)
		return cookie.Value
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return ""
	}
	token := base64.RawURLEncoding.EncodeToString(raw)

	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   csrfTTLSeconds,
		Secure:   c.secure,
		SameSite: http.SameSiteStrictMode,
	})
	w.Header().Set(csrfHeaderName, token)
	return token
}

func denyCSRF(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
