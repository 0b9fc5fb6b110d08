package rest

import (
	"net/http"

	"github.com/dmitrijs2005/docvault/internal/server/config"
)

type cookieSettings struct {
	name     string
	maxAge   int
	secure   bool
	sameSite http.SameSite
}

func newCookieSettings(cfg *config.Config) cookieSettings {
	maxAge := cfg.CookieMaxAge
	if maxAge <= 0 {
		maxAge = cfg.TokenValidityDuration
	}
	cs := cookieSettings{
		name:     cfg.CookieName,
		maxAge:   int(maxAge.Seconds()),
		sameSite: http.SameSiteLaxMode,
	}
	if cs.name == "" {
		cs.name = "docvault"
	}
	// SameSite=None is rejected by browsers without Secure.
	if cfg.Production {
		cs.secure = true
		cs.sameSite = http.SameSiteNoneMode
	}
	return cs
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookie.name,
		Value:    token,
		Path:     "/",
		MaxAge:   s.cookie.maxAge,
		HttpOnly: true,
		Secure:   s.cookie.secure,
		SameSite: s.cookie.sameSite,
	})
}

// clearSessionCookie expires the cookie with the same attributes it was set
// with, otherwise browsers keep the original.
func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookie.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cookie.secure,
		SameSite: s.cookie.sameSite,
	})
}
