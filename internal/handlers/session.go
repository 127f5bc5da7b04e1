package handlers

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/jason-s-yu/squadup/internal/auth"
)

// EnsureSession returns the caller's session id. A caller without a valid
// auth_token cookie gets a fresh anonymous session and the cookie is set on w.
func EnsureSession(w http.ResponseWriter, r *http.Request) (uuid.UUID, error) {
	if c, err := r.Cookie(auth.CookieName); err == nil && c.Value != "" {
		if sub, err := auth.AuthenticateJWT(c.Value); err == nil {
			if id, err := uuid.Parse(sub); err == nil {
				return id, nil
			}
		}
	}

	id := uuid.New()
	token, err := auth.CreateJWT(id.String())
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create session token: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		HttpOnly: true,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   auth.TOKEN_EXPIRE_TIME_SEC,
	})
	return id, nil
}
