// File: internal/googleauth/state.go
package googleauth

import (
	"fmt"
	"net/http"
	"strings"

	"smart_advisor_backend/internal/config"
	"smart_advisor_backend/internal/platform/crypto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// The state value doubles as the identity carrier across the provider
// redirect: "<userID>:<random>". The random half is the CSRF token; the
// userID half tells the callback which account to attach credentials to,
// since the browser redirect from the provider carries no bearer token.

func setOAuthCookie(c *gin.Context, cfg *config.Config, name, value string) {
	maxAge := cfg.OAuthCookieMaxAgeMinutes * 60
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   cfg.OAuthCookieDomain,
		MaxAge:   maxAge,
		Secure:   cfg.OAuthCookieSecure,
		HttpOnly: cfg.OAuthCookieHTTPOnly,
		SameSite: parseSameSite(cfg.OAuthCookieSameSite),
	})
}

// consumeOAuthCookie retrieves and deletes the OAuth cookie. Each stored
// state is usable at most once.
func consumeOAuthCookie(c *gin.Context, cfg *config.Config, name string) (string, error) {
	cookie, err := c.Request.Cookie(name)
	if err != nil {
		return "", fmt.Errorf("%s cookie not found: %w", name, err)
	}

	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   cfg.OAuthCookieDomain,
		MaxAge:   -1,
		Secure:   cfg.OAuthCookieSecure,
		HttpOnly: cfg.OAuthCookieHTTPOnly,
		SameSite: parseSameSite(cfg.OAuthCookieSameSite),
	})
	return cookie.Value, nil
}

func parseSameSite(s string) http.SameSite {
	switch s {
	case "Lax":
		return http.SameSiteLaxMode
	case "Strict":
		return http.SameSiteStrictMode
	case "None":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// generateAndSetOAuthState mints a state for the user and stores it in the
// state cookie. Returns the state to embed in the authorization URL.
func generateAndSetOAuthState(c *gin.Context, cfg *config.Config, userID uuid.UUID) (string, error) {
	random, err := crypto.GenerateSecureRandomString(32)
	if err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	state := userID.String() + ":" + random
	setOAuthCookie(c, cfg, cfg.OAuthStateCookieName, state)
	return state, nil
}

// userIDFromState recovers the user identity from a verified state value.
func userIDFromState(state string) (uuid.UUID, error) {
	idPart, _, ok := strings.Cut(state, ":")
	if !ok {
		return uuid.Nil, fmt.Errorf("state value has no identity part")
	}
	id, err := uuid.Parse(idPart)
	if err != nil {
		return uuid.Nil, fmt.Errorf("state value has malformed identity part: %w", err)
	}
	return id, nil
}
