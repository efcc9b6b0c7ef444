package cookie

import (
	"net/http"
	"strings"
	"time"
)

// Cookie names the frontend reads tokens from.
const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// Policy decides how session cookies are written. Secure is off for local
// development so browsers accept the cookies over plain HTTP.
type Policy struct {
	Secure        bool
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// Set writes both session cookies on the response.
func (p Policy) Set(w http.ResponseWriter, accessToken, refreshToken string) {
	http.SetCookie(w, p.build(AccessTokenCookie, accessToken, p.AccessExpiry))
	http.SetCookie(w, p.build(RefreshTokenCookie, refreshToken, p.RefreshExpiry))
}

// Clear expires both session cookies.
func (p Policy) Clear(w http.ResponseWriter) {
	http.SetCookie(w, p.build(AccessTokenCookie, "", -time.Second))
	http.SetCookie(w, p.build(RefreshTokenCookie, "", -time.Second))
}

func (p Policy) build(name, value string, maxAge time.Duration) *http.Cookie {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   p.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if maxAge < 0 {
		c.MaxAge = -1
	} else {
		c.MaxAge = int(maxAge / time.Second)
	}
	return c
}

// AccessTokenFromRequest extracts the access token, preferring the session
// cookie and falling back to an Authorization bearer header.
func AccessTokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(AccessTokenCookie); err == nil && c.Value != "" {
		return c.Value
	}
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

// RefreshTokenFromRequest extracts the refresh token from the session cookie.
func RefreshTokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(RefreshTokenCookie); err == nil {
		return c.Value
	}
	return ""
}
