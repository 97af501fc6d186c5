package handler

import (
	"net/http"

	"github.com/oklog/ulid/v2"
)

// FlashCookie names the cookie that keys a browser's flash queue.
const FlashCookie = "flash_session"

// flashSession returns the caller's flash session id, issuing a new cookie
// when the request has none.
func flashSession(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(FlashCookie); err == nil {
		if _, err := ulid.ParseStrict(c.Value); err == nil {
			return c.Value
		}
	}

	id := ulid.Make().String()
	http.SetCookie(w, &http.Cookie{
		Name:     FlashCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return id
}
