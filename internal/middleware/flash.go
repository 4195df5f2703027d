package middleware

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	flashCookie = "flash"
	flashCtxKey = "flash_pending"
)

// AddFlash queues a one-time message for the next page rendered for this browser,
// whether in this response or after a redirect.
func AddFlash(c *gin.Context, msg string) {
	pending := append(pendingFlashes(c), msg)
	c.Set(flashCtxKey, pending)
	writeFlashCookie(c, pending)
}

// Flashes returns and consumes the queued messages: those carried over from
// the previous response followed by those added during this request.
func Flashes(c *gin.Context) []string {
	var msgs []string
	if raw, err := c.Cookie(flashCookie); err == nil && raw != "" {
		msgs = decodeFlashes(raw)
	}
	msgs = append(msgs, pendingFlashes(c)...)

	c.Set(flashCtxKey, []string(nil))
	c.SetCookie(flashCookie, "", -1, "/", "", false, true)
	return msgs
}

func pendingFlashes(c *gin.Context) []string {
	if v, ok := c.Get(flashCtxKey); ok {
		if msgs, ok := v.([]string); ok {
			return msgs
		}
	}
	return nil
}

func writeFlashCookie(c *gin.Context, msgs []string) {
	// Messages already on the request cookie survive a second redirect.
	if raw, err := c.Cookie(flashCookie); err == nil && raw != "" {
		msgs = append(decodeFlashes(raw), msgs...)
	}
	data, _ := json.Marshal(msgs)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookie, base64.RawURLEncoding.EncodeToString(data), 0, "/", "", false, true)
}

func decodeFlashes(raw string) []string {
	data, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return nil
	}
	var msgs []string
	if err := json.Unmarshal(data, &msgs); err != nil {
		return nil
	}
	return msgs
}
