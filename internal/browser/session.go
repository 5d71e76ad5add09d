// Package browser logs into a web application with a real browser and hands the
// resulting session over to an http client.
package browser

import (
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
)

// Session is everything an http client needs to act as the logged in browser.
type Session struct {
	Cookies   []*http.Cookie
	UserAgent string
	// Authorization is the full header value, ex. "Bearer eyJ..."
	Authorization string
}

// Apply makes every request of the client carry the session.
func (s Session) Apply(client *resty.Client) {
	client.SetCookies(s.Cookies)
	if s.UserAgent != "" {
		client.SetHeader("User-Agent", s.UserAgent)
	}
	if s.Authorization != "" {
		client.SetHeader("Authorization", s.Authorization)
	}
}

// bearerFromHeaders returns the Authorization header if it carries a bearer token.
func bearerFromHeaders(headers map[string]any) string {
	for key, value := range headers {
		if !strings.EqualFold(key, "authorization") {
			continue
		}
		text, ok := value.(string)
		if !ok {
			continue
		}
		if strings.HasPrefix(text, "Bearer ") {
			return text
		}
	}
	return ""
}
