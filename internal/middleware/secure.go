package middleware

import (
	"net/http"

	"github.com/unrolled/secure"
)

// NewSecureHeaders sets the standard security response headers. HTTPS
// redirects are only enforced in production.
func NewSecureHeaders(production bool) func(http.Handler) http.Handler {
	s := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "no-referrer",
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'",
		SSLRedirect:           production,
		SSLProxyHeaders:       map[string]string{"X-Forwarded-Proto": "https"},
		IsDevelopment:         !production,
	})
	return s.Handler
}
