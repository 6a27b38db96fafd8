// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"net/http"
	"strings"
)

// SecureHeaders adds security headers to every response. The content
// policy allows images from mediaOrigin (the object storage public URL)
// and the Google Maps embed on listing pages. The admin layout loads its
// dev-mode assets from cdn.tailwindcss.com and unpkg.com and carries one
// inline script.
func SecureHeaders(mediaOrigin string) func(http.Handler) http.Handler {
	imgSrc := []string{"'self'", "data:", "https:"}
	if mediaOrigin != "" && !strings.HasPrefix(mediaOrigin, "https:") {
		imgSrc = append(imgSrc, mediaOrigin)
	}
	csp := strings.Join([]string{
		"default-src 'self'",
		"img-src " + strings.Join(imgSrc, " "),
		"frame-src https://www.google.com",
		"style-src 'self' 'unsafe-inline'",
		"script-src 'self' 'unsafe-inline' https://cdn.tailwindcss.com https://unpkg.com",
		"object-src 'none'",
		"base-uri 'self'",
	}, "; ")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "SAMEORIGIN")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Content-Security-Policy", csp)
			next.ServeHTTP(w, r)
		})
	}
}
