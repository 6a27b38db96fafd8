// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package web provides embedded static assets for the admin panel and the
// public directory. In development the admin layout loads Tailwind and
// HTMX from a CDN; in production the compiled and vendored files are
// embedded here and served at /static/.
package web

import "embed"

// StaticFS embeds the web/static/ directory tree. Docker builds overwrite
// css/admin.css with the compiled Tailwind output and add js/htmx.min.js.
//
//go:embed all:static
var StaticFS embed.FS
