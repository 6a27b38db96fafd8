// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render provides HTML template rendering for the admin panel and
// the public directory. Admin pages support full-page and HTMX partial
// rendering, detected via the HX-Request header. Public pages render to
// bytes so handlers can cache them.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"heritage/internal/middleware"
	"heritage/internal/models"
	"heritage/internal/session"
)

//go:embed templates/admin/*.html templates/public/*.html
var templateFS embed.FS

// PageData holds all data passed to admin templates.
type PageData struct {
	Title     string         // Page title for <title> tag
	Section   string         // Active sidebar section (e.g., "dashboard", "listings")
	Session   *session.Data  // Current user session (nil if unauthenticated)
	CSRFToken string         // CSRF token for forms and HTMX headers
	Data      map[string]any // Page-specific data
	Flashes   []Flash        // One-time notification messages
}

// Flash represents a one-time notification message displayed to the user.
type Flash struct {
	Type    string // "success", "error", "warning", "info"
	Message string
}

// PublicData holds the data passed to public templates. Home carries the
// site title and subtitle shown in every header.
type PublicData struct {
	Title       string
	Description string
	Home        models.Homepage
	Data        map[string]any
}

// Renderer handles template parsing and execution.
type Renderer struct {
	admin  map[string]*template.Template
	public map[string]*template.Template
}

// standaloneTemplates lists admin templates that render as full HTML pages
// without the base layout (they have their own <html>, <head>, etc.).
var standaloneTemplates = map[string]bool{
	"login":      true,
	"2fa_setup":  true,
	"2fa_verify": true,
}

// New parses all embedded templates. Each page template is paired with
// the base layout of its area. When devMode is true, admin templates use
// CDN-hosted assets; otherwise they reference local static files.
func New(devMode bool) (*Renderer, error) {
	funcs := funcMap(devMode)

	admin, err := parseArea("admin", funcs, standaloneTemplates)
	if err != nil {
		return nil, err
	}
	public, err := parseArea("public", funcs, nil)
	if err != nil {
		return nil, err
	}
	return &Renderer{admin: admin, public: public}, nil
}

// parseArea parses every page under templates/<area>/ together with that
// area's base.html and its "_" partials, except the standalone pages
// which parse alone.
func parseArea(area string, funcs template.FuncMap, standalone map[string]bool) (map[string]*template.Template, error) {
	dir := "templates/" + area
	entries, err := fs.ReadDir(templateFS, dir)
	if err != nil {
		return nil, fmt.Errorf("read embedded templates: %w", err)
	}

	var partials []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "_") {
			partials = append(partials, dir+"/"+e.Name())
		}
	}

	out := make(map[string]*template.Template, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == "base.html" || strings.HasPrefix(name, "_") || !strings.HasSuffix(name, ".html") {
			continue
		}
		tmplName := strings.TrimSuffix(name, ".html")

		var tmpl *template.Template
		if standalone[tmplName] {
			tmpl, err = template.New(name).Funcs(funcs).ParseFS(templateFS, dir+"/"+name)
		} else {
			files := append([]string{dir + "/base.html"}, partials...)
			files = append(files, dir+"/"+name)
			tmpl, err = template.New("base.html").Funcs(funcs).ParseFS(templateFS, files...)
		}
		if err != nil {
			return nil, fmt.Errorf("parse template %s/%s: %w", area, name, err)
		}
		out[tmplName] = tmpl
	}
	return out, nil
}

// Page renders a full admin page or an HTMX partial, depending on the
// request headers. For HTMX requests, only the "content" block is sent.
func (rn *Renderer) Page(w http.ResponseWriter, r *http.Request, name string, data *PageData) {
	rn.PageStatus(w, r, http.StatusOK, name, data)
}

// PageStatus is Page with an explicit status code, used to re-render a
// form alongside a 4xx response.
func (rn *Renderer) PageStatus(w http.ResponseWriter, r *http.Request, status int, name string, data *PageData) {
	tmpl, ok := rn.admin[name]
	if !ok {
		http.Error(w, fmt.Sprintf("template %q not found", name), http.StatusInternalServerError)
		return
	}

	data.CSRFToken = middleware.CSRFTokenFromCtx(r.Context())
	if data.Session == nil {
		data.Session = middleware.SessionFromCtx(r.Context())
	}

	execName := "base.html"
	if isHTMX(r) {
		execName = "content"
	} else if standaloneTemplates[name] {
		execName = name + ".html"
	}

	// Buffer so a template error never leaves a half-written page.
	var buf bytes.Buffer
	if err := executeTemplate(&buf, tmpl, execName, data); err != nil {
		slog.Error("admin template failed", "template", name, "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

// Public renders a public page to bytes.
func (rn *Renderer) Public(name string, data *PublicData) ([]byte, error) {
	tmpl, ok := rn.public[name]
	if !ok {
		return nil, fmt.Errorf("template %q not found", name)
	}
	data.Home = data.Home.WithDefaults()

	var buf bytes.Buffer
	if err := executeTemplate(&buf, tmpl, "base.html", data); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// executeTemplate wraps template execution with error handling.
func executeTemplate(w io.Writer, tmpl *template.Template, name string, data any) error {
	return tmpl.ExecuteTemplate(w, name, data)
}

// isHTMX returns true if the request was made by HTMX (has HX-Request header).
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
