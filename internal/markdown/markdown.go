// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package markdown converts the long-text fields of a listing (history,
// architecture, climate, custom sections) into HTML using goldmark.
// Raw HTML in the source is escaped; editors write plain text or Markdown.
package markdown

import (
	"bytes"
	"html/template"
	"log/slog"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"heritage/internal/models"
)

// md is the configured goldmark instance, reused across calls.
var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Typographer,
	),
	goldmark.WithRendererOptions(
		html.WithHardWraps(), // single newlines inside a paragraph are kept as <br>
	),
)

// ToHTML converts Markdown source into HTML. Blank lines separate
// paragraphs.
func ToHTML(source string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// Render is ToHTML for templates. If goldmark fails the text is emitted
// as escaped <p> blocks split on blank lines.
func Render(source string) template.HTML {
	if strings.TrimSpace(source) == "" {
		return ""
	}
	out, err := ToHTML(source)
	if err == nil {
		return out
	}
	slog.Warn("markdown render failed", "error", err)

	var b strings.Builder
	for _, p := range models.Paragraphs(source) {
		b.WriteString("<p>")
		b.WriteString(template.HTMLEscapeString(p))
		b.WriteString("</p>\n")
	}
	return template.HTML(b.String())
}
