// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package render

import (
	"html/template"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"heritage/internal/markdown"
)

func funcMap(devMode bool) template.FuncMap {
	return template.FuncMap{
		"activeClass": func(current, target string) string {
			if current == target {
				return "bg-stone-900 text-white"
			}
			return "text-stone-300 hover:bg-stone-700 hover:text-white"
		},
		// deref safely dereferences a string pointer for use in templates.
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
		"derefFloat": func(f *float64) string {
			if f == nil {
				return ""
			}
			return strconv.FormatFloat(*f, 'f', -1, 64)
		},
		"derefInt": func(n *int) string {
			if n == nil {
				return ""
			}
			return strconv.Itoa(*n)
		},
		// isDev is used by templates to choose CDN or local assets.
		"isDev": func() bool {
			return devMode
		},
		// indent prefixes a name with non-breaking spaces for <select> trees.
		"indent": func(depth int, name string) string {
			if depth <= 0 {
				return name
			}
			return strings.Repeat("\u00a0\u00a0\u00a0\u00a0", depth) + name
		},
		// uuidEq compares a *uuid.UUID pointer with a uuid.UUID value.
		"uuidEq": func(ptr *uuid.UUID, val uuid.UUID) bool {
			return ptr != nil && *ptr == val
		},
		"hasID": func(ids []uuid.UUID, id uuid.UUID) bool {
			for _, v := range ids {
				if v == id {
					return true
				}
			}
			return false
		},
		"markdown": func(s *string) template.HTML {
			if s == nil {
				return ""
			}
			return markdown.Render(*s)
		},
		"date": func(t time.Time) string {
			return t.Format("02 Jan 2006 15:04")
		},
		"add": func(a, b int) int { return a + b },
		"pageRange": func(pages int) []int {
			out := make([]int, pages)
			for i := range out {
				out[i] = i + 1
			}
			return out
		},
	}
}
