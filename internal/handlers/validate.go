// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"strings"
	"unicode/utf8"

	"heritage/internal/models"
)

// Validation limits for listing fields.
const (
	maxTitleLen     = 300
	maxSlugLen      = 300
	maxShortTextLen = 1_000
	maxLongTextLen  = 100_000
	maxURLLen       = 2_000
)

// validateSite checks a listing after the form was applied and returns
// the first error found.
func validateSite(s *models.Site) string {
	if s.Title == "" {
		return "Title is required."
	}
	if utf8.RuneCountInString(s.Title) > maxTitleLen {
		return "Title is too long (max 300 characters)."
	}
	if s.Slug == "" {
		return "Slug must contain at least one letter or digit."
	}
	if len(s.Slug) > maxSlugLen {
		return "Slug is too long (max 300 characters)."
	}
	fields := s.TextFields()
	for _, g := range siteFieldGroups {
		for _, f := range g.Fields {
			v := fields[f.Name]
			if *v == nil {
				continue
			}
			limit := maxShortTextLen
			if f.Long {
				limit = maxLongTextLen
			}
			if utf8.RuneCountInString(**v) > limit {
				return f.Label + " is too long."
			}
		}
	}
	if s.TravelFullGuideURL != nil && !validURL(*s.TravelFullGuideURL) {
		return "Full guide URL must start with http:// or https://."
	}
	return ""
}

// validateSource checks a bibliography entry.
func validateSource(b *models.BibliographySource) string {
	if strings.TrimSpace(b.Title) == "" {
		return "Source title is required."
	}
	if utf8.RuneCountInString(b.Title) > maxTitleLen {
		return "Source title is too long (max 300 characters)."
	}
	if b.URL != nil && !validURL(*b.URL) {
		return "Source URL must start with http:// or https://."
	}
	return ""
}

// validateSection checks a custom section.
func validateSection(c *models.CustomSection) string {
	if strings.TrimSpace(c.Title) == "" {
		return "Section title is required."
	}
	if utf8.RuneCountInString(c.Title) > maxTitleLen {
		return "Section title is too long (max 300 characters)."
	}
	if c.Content != nil && utf8.RuneCountInString(*c.Content) > maxLongTextLen {
		return "Section content is too long (max 100,000 characters)."
	}
	return ""
}

func validURL(u string) bool {
	if len(u) > maxURLLen {
		return false
	}
	return strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://")
}
