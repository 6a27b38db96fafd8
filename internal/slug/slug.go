// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-friendly slug generation for taxonomy terms and
// heritage listings.
package slug

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	// separators matches runs of whitespace or underscores.
	separators = regexp.MustCompile(`[\s_]+`)
	// disallowed matches anything outside the slug alphabet.
	disallowed = regexp.MustCompile(`[^a-z0-9-]`)
	// multipleHyphens collapses consecutive hyphens into one.
	multipleHyphens = regexp.MustCompile(`-+`)
)

// Make creates a URL-friendly slug from the given string.
// Example: "  Mountains & Valleys!! " → "mountains-valleys"
func Make(s string) string {
	result := strings.ToLower(strings.TrimSpace(s))
	result = separators.ReplaceAllString(result, "-")
	result = disallowed.ReplaceAllString(result, "")
	result = multipleHyphens.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

// Suffixed returns Make(base) followed by the last five digits of now's
// Unix millisecond clock. Used for placeholder terms so repeated creates
// don't collide on the slug column.
func Suffixed(base string, now time.Time) string {
	return withDigits(base, now, 5)
}

// Short is Suffixed with a four digit suffix, used for listings.
func Short(base string, now time.Time) string {
	return withDigits(base, now, 4)
}

func withDigits(base string, now time.Time, n int) string {
	ms := fmt.Sprintf("%d", now.UnixMilli())
	if len(ms) > n {
		ms = ms[len(ms)-n:]
	}
	return Make(base + "-" + ms)
}
