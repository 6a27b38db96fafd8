// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// SiteImage is a gallery entry. The file itself lives in object storage
// under StoragePath; the public URL is resolved at render time.
type SiteImage struct {
	ID          uuid.UUID `json:"id"`
	SiteID      uuid.UUID `json:"site_id"`
	StoragePath string    `json:"storage_path"`
	ThumbPath   *string   `json:"thumb_path,omitempty"`
	AltText     *string   `json:"alt_text"`
	Caption     *string   `json:"caption"`
	Credit      *string   `json:"credit"`
	IsCover     bool      `json:"is_cover"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`

	// Virtual field populated by handlers.
	URL string `json:"url,omitempty"`
}

// BibliographySource is one entry of a site's bibliography.
type BibliographySource struct {
	ID              uuid.UUID `json:"id"`
	SiteID          uuid.UUID `json:"site_id"`
	Title           string    `json:"title"`
	Authors         *string   `json:"authors"`
	Year            *string   `json:"year"`
	PublisherOrSite *string   `json:"publisher_or_site"`
	URL             *string   `json:"url"`
	Notes           *string   `json:"notes"`
	SortOrder       int       `json:"sort_order"`
}

// CustomSection is a free-form titled block appended to a listing.
type CustomSection struct {
	ID        uuid.UUID `json:"id"`
	SiteID    uuid.UUID `json:"site_id"`
	Title     string    `json:"title"`
	Content   *string   `json:"content"`
	SortOrder int       `json:"sort_order"`
}

// PhotoStory is the optional per-site photo essay header. A site has at
// most one.
type PhotoStory struct {
	SiteID       uuid.UUID        `json:"site_id"`
	HeroPhotoURL *string          `json:"hero_photo_url"`
	Subtitle     *string          `json:"subtitle"`
	Items        []PhotoStoryItem `json:"items,omitempty"`
}

// PhotoStoryItem is one image/text block of a photo story.
type PhotoStoryItem struct {
	ID        uuid.UUID `json:"id"`
	SiteID    uuid.UUID `json:"site_id"`
	ImageURL  *string   `json:"image_url"`
	TextBlock *string   `json:"text_block"`
	SortOrder int       `json:"sort_order"`
}

// Homepage holds the editable homepage settings stored under the
// "homepage" key of global_settings.
type Homepage struct {
	SiteTitle    string    `json:"site_title"`
	SiteSubtitle string    `json:"site_subtitle"`
	HeroImageURL *string   `json:"hero_image_url"`
	UpdatedAt    time.Time `json:"updated_at"`
}

const (
	DefaultSiteTitle    = "Heritage of Pakistan"
	DefaultSiteSubtitle = "Discover, Explore, Preserve"
)

// WithDefaults fills empty title and subtitle with the built-in defaults.
func (h Homepage) WithDefaults() Homepage {
	if h.SiteTitle == "" {
		h.SiteTitle = DefaultSiteTitle
	}
	if h.SiteSubtitle == "" {
		h.SiteSubtitle = DefaultSiteSubtitle
	}
	return h
}
