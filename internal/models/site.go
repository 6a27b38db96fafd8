// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Site is a heritage listing. Text columns that are optional in the
// editor are nullable pointers so an empty form field clears the column.
type Site struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	Title         string     `json:"title" db:"title"`
	Slug          string     `json:"slug" db:"slug"`
	Tagline       *string    `json:"tagline" db:"tagline"`
	CoverPhotoURL *string    `json:"cover_photo_url" db:"cover_photo_url"`
	AvgRating     *float64   `json:"avg_rating" db:"avg_rating"`
	ReviewCount   *int       `json:"review_count" db:"review_count"`
	HeritageType  *string    `json:"heritage_type" db:"heritage_type"`
	LocationFree  *string    `json:"location_free" db:"location_free"`
	Latitude      *float64   `json:"latitude" db:"latitude"`
	Longitude     *float64   `json:"longitude" db:"longitude"`
	TownCity      *string    `json:"town_city_village" db:"town_city_village"`
	Tehsil        *string    `json:"tehsil" db:"tehsil"`
	District      *string    `json:"district" db:"district"`
	ProvinceID    *uuid.UUID `json:"province_id" db:"province_id"`

	Architect             *string `json:"architect" db:"architect"`
	ArchitecturalStyle    *string `json:"architectural_style" db:"architectural_style"`
	BuiltBy               *string `json:"built_by" db:"built_by"`
	ConservationStatus    *string `json:"conservation_status" db:"conservation_status"`
	ConstructionDate      *string `json:"construction_date" db:"construction_date"`
	ConstructionMaterials *string `json:"construction_materials" db:"construction_materials"`
	CurrentUse            *string `json:"current_use" db:"current_use"`
	Dynasty               *string `json:"dynasty" db:"dynasty"`
	Era                   *string `json:"era" db:"era"`
	KnownFor              *string `json:"known_for" db:"known_for"`
	LocalName             *string `json:"local_name" db:"local_name"`
	RestoredBy            *string `json:"restored_by" db:"restored_by"`
	AdministeredBy        *string `json:"administered_by" db:"administered_by"`
	EthnicGroups          *string `json:"ethnic_groups" db:"ethnic_groups"`
	ExcavatedBy           *string `json:"excavated_by" db:"excavated_by"`
	ExcavationStatus      *string `json:"excavation_status" db:"excavation_status"`
	InhabitedBy           *string `json:"inhabited_by" db:"inhabited_by"`
	LanguagesSpoken       *string `json:"languages_spoken" db:"languages_spoken"`
	Population            *string `json:"population" db:"population"`

	NationalParkEstablishedIn *string `json:"national_park_established_in" db:"national_park_established_in"`
	ProtectedUnder            *string `json:"protected_under" db:"protected_under"`
	UnescoStatus              *string `json:"unesco_status" db:"unesco_status"`
	UnescoLine                *string `json:"unesco_line" db:"unesco_line"`

	Altitude       *string `json:"altitude" db:"altitude"`
	Landform       *string `json:"landform" db:"landform"`
	MountainRange  *string `json:"mountain_range" db:"mountain_range"`
	WeatherType    *string `json:"weather_type" db:"weather_type"`
	AvgTempSummers *string `json:"avg_temp_summers" db:"avg_temp_summers"`
	AvgTempWinters *string `json:"avg_temp_winters" db:"avg_temp_winters"`
	DidYouKnow     *string `json:"did_you_know" db:"did_you_know"`

	TravelLocation            *string `json:"travel_location" db:"travel_location"`
	TravelHowToReach          *string `json:"travel_how_to_reach" db:"travel_how_to_reach"`
	TravelNearestMajorCity    *string `json:"travel_nearest_major_city" db:"travel_nearest_major_city"`
	TravelAirportAccess       *string `json:"travel_airport_access" db:"travel_airport_access"`
	TravelInternationalFlight *string `json:"travel_international_flight" db:"travel_international_flight"`
	TravelAccessOptions       *string `json:"travel_access_options" db:"travel_access_options"`
	TravelRoadTypeCondition   *string `json:"travel_road_type_condition" db:"travel_road_type_condition"`
	TravelBestTimeFree        *string `json:"travel_best_time_free" db:"travel_best_time_free"`
	TravelFullGuideURL        *string `json:"travel_full_guide_url" db:"travel_full_guide_url"`
	BestTimeOptionKey         *string `json:"best_time_option_key" db:"best_time_option_key"`

	HistoryContent      *string `json:"history_content" db:"history_content"`
	ArchitectureContent *string `json:"architecture_content" db:"architecture_content"`
	ClimateEnvContent   *string `json:"climate_env_content" db:"climate_env_content"`

	StayHotelsAvailable          *string `json:"stay_hotels_available" db:"stay_hotels_available"`
	StaySpendingNightRecommended *string `json:"stay_spending_night_recommended" db:"stay_spending_night_recommended"`
	StayCampingPossible          *string `json:"stay_camping_possible" db:"stay_camping_possible"`
	StayPlacesToEatAvailable     *string `json:"stay_places_to_eat_available" db:"stay_places_to_eat_available"`

	IsPublished bool      `json:"is_published" db:"is_published"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// HasCoordinates reports whether both latitude and longitude are set.
func (s *Site) HasCoordinates() bool {
	return s.Latitude != nil && s.Longitude != nil
}

// MapEmbedURL returns the Google Maps embed URL for the site's coordinates,
// or an empty string when they are missing.
func (s *Site) MapEmbedURL() string {
	if !s.HasCoordinates() {
		return ""
	}
	return fmt.Sprintf("https://www.google.com/maps?q=%g,%g&z=12&output=embed", *s.Latitude, *s.Longitude)
}

// SiteSummary is the row shape of the admin listings table.
type SiteSummary struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Slug        string    `json:"slug" db:"slug"`
	IsPublished bool      `json:"is_published" db:"is_published"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// SiteCard is the row shape of the public explore grid.
type SiteCard struct {
	ID            uuid.UUID `json:"id" db:"id"`
	Slug          string    `json:"slug" db:"slug"`
	Title         string    `json:"title" db:"title"`
	Tagline       *string   `json:"tagline" db:"tagline"`
	CoverPhotoURL *string   `json:"cover_photo_url" db:"cover_photo_url"`
	LocationFree  *string   `json:"location_free" db:"location_free"`
	AvgRating     *float64  `json:"avg_rating" db:"avg_rating"`
	ReviewCount   *int      `json:"review_count" db:"review_count"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// Rating formats the average rating to one decimal, or "" when unrated.
func (c *SiteCard) Rating() string {
	if c.AvgRating == nil {
		return ""
	}
	return fmt.Sprintf("%.1f", *c.AvgRating)
}

var paragraphBreak = regexp.MustCompile(`\n{2,}`)

// Paragraphs splits long-form text on blank lines, dropping empty blocks.
func Paragraphs(text string) []string {
	var out []string
	for _, p := range paragraphBreak.Split(strings.TrimSpace(text), -1) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// TextFields maps each optional text column to its field in s. The
// listing editor and the CSV importer address columns by name through it.
func (s *Site) TextFields() map[string]**string {
	return map[string]**string{
		"tagline":                         &s.Tagline,
		"heritage_type":                   &s.HeritageType,
		"location_free":                   &s.LocationFree,
		"town_city_village":               &s.TownCity,
		"tehsil":                          &s.Tehsil,
		"district":                        &s.District,
		"architect":                       &s.Architect,
		"architectural_style":             &s.ArchitecturalStyle,
		"built_by":                        &s.BuiltBy,
		"conservation_status":             &s.ConservationStatus,
		"construction_date":               &s.ConstructionDate,
		"construction_materials":          &s.ConstructionMaterials,
		"current_use":                     &s.CurrentUse,
		"dynasty":                         &s.Dynasty,
		"era":                             &s.Era,
		"known_for":                       &s.KnownFor,
		"local_name":                      &s.LocalName,
		"restored_by":                     &s.RestoredBy,
		"administered_by":                 &s.AdministeredBy,
		"ethnic_groups":                   &s.EthnicGroups,
		"excavated_by":                    &s.ExcavatedBy,
		"excavation_status":               &s.ExcavationStatus,
		"inhabited_by":                    &s.InhabitedBy,
		"languages_spoken":                &s.LanguagesSpoken,
		"population":                      &s.Population,
		"national_park_established_in":    &s.NationalParkEstablishedIn,
		"protected_under":                 &s.ProtectedUnder,
		"unesco_status":                   &s.UnescoStatus,
		"unesco_line":                     &s.UnescoLine,
		"altitude":                        &s.Altitude,
		"landform":                        &s.Landform,
		"mountain_range":                  &s.MountainRange,
		"weather_type":                    &s.WeatherType,
		"avg_temp_summers":                &s.AvgTempSummers,
		"avg_temp_winters":                &s.AvgTempWinters,
		"did_you_know":                    &s.DidYouKnow,
		"travel_location":                 &s.TravelLocation,
		"travel_how_to_reach":             &s.TravelHowToReach,
		"travel_nearest_major_city":       &s.TravelNearestMajorCity,
		"travel_airport_access":           &s.TravelAirportAccess,
		"travel_international_flight":     &s.TravelInternationalFlight,
		"travel_access_options":           &s.TravelAccessOptions,
		"travel_road_type_condition":      &s.TravelRoadTypeCondition,
		"travel_best_time_free":           &s.TravelBestTimeFree,
		"travel_full_guide_url":           &s.TravelFullGuideURL,
		"best_time_option_key":            &s.BestTimeOptionKey,
		"history_content":                 &s.HistoryContent,
		"architecture_content":            &s.ArchitectureContent,
		"climate_env_content":             &s.ClimateEnvContent,
		"stay_hotels_available":           &s.StayHotelsAvailable,
		"stay_spending_night_recommended": &s.StaySpendingNightRecommended,
		"stay_camping_possible":           &s.StayCampingPossible,
		"stay_places_to_eat_available":    &s.StayPlacesToEatAvailable,
	}
}
