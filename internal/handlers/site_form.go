// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"heritage/internal/models"
	"heritage/internal/slug"
)

// siteField describes one optional text column of the listing editor.
type siteField struct {
	Name  string // form field and column name
	Label string
	Long  bool // rendered as a textarea
}

// fieldGroup is a titled block of the listing editor form.
type fieldGroup struct {
	Title  string
	Fields []siteField
}

var siteFieldGroups = []fieldGroup{
	{"Overview", []siteField{
		{"tagline", "Tagline", false},
		{"heritage_type", "Heritage type", false},
		{"local_name", "Local name", false},
		{"known_for", "Known for", true},
		{"did_you_know", "Did you know", true},
	}},
	{"Location", []siteField{
		{"location_free", "Location", false},
		{"town_city_village", "Town / city / village", false},
		{"tehsil", "Tehsil", false},
		{"district", "District", false},
		{"altitude", "Altitude", false},
		{"landform", "Landform", false},
		{"mountain_range", "Mountain range", false},
	}},
	{"History & architecture", []siteField{
		{"architect", "Architect", false},
		{"architectural_style", "Architectural style", false},
		{"built_by", "Built by", false},
		{"construction_date", "Construction date", false},
		{"construction_materials", "Construction materials", false},
		{"dynasty", "Dynasty", false},
		{"era", "Era", false},
		{"restored_by", "Restored by", false},
		{"conservation_status", "Conservation status", false},
		{"current_use", "Current use", false},
		{"administered_by", "Administered by", false},
		{"excavated_by", "Excavated by", false},
		{"excavation_status", "Excavation status", false},
		{"history_content", "History", true},
		{"architecture_content", "Architecture", true},
	}},
	{"People", []siteField{
		{"ethnic_groups", "Ethnic groups", false},
		{"inhabited_by", "Inhabited by", false},
		{"languages_spoken", "Languages spoken", false},
		{"population", "Population", false},
	}},
	{"Protection", []siteField{
		{"national_park_established_in", "National park established in", false},
		{"protected_under", "Protected under", false},
		{"unesco_status", "UNESCO status", false},
		{"unesco_line", "UNESCO line", false},
	}},
	{"Climate", []siteField{
		{"weather_type", "Weather type", false},
		{"avg_temp_summers", "Average temperature (summers)", false},
		{"avg_temp_winters", "Average temperature (winters)", false},
		{"climate_env_content", "Climate & environment", true},
	}},
	{"Travel", []siteField{
		{"travel_location", "Location", false},
		{"travel_how_to_reach", "How to reach", true},
		{"travel_nearest_major_city", "Nearest major city", false},
		{"travel_airport_access", "Airport access", false},
		{"travel_international_flight", "International flight", false},
		{"travel_access_options", "Access options", false},
		{"travel_road_type_condition", "Road type / condition", false},
		{"travel_best_time_free", "Best time to visit", false},
		{"best_time_option_key", "Best time option", false},
		{"travel_full_guide_url", "Full guide URL", false},
	}},
	{"Stay", []siteField{
		{"stay_hotels_available", "Hotels available", false},
		{"stay_spending_night_recommended", "Spending the night recommended", false},
		{"stay_camping_possible", "Camping possible", false},
		{"stay_places_to_eat_available", "Places to eat available", false},
	}},
}

// siteValues returns the current text values of s keyed by column, for
// pre-filling the form.
func siteValues(s *models.Site) map[string]string {
	out := make(map[string]string)
	for name, field := range s.TextFields() {
		if *field != nil {
			out[name] = **field
		}
	}
	return out
}

// applySiteForm copies the submitted form onto site. It returns a
// validation message, or "" when the input is acceptable. Blank optional
// fields clear their column.
func applySiteForm(r *http.Request, site *models.Site) string {
	site.Title = strings.TrimSpace(r.FormValue("title"))
	rawSlug := r.FormValue("slug")
	if strings.TrimSpace(rawSlug) == "" {
		rawSlug = site.Title
	}
	site.Slug = slug.Make(rawSlug)

	for name, field := range site.TextFields() {
		*field = optionalText(r.FormValue(name))
	}

	var msg string
	if site.Latitude, msg = optionalFloat(r.FormValue("latitude"), "Latitude", -90, 90); msg != "" {
		return msg
	}
	if site.Longitude, msg = optionalFloat(r.FormValue("longitude"), "Longitude", -180, 180); msg != "" {
		return msg
	}

	site.ProvinceID = nil
	if raw := r.FormValue("province_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return "Invalid province."
		}
		site.ProvinceID = &id
	}
	site.IsPublished = formBool(r, "is_published")

	return validateSite(site)
}

func optionalText(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func optionalFloat(raw, label string, min, max float64) (*float64, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ""
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f < min || f > max {
		return nil, label + " must be a number between " +
			strconv.FormatFloat(min, 'f', -1, 64) + " and " + strconv.FormatFloat(max, 'f', -1, 64) + "."
	}
	return &f, ""
}
