package types

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Place is a search hit from any map/search provider.
type Place struct {
	Name      string   `json:"name"`
	Address   string   `json:"address,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Rating    *float64 `json:"rating,omitempty"`
	Phone     string   `json:"phone,omitempty"`
	URL       string   `json:"url,omitempty"`
	Category  string   `json:"category,omitempty"`
	Price     string   `json:"price,omitempty"`
	Source    string   `json:"source"`
}

type RecommendationRequest struct {
	Destination string     `json:"destination"`
	RegionCode  string     `json:"region_code,omitempty"`
	StartDate   string     `json:"start_date,omitempty"`
	EndDate     string     `json:"end_date,omitempty"`
	Headcount   int        `json:"headcount,omitempty"`
	Budget      int64      `json:"budget,omitempty"`
	Transport   string     `json:"transport,omitempty"`
	Preferences string     `json:"preferences,omitempty"`
	Limit       int        `json:"limit,omitempty"`
	PlanID      *uuid.UUID `json:"plan_id,omitempty"`
}

// CacheKey normalizes the fields that change a recommendation.
func (r RecommendationRequest) CacheKey() string {
	return strings.Join([]string{
		strings.ToLower(strings.TrimSpace(r.Destination)),
		r.RegionCode, r.StartDate, r.EndDate,
		strconv.Itoa(r.Headcount), strconv.FormatInt(r.Budget, 10),
		strings.ToLower(strings.TrimSpace(r.Transport)),
		strings.ToLower(strings.TrimSpace(r.Preferences)),
		strconv.Itoa(r.Limit),
	}, "|")
}

type Recommendation struct {
	Name        string   `json:"name"`
	Kind        SpotType `json:"kind"`
	Address     string   `json:"address,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	Description string   `json:"description,omitempty"`
	Reason      string   `json:"reason,omitempty"`
	PriceRange  string   `json:"price_range,omitempty"`
	Rating      *float64 `json:"rating,omitempty"`
	Phone       string   `json:"phone,omitempty"`
	URL         string   `json:"url,omitempty"`
	ImageURL    string   `json:"image_url,omitempty"`
}

type RecommendationResponse struct {
	Kind            SpotType         `json:"kind"`
	Destination     string           `json:"destination"`
	Recommendations []Recommendation `json:"recommendations"`
	SavedSpots      int              `json:"saved_spots,omitempty"`
}

type Schedule struct {
	Destination    string            `json:"destination"`
	Accommodations []Recommendation  `json:"accommodations"`
	Restaurants    []Recommendation  `json:"restaurants"`
	Cafes          []Recommendation  `json:"cafes"`
	Sites          []Recommendation  `json:"sites"`
	Errors         map[string]string `json:"errors,omitempty"`
	PlanID         *uuid.UUID        `json:"plan_id,omitempty"`
	SavedSpots     int               `json:"saved_spots,omitempty"`
}
