package types

import (
	"time"

	"github.com/google/uuid"
)

type SpotType string

const (
	SpotAccommodation SpotType = "accommodation"
	SpotRestaurant    SpotType = "restaurant"
	SpotCafe          SpotType = "cafe"
	SpotSite          SpotType = "site"
)

// SpotTypes lists every kind in schedule order.
var SpotTypes = []SpotType{SpotAccommodation, SpotRestaurant, SpotCafe, SpotSite}

func (t SpotType) Valid() bool {
	switch t {
	case SpotAccommodation, SpotRestaurant, SpotCafe, SpotSite:
		return true
	}
	return false
}

type Spot struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	SpotType    SpotType  `json:"spot_type"`
	Address     *string   `json:"address,omitempty"`
	Latitude    *float64  `json:"latitude,omitempty"`
	Longitude   *float64  `json:"longitude,omitempty"`
	Description *string   `json:"description,omitempty"`
	ImageURL    *string   `json:"image_url,omitempty"`
	SourceURL   *string   `json:"source_url,omitempty"`
	Phone       *string   `json:"phone,omitempty"`
	Rating      *float64  `json:"rating,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type CreateSpotParams struct {
	Name        string   `json:"name"`
	SpotType    SpotType `json:"spot_type"`
	Address     *string  `json:"address,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	Description *string  `json:"description,omitempty"`
	ImageURL    *string  `json:"image_url,omitempty"`
	SourceURL   *string  `json:"source_url,omitempty"`
	Phone       *string  `json:"phone,omitempty"`
	Rating      *float64 `json:"rating,omitempty"`
}

type UpdateSpotParams struct {
	Name        *string   `json:"name,omitempty"`
	SpotType    *SpotType `json:"spot_type,omitempty"`
	Address     *string   `json:"address,omitempty"`
	Latitude    *float64  `json:"latitude,omitempty"`
	Longitude   *float64  `json:"longitude,omitempty"`
	Description *string   `json:"description,omitempty"`
	ImageURL    *string   `json:"image_url,omitempty"`
	SourceURL   *string   `json:"source_url,omitempty"`
	Phone       *string   `json:"phone,omitempty"`
	Rating      *float64  `json:"rating,omitempty"`
}

type SpotFilter struct {
	Type  SpotType
	Query string
	Page  Page
}

type SpotTag struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type SpotList struct {
	Spots    []Spot `json:"spots"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Total    int    `json:"total"`
}
