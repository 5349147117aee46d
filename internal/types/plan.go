package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

type Plan struct {
	ID         uuid.UUID  `json:"id"`
	MemberID   uuid.UUID  `json:"member_id"`
	Title      string     `json:"title"`
	RegionCode *string    `json:"region_code,omitempty"`
	StartDate  *time.Time `json:"start_date,omitempty"`
	EndDate    *time.Time `json:"end_date,omitempty"`
	Headcount  int        `json:"headcount"`
	Budget     *int64     `json:"budget,omitempty"`
	Transport  *string    `json:"transport,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	Spots      []PlanSpot `json:"spots,omitempty"`
}

// PlanSpot is a spot placed on a given day of a plan.
type PlanSpot struct {
	ID        uuid.UUID `json:"id"`
	PlanID    uuid.UUID `json:"plan_id"`
	DayNumber int       `json:"day_number"`
	Sequence  int       `json:"sequence"`
	Spot      Spot      `json:"spot"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
}

// CreatePlanParams uses YYYY-MM-DD strings for dates.
type CreatePlanParams struct {
	Title      string  `json:"title"`
	RegionCode *string `json:"region_code,omitempty"`
	StartDate  *string `json:"start_date,omitempty"`
	EndDate    *string `json:"end_date,omitempty"`
	Headcount  *int    `json:"headcount,omitempty"`
	Budget     *int64  `json:"budget,omitempty"`
	Transport  *string `json:"transport,omitempty"`
}

type UpdatePlanParams struct {
	Title      *string `json:"title,omitempty"`
	RegionCode *string `json:"region_code,omitempty"`
	StartDate  *string `json:"start_date,omitempty"`
	EndDate    *string `json:"end_date,omitempty"`
	Headcount  *int    `json:"headcount,omitempty"`
	Budget     *int64  `json:"budget,omitempty"`
	Transport  *string `json:"transport,omitempty"`
}

type AttachSpotParams struct {
	SpotID    uuid.UUID `json:"spot_id"`
	DayNumber int       `json:"day_number"`
	Sequence  *int      `json:"sequence,omitempty"`
}

type TagPlanSpotParams struct {
	Name string `json:"name"`
}

type Page struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// Normalize applies defaults and bounds.
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

func (p Page) Offset() int {
	return (p.Page - 1) * p.PageSize
}

type PlanList struct {
	Plans    []Plan `json:"plans"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Total    int    `json:"total"`
}
