package places

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/FACorreiaa/go-travel-planner/app/httpclient"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

const serpAPIURL = "https://serpapi.com/search.json"

// SerpAPIClient searches Google Hotels through SerpAPI. Only accommodation
// queries are answered.
type SerpAPIClient struct {
	http    *httpclient.Client
	apiKey  string
	baseURL string
	now     func() time.Time
}

func NewSerpAPIClient(hc *httpclient.Client, apiKey string) *SerpAPIClient {
	return &SerpAPIClient{http: hc, apiKey: apiKey, baseURL: serpAPIURL, now: time.Now}
}

func (c *SerpAPIClient) Name() string { return "serpapi" }

type serpHotelsResponse struct {
	Error      string `json:"error"`
	Properties []struct {
		Name           string   `json:"name"`
		Description    string   `json:"description"`
		Link           string   `json:"link"`
		Type           string   `json:"type"`
		OverallRating  *float64 `json:"overall_rating"`
		GPSCoordinates *struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"gps_coordinates"`
		RatePerNight *struct {
			Lowest string `json:"lowest"`
		} `json:"rate_per_night"`
	} `json:"properties"`
}

// stayDates fills missing dates with tomorrow and a one-night stay.
func (c *SerpAPIClient) stayDates(q SearchQuery) (string, string) {
	in, err := time.Parse(time.DateOnly, q.CheckIn)
	if err != nil {
		in = c.now().AddDate(0, 0, 1)
	}
	out, err := time.Parse(time.DateOnly, q.CheckOut)
	if err != nil || !out.After(in) {
		out = in.AddDate(0, 0, 1)
	}
	return in.Format(time.DateOnly), out.Format(time.DateOnly)
}

func (c *SerpAPIClient) Search(ctx context.Context, q SearchQuery) ([]types.Place, error) {
	if q.Kind != types.SpotAccommodation {
		return nil, nil
	}
	checkIn, checkOut := c.stayDates(q)

	params := url.Values{}
	params.Set("engine", "google_hotels")
	params.Set("q", q.Query)
	params.Set("check_in_date", checkIn)
	params.Set("check_out_date", checkOut)
	params.Set("adults", strconv.Itoa(max(q.Adults, 1)))
	params.Set("currency", "KRW")
	params.Set("gl", "kr")
	params.Set("hl", "ko")
	params.Set("api_key", c.apiKey)

	var resp serpHotelsResponse
	if err := c.http.GetJSON(ctx, c.baseURL+"?"+params.Encode(), nil, &resp); err != nil {
		return nil, fmt.Errorf("serpapi hotels: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("serpapi hotels: %s: %w", resp.Error, types.ErrUpstream)
	}

	limit := limitOr(q.Limit, 10)
	out := make([]types.Place, 0, min(limit, len(resp.Properties)))
	for _, p := range resp.Properties {
		if len(out) == limit {
			break
		}
		place := types.Place{
			Name:     p.Name,
			Rating:   p.OverallRating,
			URL:      p.Link,
			Category: p.Type,
			Source:   c.Name(),
		}
		if p.GPSCoordinates != nil {
			lat, lng := p.GPSCoordinates.Latitude, p.GPSCoordinates.Longitude
			place.Latitude, place.Longitude = &lat, &lng
		}
		if p.RatePerNight != nil {
			place.Price = p.RatePerNight.Lowest
		}
		out = append(out, place)
	}
	return out, nil
}
