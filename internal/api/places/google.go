package places

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/FACorreiaa/go-travel-planner/app/httpclient"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

const googleTextSearchURL = "https://maps.googleapis.com/maps/api/place/textsearch/json"

type GoogleClient struct {
	http    *httpclient.Client
	apiKey  string
	baseURL string
}

func NewGoogleClient(hc *httpclient.Client, apiKey string) *GoogleClient {
	return &GoogleClient{http: hc, apiKey: apiKey, baseURL: googleTextSearchURL}
}

func (c *GoogleClient) Name() string { return "google" }

type googleTextSearchResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		PlaceID          string   `json:"place_id"`
		Name             string   `json:"name"`
		FormattedAddress string   `json:"formatted_address"`
		Rating           *float64 `json:"rating"`
		PriceLevel       *int     `json:"price_level"`
		Types            []string `json:"types"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

func googlePlaceType(kind types.SpotType) string {
	switch kind {
	case types.SpotAccommodation:
		return "lodging"
	case types.SpotRestaurant:
		return "restaurant"
	case types.SpotCafe:
		return "cafe"
	case types.SpotSite:
		return "tourist_attraction"
	}
	return ""
}

func (c *GoogleClient) Search(ctx context.Context, q SearchQuery) ([]types.Place, error) {
	params := url.Values{}
	params.Set("query", searchText(q))
	params.Set("language", "ko")
	params.Set("region", "kr")
	if t := googlePlaceType(q.Kind); t != "" {
		params.Set("type", t)
	}
	params.Set("key", c.apiKey)

	var resp googleTextSearchResponse
	if err := c.http.GetJSON(ctx, c.baseURL+"?"+params.Encode(), nil, &resp); err != nil {
		return nil, fmt.Errorf("google places: %w", err)
	}
	switch resp.Status {
	case "OK", "ZERO_RESULTS":
	case "OVER_QUERY_LIMIT":
		return nil, fmt.Errorf("google places: %w", types.ErrUpstreamQuota)
	default:
		return nil, fmt.Errorf("google places status %s %s: %w", resp.Status, resp.ErrorMessage, types.ErrUpstream)
	}

	limit := limitOr(q.Limit, 10)
	out := make([]types.Place, 0, min(limit, len(resp.Results)))
	for _, r := range resp.Results {
		if len(out) == limit {
			break
		}
		lat, lng := r.Geometry.Location.Lat, r.Geometry.Location.Lng
		p := types.Place{
			Name:      r.Name,
			Address:   r.FormattedAddress,
			Latitude:  &lat,
			Longitude: &lng,
			Rating:    r.Rating,
			URL:       "https://www.google.com/maps/place/?q=place_id:" + r.PlaceID,
			Source:    c.Name(),
		}
		if len(r.Types) > 0 {
			p.Category = r.Types[0]
		}
		if r.PriceLevel != nil {
			p.Price = "level " + strconv.Itoa(*r.PriceLevel)
		}
		out = append(out, p)
	}
	return out, nil
}
