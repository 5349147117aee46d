package places

import (
	"context"
	"fmt"

	"github.com/FACorreiaa/go-travel-planner/app/httpclient"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

const serperMapsURL = "https://google.serper.dev/maps"

type SerperClient struct {
	http    *httpclient.Client
	apiKey  string
	baseURL string
}

func NewSerperClient(hc *httpclient.Client, apiKey string) *SerperClient {
	return &SerperClient{http: hc, apiKey: apiKey, baseURL: serperMapsURL}
}

func (c *SerperClient) Name() string { return "serper" }

type serperMapsRequest struct {
	Q  string `json:"q"`
	GL string `json:"gl"`
	HL string `json:"hl"`
}

type serperMapsResponse struct {
	Places []struct {
		Title       string   `json:"title"`
		Address     string   `json:"address"`
		Latitude    *float64 `json:"latitude"`
		Longitude   *float64 `json:"longitude"`
		Rating      *float64 `json:"rating"`
		Type        string   `json:"type"`
		Website     string   `json:"website"`
		PhoneNumber string   `json:"phoneNumber"`
		PriceLevel  string   `json:"priceLevel"`
	} `json:"places"`
}

func (c *SerperClient) Search(ctx context.Context, q SearchQuery) ([]types.Place, error) {
	headers := map[string]string{"X-API-KEY": c.apiKey}
	var resp serperMapsResponse
	if err := c.http.PostJSON(ctx, c.baseURL, headers, serperMapsRequest{Q: searchText(q), GL: "kr", HL: "ko"}, &resp); err != nil {
		return nil, fmt.Errorf("serper maps: %w", err)
	}

	limit := limitOr(q.Limit, 10)
	out := make([]types.Place, 0, min(limit, len(resp.Places)))
	for _, p := range resp.Places {
		if len(out) == limit {
			break
		}
		out = append(out, types.Place{
			Name:      p.Title,
			Address:   p.Address,
			Latitude:  p.Latitude,
			Longitude: p.Longitude,
			Rating:    p.Rating,
			Phone:     p.PhoneNumber,
			URL:       p.Website,
			Category:  p.Type,
			Price:     p.PriceLevel,
			Source:    c.Name(),
		})
	}
	return out, nil
}
