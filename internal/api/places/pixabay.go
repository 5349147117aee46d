package places

import (
	"context"
	"fmt"
	"net/url"

	"github.com/patrickmn/go-cache"

	"github.com/FACorreiaa/go-travel-planner/app/httpclient"
)

const pixabayURL = "https://pixabay.com/api/"

// PixabayClient finds spot thumbnails. Lookups, including misses, are
// cached for the process lifetime.
type PixabayClient struct {
	http    *httpclient.Client
	apiKey  string
	baseURL string
	cache   *cache.Cache
}

func NewPixabayClient(hc *httpclient.Client, apiKey string) *PixabayClient {
	return &PixabayClient{
		http:    hc,
		apiKey:  apiKey,
		baseURL: pixabayURL,
		cache:   cache.New(cache.NoExpiration, 0),
	}
}

type pixabayResponse struct {
	TotalHits int `json:"totalHits"`
	Hits      []struct {
		WebformatURL string `json:"webformatURL"`
	} `json:"hits"`
}

func (c *PixabayClient) FindImage(ctx context.Context, query string) (string, error) {
	if cached, found := c.cache.Get(query); found {
		return cached.(string), nil
	}

	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("q", query)
	params.Set("image_type", "photo")
	params.Set("safesearch", "true")
	params.Set("per_page", "3")

	var resp pixabayResponse
	if err := c.http.GetJSON(ctx, c.baseURL+"?"+params.Encode(), nil, &resp); err != nil {
		return "", fmt.Errorf("pixabay: %w", err)
	}
	img := ""
	if len(resp.Hits) > 0 {
		img = resp.Hits[0].WebformatURL
	}
	c.cache.Set(query, img, cache.NoExpiration)
	return img, nil
}
