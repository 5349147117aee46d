package places

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/FACorreiaa/go-travel-planner/app/httpclient"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

const naverLocalURL = "https://openapi.naver.com/v1/search/local.json"

// NaverClient queries Naver Local Search. The API returns at most 5 items.
type NaverClient struct {
	http         *httpclient.Client
	clientID     string
	clientSecret string
	baseURL      string
}

func NewNaverClient(hc *httpclient.Client, clientID, clientSecret string) *NaverClient {
	return &NaverClient{http: hc, clientID: clientID, clientSecret: clientSecret, baseURL: naverLocalURL}
}

func (c *NaverClient) Name() string { return "naver" }

type naverLocalResponse struct {
	Items []struct {
		Title       string `json:"title"`
		Link        string `json:"link"`
		Category    string `json:"category"`
		Telephone   string `json:"telephone"`
		Address     string `json:"address"`
		RoadAddress string `json:"roadAddress"`
		MapX        string `json:"mapx"`
		MapY        string `json:"mapy"`
	} `json:"items"`
}

// naverCoord converts the WGS84 integer coordinates (degrees * 1e7).
func naverCoord(v string) *float64 {
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n == 0 {
		return nil
	}
	f := float64(n) / 1e7
	return &f
}

func (c *NaverClient) Search(ctx context.Context, q SearchQuery) ([]types.Place, error) {
	params := url.Values{}
	params.Set("query", searchText(q))
	params.Set("display", strconv.Itoa(min(limitOr(q.Limit, 5), 5)))
	params.Set("sort", "comment")

	headers := map[string]string{
		"X-Naver-Client-Id":     c.clientID,
		"X-Naver-Client-Secret": c.clientSecret,
	}
	var resp naverLocalResponse
	if err := c.http.GetJSON(ctx, c.baseURL+"?"+params.Encode(), headers, &resp); err != nil {
		return nil, fmt.Errorf("naver local: %w", err)
	}

	out := make([]types.Place, 0, len(resp.Items))
	for _, it := range resp.Items {
		addr := it.RoadAddress
		if addr == "" {
			addr = it.Address
		}
		out = append(out, types.Place{
			Name:      stripTags(it.Title),
			Address:   addr,
			Latitude:  naverCoord(it.MapY),
			Longitude: naverCoord(it.MapX),
			Phone:     it.Telephone,
			URL:       it.Link,
			Category:  it.Category,
			Source:    c.Name(),
		})
	}
	return out, nil
}
