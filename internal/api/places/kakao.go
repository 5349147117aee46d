package places

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/FACorreiaa/go-travel-planner/app/httpclient"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

const kakaoKeywordURL = "https://dapi.kakao.com/v2/local/search/keyword.json"

type KakaoClient struct {
	http    *httpclient.Client
	apiKey  string
	baseURL string
}

func NewKakaoClient(hc *httpclient.Client, restAPIKey string) *KakaoClient {
	return &KakaoClient{http: hc, apiKey: restAPIKey, baseURL: kakaoKeywordURL}
}

func (c *KakaoClient) Name() string { return "kakao" }

// KakaoCategory maps a spot type to a Kakao category group code.
func KakaoCategory(kind types.SpotType) string {
	switch kind {
	case types.SpotAccommodation:
		return "AD5"
	case types.SpotRestaurant:
		return "FD6"
	case types.SpotCafe:
		return "CE7"
	case types.SpotSite:
		return "AT4"
	}
	return ""
}

type kakaoKeywordResponse struct {
	Documents []struct {
		PlaceName       string `json:"place_name"`
		CategoryName    string `json:"category_name"`
		AddressName     string `json:"address_name"`
		RoadAddressName string `json:"road_address_name"`
		Phone           string `json:"phone"`
		PlaceURL        string `json:"place_url"`
		X               string `json:"x"`
		Y               string `json:"y"`
	} `json:"documents"`
}

func (c *KakaoClient) Search(ctx context.Context, q SearchQuery) ([]types.Place, error) {
	params := url.Values{}
	params.Set("query", searchText(q))
	if code := KakaoCategory(q.Kind); code != "" {
		params.Set("category_group_code", code)
	}
	params.Set("size", strconv.Itoa(min(limitOr(q.Limit, 15), 15)))

	headers := map[string]string{"Authorization": "KakaoAK " + c.apiKey}
	var resp kakaoKeywordResponse
	if err := c.http.GetJSON(ctx, c.baseURL+"?"+params.Encode(), headers, &resp); err != nil {
		return nil, fmt.Errorf("kakao local: %w", err)
	}

	out := make([]types.Place, 0, len(resp.Documents))
	for _, d := range resp.Documents {
		addr := d.RoadAddressName
		if addr == "" {
			addr = d.AddressName
		}
		out = append(out, types.Place{
			Name:      d.PlaceName,
			Address:   addr,
			Latitude:  parseFloat(d.Y),
			Longitude: parseFloat(d.X),
			Phone:     d.Phone,
			URL:       d.PlaceURL,
			Category:  d.CategoryName,
			Source:    c.Name(),
		})
	}
	return out, nil
}
