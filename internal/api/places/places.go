// Package places wraps the map and search APIs used to gather candidate
// places for the recommendation agents.
package places

import (
	"context"
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/FACorreiaa/go-travel-planner/app/httpclient"
	"github.com/FACorreiaa/go-travel-planner/config"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

// SearchQuery describes one candidate lookup.
type SearchQuery struct {
	Query    string
	Kind     types.SpotType
	CheckIn  string
	CheckOut string
	Adults   int
	Limit    int
}

// Searcher is one upstream place search API.
type Searcher interface {
	Name() string
	Search(ctx context.Context, q SearchQuery) ([]types.Place, error)
}

// ImageFinder returns a thumbnail URL for a query, or "" when none matches.
type ImageFinder interface {
	FindImage(ctx context.Context, query string) (string, error)
}

var _ ImageFinder = (*PixabayClient)(nil)

var (
	_ Searcher = (*GoogleClient)(nil)
	_ Searcher = (*NaverClient)(nil)
	_ Searcher = (*KakaoClient)(nil)
	_ Searcher = (*SerpAPIClient)(nil)
	_ Searcher = (*SerperClient)(nil)
)

// Registry holds the clients that have credentials configured.
type Registry struct {
	Google  *GoogleClient
	Naver   *NaverClient
	Kakao   *KakaoClient
	SerpAPI *SerpAPIClient
	Serper  *SerperClient
	Pixabay *PixabayClient
}

// NewRegistry builds a client for every upstream with a configured key.
func NewRegistry(cfg config.SearchConfig, hc *httpclient.Client) *Registry {
	r := &Registry{}
	if cfg.GoogleMapsAPIKey != "" {
		r.Google = NewGoogleClient(hc, cfg.GoogleMapsAPIKey)
	}
	if cfg.NaverClientID != "" && cfg.NaverClientSecret != "" {
		r.Naver = NewNaverClient(hc, cfg.NaverClientID, cfg.NaverClientSecret)
	}
	if cfg.KakaoRESTAPIKey != "" {
		r.Kakao = NewKakaoClient(hc, cfg.KakaoRESTAPIKey)
	}
	if cfg.SerpAPIKey != "" {
		r.SerpAPI = NewSerpAPIClient(hc, cfg.SerpAPIKey)
	}
	if cfg.SerperAPIKey != "" {
		r.Serper = NewSerperClient(hc, cfg.SerperAPIKey)
	}
	if cfg.PixabayAPIKey != "" {
		r.Pixabay = NewPixabayClient(hc, cfg.PixabayAPIKey)
	}
	return r
}

// SearchersFor returns the configured sources for kind. Accommodation
// also queries SerpAPI hotels.
func (r *Registry) SearchersFor(kind types.SpotType) []Searcher {
	var out []Searcher
	if kind == types.SpotAccommodation && r.SerpAPI != nil {
		out = append(out, r.SerpAPI)
	}
	if r.Kakao != nil {
		out = append(out, r.Kakao)
	}
	if r.Naver != nil {
		out = append(out, r.Naver)
	}
	if r.Google != nil {
		out = append(out, r.Google)
	}
	if r.Serper != nil {
		out = append(out, r.Serper)
	}
	return out
}

// Images returns the image finder, nil when Pixabay is not configured.
func (r *Registry) Images() ImageFinder {
	if r.Pixabay == nil {
		return nil
	}
	return r.Pixabay
}

// keyword is the Korean search term appended to the destination.
func keyword(kind types.SpotType) string {
	switch kind {
	case types.SpotAccommodation:
		return "숙소"
	case types.SpotRestaurant:
		return "맛집"
	case types.SpotCafe:
		return "카페"
	case types.SpotSite:
		return "관광지"
	}
	return ""
}

func searchText(q SearchQuery) string {
	return strings.TrimSpace(q.Query + " " + keyword(q.Kind))
}

func limitOr(n, def int) int {
	if n <= 0 {
		return def
	}
	return n
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// stripTags removes markup such as the <b> highlights Naver adds.
func stripTags(s string) string {
	return strings.TrimSpace(html.UnescapeString(tagPattern.ReplaceAllString(s, "")))
}

func parseFloat(s string) *float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return &f
}
