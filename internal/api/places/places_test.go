package places

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-travel-planner/app/httpclient"
	"github.com/FACorreiaa/go-travel-planner/config"
	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

func testHTTPClient() *httpclient.Client {
	return httpclient.New(2*time.Second, 0, slog.Default(), httpclient.WithInitialInterval(time.Millisecond))
}

func TestNaverSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "id", r.Header.Get("X-Naver-Client-Id"))
		assert.Equal(t, "secret", r.Header.Get("X-Naver-Client-Secret"))
		assert.Equal(t, "전주 맛집", r.URL.Query().Get("query"))
		_, _ = io.WriteString(w, `{"items":[{"title":"<b>전주</b> 비빔밥 &amp; 국수","link":"https://a.example","category":"한식",
			"telephone":"","address":"전북 전주시 완산구","roadAddress":"전북 전주시 완산구 태조로 1","mapx":"1271534000","mapy":"358152000"}]}`)
	}))
	defer srv.Close()

	c := NewNaverClient(testHTTPClient(), "id", "secret")
	c.baseURL = srv.URL

	got, err := c.Search(context.Background(), SearchQuery{Query: "전주", Kind: types.SpotRestaurant})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "전주 비빔밥 & 국수", got[0].Name)
	assert.Equal(t, "전북 전주시 완산구 태조로 1", got[0].Address)
	assert.InDelta(t, 127.1534, *got[0].Longitude, 1e-9)
	assert.InDelta(t, 35.8152, *got[0].Latitude, 1e-9)
	assert.Equal(t, "naver", got[0].Source)
}

func TestKakaoSearch_CategoryAndAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "KakaoAK rest-key", r.Header.Get("Authorization"))
		assert.Equal(t, "CE7", r.URL.Query().Get("category_group_code"))
		_, _ = io.WriteString(w, `{"documents":[{"place_name":"테라로사","category_name":"음식점 > 카페","address_name":"강원 강릉시 구정면",
			"road_address_name":"","phone":"033-648-2760","place_url":"http://place.map.kakao.com/1","x":"128.8950","y":"37.7218"}]}`)
	}))
	defer srv.Close()

	c := NewKakaoClient(testHTTPClient(), "rest-key")
	c.baseURL = srv.URL

	got, err := c.Search(context.Background(), SearchQuery{Query: "강릉", Kind: types.SpotCafe})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "강원 강릉시 구정면", got[0].Address)
	assert.InDelta(t, 37.7218, *got[0].Latitude, 1e-9)
	assert.Equal(t, "033-648-2760", got[0].Phone)
}

func TestKakaoCategory(t *testing.T) {
	assert.Equal(t, "AD5", KakaoCategory(types.SpotAccommodation))
	assert.Equal(t, "FD6", KakaoCategory(types.SpotRestaurant))
	assert.Equal(t, "CE7", KakaoCategory(types.SpotCafe))
	assert.Equal(t, "AT4", KakaoCategory(types.SpotSite))
}

func TestGoogleSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tourist_attraction", r.URL.Query().Get("type"))
		assert.Equal(t, "gkey", r.URL.Query().Get("key"))
		_, _ = io.WriteString(w, `{"status":"OK","results":[{"place_id":"abc","name":"Gyeongbokgung","formatted_address":"Seoul",
			"rating":4.6,"types":["tourist_attraction"],"geometry":{"location":{"lat":37.5796,"lng":126.977}}}]}`)
	}))
	defer srv.Close()

	c := NewGoogleClient(testHTTPClient(), "gkey")
	c.baseURL = srv.URL

	got, err := c.Search(context.Background(), SearchQuery{Query: "서울", Kind: types.SpotSite})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "https://www.google.com/maps/place/?q=place_id:abc", got[0].URL)
	assert.Equal(t, 4.6, *got[0].Rating)
}

func TestGoogleSearch_QuotaStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status":"OVER_QUERY_LIMIT","results":[]}`)
	}))
	defer srv.Close()

	c := NewGoogleClient(testHTTPClient(), "gkey")
	c.baseURL = srv.URL

	_, err := c.Search(context.Background(), SearchQuery{Query: "x"})
	assert.ErrorIs(t, err, types.ErrUpstreamQuota)
}

func TestSerpAPIHotels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "google_hotels", q.Get("engine"))
		assert.Equal(t, "2026-03-02", q.Get("check_in_date"))
		assert.Equal(t, "2026-03-03", q.Get("check_out_date"))
		assert.Equal(t, "2", q.Get("adults"))
		_, _ = io.WriteString(w, `{"properties":[{"name":"Hotel Shilla","link":"https://shilla.example","type":"hotel",
			"overall_rating":4.7,"gps_coordinates":{"latitude":37.556,"longitude":127.005},"rate_per_night":{"lowest":"₩450,000"}}]}`)
	}))
	defer srv.Close()

	c := NewSerpAPIClient(testHTTPClient(), "serp")
	c.baseURL = srv.URL
	c.now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }

	got, err := c.Search(context.Background(), SearchQuery{Query: "Seoul", Kind: types.SpotAccommodation, Adults: 2})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "₩450,000", got[0].Price)
	assert.Equal(t, "serpapi", got[0].Source)
}

func TestSerpAPI_IgnoresOtherKinds(t *testing.T) {
	c := NewSerpAPIClient(testHTTPClient(), "serp")
	c.baseURL = "http://127.0.0.1:1"
	got, err := c.Search(context.Background(), SearchQuery{Query: "Seoul", Kind: types.SpotCafe})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSerperMaps(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "skey", r.Header.Get("X-API-KEY"))
		var body serperMapsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "부산 관광지", body.Q)
		_, _ = io.WriteString(w, `{"places":[{"title":"Haeundae Beach","address":"Busan","latitude":35.1587,"longitude":129.1604,"rating":4.5}]}`)
	}))
	defer srv.Close()

	c := NewSerperClient(testHTTPClient(), "skey")
	c.baseURL = srv.URL

	got, err := c.Search(context.Background(), SearchQuery{Query: "부산", Kind: types.SpotSite})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Haeundae Beach", got[0].Name)
}

func TestPixabay_CachesLookups(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = io.WriteString(w, `{"totalHits":1,"hits":[{"webformatURL":"https://pixabay.example/a.jpg"}]}`)
	}))
	defer srv.Close()

	c := NewPixabayClient(testHTTPClient(), "pkey")
	c.baseURL = srv.URL

	for range 2 {
		img, err := c.FindImage(context.Background(), "Jeju")
		require.NoError(t, err)
		assert.Equal(t, "https://pixabay.example/a.jpg", img)
	}
	assert.Equal(t, 1, calls)
}

func TestRegistry_SkipsUnconfigured(t *testing.T) {
	r := NewRegistry(config.SearchConfig{KakaoRESTAPIKey: "k", SerpAPIKey: "s"}, testHTTPClient())
	assert.Nil(t, r.Google)
	assert.Nil(t, r.Images())

	acc := r.SearchersFor(types.SpotAccommodation)
	require.Len(t, acc, 2)
	assert.Equal(t, "serpapi", acc[0].Name())
	assert.Len(t, r.SearchersFor(types.SpotCafe), 1)
}

func TestStripTags(t *testing.T) {
	assert.Equal(t, "광안리 해변", stripTags("<b>광안리</b> 해변"))
}
