package recommend

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

// cleanJSONResponse strips markdown fences and any prose around the JSON
// object or array in an LLM answer. When brackets in the prose make one
// candidate span invalid, the span that parses wins.
func cleanJSONResponse(response string) string {
	response = strings.TrimSpace(response)

	if strings.HasPrefix(response, "```json") {
		response = strings.TrimPrefix(response, "```json")
	} else if strings.HasPrefix(response, "```") {
		response = strings.TrimPrefix(response, "```")
	}
	response = strings.TrimSuffix(strings.TrimSpace(response), "```")
	response = strings.TrimSpace(response)

	obj, objOK := jsonSpan(response, "{", "}")
	arr, arrOK := jsonSpan(response, "[", "]")
	objValid := objOK && json.Valid([]byte(obj))
	arrValid := arrOK && json.Valid([]byte(arr))
	objFirst := !arrOK || (objOK && strings.Index(response, "{") < strings.Index(response, "["))

	switch {
	case objValid && arrValid:
		if objFirst {
			return obj
		}
		return arr
	case objValid:
		return obj
	case arrValid:
		return arr
	case objOK && objFirst:
		return obj
	case arrOK:
		return arr
	}
	return response
}

// jsonSpan cuts s from the first open to the last closing delimiter.
func jsonSpan(s, open, closing string) (string, bool) {
	first := strings.Index(s, open)
	last := strings.LastIndex(s, closing)
	if first == -1 || last <= first {
		return "", false
	}
	return strings.TrimSpace(s[first : last+1]), true
}

type llmRecommendations struct {
	Recommendations []types.Recommendation `json:"recommendations"`
}

// parseRecommendations decodes the agent answer. A bare JSON array is
// accepted as well as the {"recommendations": [...]} object.
func parseRecommendations(raw string, kind types.SpotType) ([]types.Recommendation, error) {
	cleaned := cleanJSONResponse(raw)

	var recs []types.Recommendation
	switch {
	case strings.HasPrefix(cleaned, "{"):
		var wrapped llmRecommendations
		if err := json.Unmarshal([]byte(cleaned), &wrapped); err != nil {
			return nil, fmt.Errorf("%w: malformed %s agent output: %v", types.ErrUpstream, kind, err)
		}
		recs = wrapped.Recommendations
	case strings.HasPrefix(cleaned, "["):
		if err := json.Unmarshal([]byte(cleaned), &recs); err != nil {
			return nil, fmt.Errorf("%w: malformed %s agent output: %v", types.ErrUpstream, kind, err)
		}
	default:
		return nil, fmt.Errorf("%w: %s agent returned no JSON", types.ErrUpstream, kind)
	}

	out := recs[:0]
	for _, r := range recs {
		r.Name = strings.TrimSpace(r.Name)
		if r.Name == "" {
			continue
		}
		r.Kind = kind
		// the prompt template shows 0.0 placeholders
		if r.Latitude != nil && r.Longitude != nil && *r.Latitude == 0 && *r.Longitude == 0 {
			r.Latitude, r.Longitude = nil, nil
		}
		if !validCoordinates(r.Latitude, r.Longitude) {
			r.Latitude, r.Longitude = nil, nil
		}
		if r.Rating != nil && (*r.Rating < 0 || *r.Rating > 5) {
			r.Rating = nil
		}
		out = append(out, r)
	}
	return out, nil
}

func validCoordinates(lat, lon *float64) bool {
	if lat == nil || lon == nil {
		return lat == nil && lon == nil
	}
	return *lat >= -90 && *lat <= 90 && *lon >= -180 && *lon <= 180
}

func normalizeName(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}

// matchCandidate finds the candidate the model picked, by exact or
// contained normalized name.
func matchCandidate(name string, candidates []types.Place) (types.Place, bool) {
	n := normalizeName(name)
	if n == "" {
		return types.Place{}, false
	}
	for _, c := range candidates {
		if normalizeName(c.Name) == n {
			return c, true
		}
	}
	for _, c := range candidates {
		cn := normalizeName(c.Name)
		if cn != "" && (strings.Contains(cn, n) || strings.Contains(n, cn)) {
			return c, true
		}
	}
	return types.Place{}, false
}

// fillFromCandidate copies the fields the model left empty.
func fillFromCandidate(r *types.Recommendation, c types.Place) {
	if r.Address == "" {
		r.Address = c.Address
	}
	if r.Latitude == nil {
		r.Latitude = c.Latitude
	}
	if r.Longitude == nil {
		r.Longitude = c.Longitude
	}
	if r.Rating == nil {
		r.Rating = c.Rating
	}
	if r.Phone == "" {
		r.Phone = c.Phone
	}
	if r.URL == "" {
		r.URL = c.URL
	}
	if r.PriceRange == "" {
		r.PriceRange = c.Price
	}
}
