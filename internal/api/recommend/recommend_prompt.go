package recommend

import (
	"fmt"
	"strings"

	"github.com/FACorreiaa/go-travel-planner/internal/types"
)

var kindInstructions = map[types.SpotType]string{
	types.SpotAccommodation: "Recommend places to stay. Consider the budget per night, the headcount and access to the main sights.",
	types.SpotRestaurant:    "Recommend restaurants serving local food. Mix price ranges unless the budget says otherwise.",
	types.SpotCafe:          "Recommend cafes worth a visit, such as ones with a view, a signature dessert or a local roastery.",
	types.SpotSite:          "Recommend tourist sites and activities. Prefer places reachable with the given transport.",
}

func getRecommendationPrompt(kind types.SpotType, req types.RecommendationRequest, candidates []types.Place) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are a travel planner for trips in South Korea.\n%s\n\n", kindInstructions[kind])
	fmt.Fprintf(&b, "Destination: %s\n", req.Destination)
	if req.StartDate != "" {
		fmt.Fprintf(&b, "Dates: %s to %s\n", req.StartDate, req.EndDate)
	}
	if req.Headcount > 0 {
		fmt.Fprintf(&b, "Travellers: %d\n", req.Headcount)
	}
	if req.Budget > 0 {
		fmt.Fprintf(&b, "Budget: %d KRW\n", req.Budget)
	}
	if req.Transport != "" {
		fmt.Fprintf(&b, "Transport: %s\n", req.Transport)
	}
	if req.Preferences != "" {
		fmt.Fprintf(&b, "Preferences: %s\n", req.Preferences)
	}

	if len(candidates) > 0 {
		b.WriteString("\nChoose from these search results when they fit:\n")
		for i, c := range candidates {
			fmt.Fprintf(&b, "%d. %s", i+1, c.Name)
			if c.Address != "" {
				fmt.Fprintf(&b, " | %s", c.Address)
			}
			if c.Category != "" {
				fmt.Fprintf(&b, " | %s", c.Category)
			}
			if c.Rating != nil {
				fmt.Fprintf(&b, " | rating %.1f", *c.Rating)
			}
			if c.Price != "" {
				fmt.Fprintf(&b, " | %s", c.Price)
			}
			b.WriteString("\n")
		}
	}

	fmt.Fprintf(&b, `
Return exactly %d recommendations as JSON, with no other text:
{
  "recommendations": [
    {
      "name": "place name",
      "address": "street address",
      "latitude": 0.0,
      "longitude": 0.0,
      "description": "one or two sentences",
      "reason": "why it suits this trip",
      "price_range": "price range in KRW"
    }
  ]
}
`, req.Limit)
	return b.String()
}
