package types

// Region is an administrative division: level 1 is a province or
// metropolitan city, level 2 a city or district within it.
type Region struct {
	ID         int      `json:"id"`
	Code       string   `json:"code"`
	Name       string   `json:"name"`
	ParentCode *string  `json:"parent_code,omitempty"`
	Level      int      `json:"level"`
	Children   []Region `json:"children,omitempty"`
}
