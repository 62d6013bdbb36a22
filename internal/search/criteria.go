package search

import (
	"strings"

	"carwise/internal/core"
)

// CriteriaFromFilters coerces the loosely typed filter map produced by a
// free-text extraction step into SearchCriteria. Numbers may arrive as
// strings like "$25,000"; non-positive numbers and blank strings are dropped.
func CriteriaFromFilters(filters map[string]any) core.SearchCriteria {
	return core.SearchCriteria{
		Budget:           positive(filters["budget"]),
		MaxDistanceMiles: positive(filters["max_distance"]),
		BodyStyle:        nonBlank(filters["body_style"]),
		FuelType:         nonBlank(filters["fuel_type"]),
		Make:             nonBlank(filters["make"]),
		Model:            nonBlank(filters["model"]),
		MinYear:          positiveInt(filters["min_year"]),
	}
}

func positive(v any) *float64 {
	f := core.ParseLooseNumber(v)
	if f == nil || *f <= 0 {
		return nil
	}
	return f
}

func positiveInt(v any) *int {
	f := positive(v)
	if f == nil {
		return nil
	}
	return core.Ptr(int(*f))
}

func nonBlank(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
