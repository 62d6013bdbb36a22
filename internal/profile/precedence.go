package profile

import (
	"log/slog"

	"carwise/internal/core"
)

// candidate is one (source, accessor) entry in a precedence chain.
type candidate[T any] struct {
	source string
	get    func(decoded) *T
}

// resolve returns the first non-nil value along chain.
func resolve[T any](d decoded, field string, chain []candidate[T]) *T {
	for _, c := range chain {
		if v := c.get(d); v != nil {
			slog.Debug("profile field resolved", "field", field, "source", c.source)
			return v
		}
	}
	return nil
}

var yearChain = []candidate[int]{
	{"autodev.vehicle.year", func(d decoded) *int { return d.primary.Vehicle.Year }},
	{"vpic.ModelYear", func(d decoded) *int {
		year := core.ParseOptionalInt(deref(d.secondary.ModelYear))
		if year == nil || *year == 0 {
			return nil
		}
		return year
	}},
}

var makeChain = []candidate[string]{
	{"autodev.vehicle.make", func(d decoded) *string { return d.primary.Vehicle.Make }},
	{"autodev.make", func(d decoded) *string { return d.primary.Make }},
	{"vpic.Make", func(d decoded) *string { return d.secondary.Make }},
}

var modelChain = []candidate[string]{
	{"autodev.vehicle.model", func(d decoded) *string { return d.primary.Vehicle.Model }},
	{"autodev.model", func(d decoded) *string { return d.primary.Model }},
	{"vpic.Model", func(d decoded) *string { return d.secondary.Model }},
}

var trimChain = []candidate[string]{
	{"autodev.trim", func(d decoded) *string { return d.primary.Trim }},
	{"vpic.Trim", func(d decoded) *string { return d.secondary.Trim }},
}
