package profile

import (
	"fmt"
	"strings"

	"carwise/internal/core"
)

// Summarize renders a compact plain-text description of p for prompt building,
// so a language model does not have to guess specs.
func Summarize(p core.CarProfile) string {
	parts := make([]string, 0, 3)

	name := "This vehicle"
	switch {
	case p.Complete():
		name = fmt.Sprintf("%d %s %s", *p.Year, *p.Make, *p.Model)
	default:
		var bits []string
		for _, s := range []*string{p.Make, p.Model} {
			if s != nil {
				bits = append(bits, *s)
			}
		}
		if len(bits) > 0 {
			name = strings.Join(bits, " ")
		}
	}
	if p.Trim != nil {
		name += " " + *p.Trim
	}
	if p.BodyType != nil {
		name += " (" + *p.BodyType + ")"
	}
	if p.Origin != nil {
		parts = append(parts, fmt.Sprintf("%s, built in %s.", name, *p.Origin))
	} else {
		parts = append(parts, name+".")
	}

	var engine []string
	if d := p.Engine.DisplacementLiters; d != nil && *d != 0 {
		engine = append(engine, fmt.Sprintf("%.1fL", *d))
	}
	if c := p.Engine.Cylinders; c != nil && *c != 0 {
		engine = append(engine, fmt.Sprintf("%d cylinder", *c))
	}
	if hp := p.Engine.Horsepower; hp != nil && *hp != 0 {
		engine = append(engine, fmt.Sprintf("%d horsepower", *hp))
	}
	engineDesc := "engine specs are partially unknown"
	if len(engine) > 0 {
		engineDesc = strings.Join(engine, ", ")
	}
	fuel := "unknown fuel"
	if p.Engine.FuelType != nil {
		fuel = *p.Engine.FuelType
	}
	parts = append(parts, fmt.Sprintf("Engine: %s, fuel: %s.", engineDesc, fuel))

	eco := p.Economy
	if eco.CityMpg == nil && eco.HighwayMpg == nil && eco.MixedMpg == nil {
		parts = append(parts, "Fuel economy data is not available.")
	} else {
		var bits []string
		for _, f := range []struct {
			label string
			mpg   *float64
		}{
			{"city", eco.CityMpg},
			{"highway", eco.HighwayMpg},
			{"mixed", eco.MixedMpg},
		} {
			if f.mpg != nil && *f.mpg != 0 {
				bits = append(bits, fmt.Sprintf("%s about %.0f miles per gallon", f.label, *f.mpg))
			}
		}
		parts = append(parts, fmt.Sprintf("Approximate fuel economy: %s.", strings.Join(bits, ", ")))
	}

	return strings.Join(parts, " ")
}
