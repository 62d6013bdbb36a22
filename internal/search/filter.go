package search

import (
	"strings"

	"carwise/internal/core"
)

const (
	// BudgetTolerance is how far over budget a listing may be priced and still be shown.
	BudgetTolerance = 1.15

	// DistanceTolerance is how far past the requested radius a listing may be.
	DistanceTolerance = 1.5
)

// passes reports whether l survives the tolerant filters. Absent criteria always pass.
func (e *Engine) passes(l core.Listing, c core.SearchCriteria) bool {
	if c.Budget != nil && *c.Budget > 0 {
		if l.Price == nil {
			if e.strictBudget {
				return false
			}
		} else if *l.Price > *c.Budget*BudgetTolerance {
			return false
		}
	}

	if !matchesBodyStyle(l.BodyStyle, c.BodyStyle) {
		return false
	}
	if !contains(l.FuelType, c.FuelType) {
		return false
	}
	if !contains(core.Ptr(l.Make), c.Make) {
		return false
	}

	if c.MaxDistanceMiles != nil && *c.MaxDistanceMiles > 0 && l.DistanceMiles != nil {
		if *l.DistanceMiles > *c.MaxDistanceMiles*DistanceTolerance {
			return false
		}
	}
	return true
}

// contains is a case-insensitive substring test of want inside have.
// A blank want matches everything; a missing have matches nothing else.
func contains(have, want *string) bool {
	if want == nil || strings.TrimSpace(*want) == "" {
		return true
	}
	if have == nil {
		return false
	}
	return strings.Contains(strings.ToLower(*have), strings.ToLower(strings.TrimSpace(*want)))
}

// matchesBodyStyle is contains with support for the "not X" form, which
// excludes listings whose body style contains X.
func matchesBodyStyle(have, want *string) bool {
	if want == nil {
		return true
	}
	if excluded, ok := negated(*want); ok {
		return have == nil || !strings.Contains(strings.ToLower(*have), excluded)
	}
	return contains(have, want)
}

// negated returns X, lowercased, for criteria of the form "not X".
func negated(criterion string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(criterion))
	rest, ok := strings.CutPrefix(lower, "not ")
	if !ok {
		return "", false
	}
	rest = strings.TrimSpace(rest)
	return rest, rest != ""
}
