package listings

import "carwise/internal/core"

// Dedupe keeps the first occurrence of each listing, keyed by id and falling
// back to vin. Listings with neither are always kept.
func Dedupe(pool []core.Listing) []core.Listing {
	seen := make(map[string]struct{}, len(pool))
	out := make([]core.Listing, 0, len(pool))

	for _, l := range pool {
		key := dedupeKey(l)
		if key == "" {
			out = append(out, l)
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, l)
	}
	return out
}

func dedupeKey(l core.Listing) string {
	if l.ID != "" {
		return "id:" + l.ID
	}
	if l.VIN != nil && *l.VIN != "" {
		return "vin:" + *l.VIN
	}
	return ""
}
