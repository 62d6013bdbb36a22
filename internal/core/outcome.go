package core

// Outcome classifies how an adapter call went, so callers can branch on it
// instead of on error identity.
type Outcome int

const (
	// OutcomeOK means the source answered with usable data.
	OutcomeOK Outcome = iota
	// OutcomeDegraded means an optional source failed or had no data and a neutral value was returned.
	OutcomeDegraded
	// OutcomeFailed means a mandatory source failed; an error accompanies it.
	OutcomeFailed
)

// String returns the label used in logs and metrics.
func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeDegraded:
		return "degraded"
	case OutcomeFailed:
		return "failed"
	}
	return "unknown"
}
