package search

import (
	"fmt"
	"math"
)

// Explain renders a breakdown as short percentage lines, e.g. "price match 82%".
func Explain(b ScoreBreakdown) []string {
	pct := func(v float64) int { return int(math.Round(v * 100)) }
	return []string{
		fmt.Sprintf("price match %d%%", pct(b.Price)),
		fmt.Sprintf("mileage match %d%%", pct(b.Mileage)),
		fmt.Sprintf("distance match %d%%", pct(b.Distance)),
		fmt.Sprintf("fuel economy match %d%%", pct(b.Economy)),
		fmt.Sprintf("safety match %d%%", pct(b.Safety)),
		fmt.Sprintf("overall %d%%", pct(b.Total)),
	}
}
