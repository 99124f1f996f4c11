package dispatch

import (
	"math"
	"strings"

	"github.com/cognicore/termmatch/internal/match"
)

// RecomputeConfidence implements calculate_confidence from the source:
// independent of the §4.5 scorer thresholds, used to score external
// lookup results. It returns a value in [0, 1] rounded to two decimals.
func RecomputeConfidence(term, display string) float64 {
	t := strings.ToLower(strings.TrimSpace(term))
	d := strings.ToLower(strings.TrimSpace(display))

	if t == d {
		return 1.0
	}

	if strings.Contains(d, t) || strings.Contains(t, d) {
		r := match.Ratio(t, d) / 100
		return round2(math.Max(0.85, r))
	}

	r := match.Ratio(t, d)
	ts := match.TokenSortRatio(t, d)
	tset := match.TokenSetRatio(t, d)

	best := r
	if ts > best {
		best = ts
	}
	if tset > best {
		best = tset
	}
	return round2(best / 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
