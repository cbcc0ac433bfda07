package aggregate

import (
	"math"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/BAPNuSigma/StockAI/internal/models"
)

// closeTolerance bounds the relative close-price difference two sources may
// report for the same timestamp before the disagreement is logged
const closeTolerance = 1e-6

// mergeBars folds fallback bars into the canonical set by timestamp-disjoint
// union. Timestamps already present from a higher-priority source are never
// overwritten; a conflicting value is counted and logged, not averaged.
func mergeBars(symbol string, canonical, fallback []models.PriceBar, fallbackSource string) ([]models.PriceBar, int) {
	seen := make(map[int64]models.PriceBar, len(canonical))
	for _, bar := range canonical {
		seen[bar.Timestamp.UnixNano()] = bar
	}

	conflicts := 0
	merged := canonical
	for _, bar := range fallback {
		key := bar.Timestamp.UnixNano()
		if existing, ok := seen[key]; ok {
			if !closeEqual(existing.Close, bar.Close) {
				conflicts++
				log.Warn().
					Str("symbol", symbol).
					Time("timestamp", bar.Timestamp).
					Float64("kept", existing.Close).
					Float64("discarded", bar.Close).
					Str("source", fallbackSource).
					Msg("source disagreement, keeping higher-priority value")
			}
			continue
		}
		seen[key] = bar
		merged = append(merged, bar)
	}

	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Timestamp.Before(merged[j].Timestamp)
	})
	return merged, conflicts
}

func closeEqual(a, b float64) bool {
	scale := math.Max(math.Abs(a), math.Abs(b))
	if scale == 0 {
		return true
	}
	return math.Abs(a-b)/scale <= closeTolerance
}

// covers reports whether the merged bars already span the requested range,
// within a calendar slack that absorbs weekends and market holidays
func covers(bars []models.PriceBar, rng models.Range) bool {
	if len(bars) == 0 {
		return false
	}
	const slack = 5 * 24 * 60 * 60 // seconds
	if !rng.Start.IsZero() && bars[0].Timestamp.Unix() > rng.Start.Unix()+slack {
		return false
	}
	if !rng.End.IsZero() && bars[len(bars)-1].Timestamp.Unix() < rng.End.Unix()-slack {
		return false
	}
	return true
}
