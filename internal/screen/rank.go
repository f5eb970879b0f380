package screen

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/dimascad/ellingham/internal/model"
)

// Rank orders curves by their dGf per mole O2 at the reference temperature,
// most negative first. Rank 1 is the most stable oxide, the one whose metal
// pulls oxygen away from everything below it on the diagram.
func Rank(curves []model.Curve, refTempK float64) ([]model.Ranking, error) {
	if len(curves) == 0 {
		return nil, fmt.Errorf("no curves to rank")
	}

	type entry struct {
		oxide string
		dg    float64
	}

	var entries []entry
	for _, c := range curves {
		dg, ok := valueAt(c, refTempK)
		if !ok {
			return nil, fmt.Errorf("curve %s has no sample at %.0f K", c.Oxide, refTempK)
		}
		entries = append(entries, entry{oxide: c.Oxide, dg: dg})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].dg < entries[j].dg
	})

	rankings := make([]model.Ranking, len(entries))
	for i, e := range entries {
		rankings[i] = model.Ranking{Rank: i + 1, Oxide: e.oxide, DGPerO2: e.dg}
	}
	return rankings, nil
}

// valueAt finds the curve sample at tK, tolerating float drift from grid
// construction. Curves are sampled on the grid, so exact lookup suffices;
// interpolation would hide a grid mismatch instead of surfacing it.
func valueAt(c model.Curve, tK float64) (float64, bool) {
	for i, t := range c.TempsK {
		if math.Abs(t-tK) < 1e-6 {
			return c.DGPerO2[i], true
		}
	}
	return 0, false
}

// RankingSignal condenses a ranking into a one-line diagnostic.
func RankingSignal(rankings []model.Ranking, refTempK float64) model.Signal {
	names := make([]string, len(rankings))
	for i, r := range rankings {
		names[i] = r.Oxide
	}

	return model.Signal{
		Type:     model.SignalRanking,
		Severity: model.SeverityInfo,
		Description: fmt.Sprintf("stability at %.0f K (most stable first): %s",
			refTempK, strings.Join(names, " > ")),
		Data: map[string]any{
			"ref_temp_k": refTempK,
			"order":      names,
		},
	}
}
