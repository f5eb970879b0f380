package screen

import (
	"fmt"

	"github.com/dimascad/ellingham/internal/model"
)

// favorableThreshold guards against calling a reaction favorable on
// rounding noise. Anything within a kJ of zero is treated as marginal.
const favorableThreshold = -1.0

// ReductionCheck tests whether copper can strip oxygen from a ceramic at tK.
// Both sides are compared per mole O2, so the reaction free energy is simply
// the difference of the two Ellingham lines:
//
//	dG_rxn = dG(Cu2O per O2) - dG(ceramic per O2)
//
// For every crucible-grade ceramic this is large and positive, which is the
// whole point: the melt cannot eat the container.
func ReductionCheck(cu model.Oxide, ceramic model.Oxide, tK float64) model.Reaction {
	dgCu := cu.GibbsPerO2(tK)
	dgCeramic := ceramic.GibbsPerO2(tK)
	dg := dgCu - dgCeramic

	return model.Reaction{
		Equation: fmt.Sprintf("%gCu + %g%s → %gCu₂O + %g%s",
			cu.MetalPerO2, ceramic.OxidePerO2, ceramic.Formula,
			cu.OxidePerO2, ceramic.MetalPerO2, metalSymbol(ceramic)),
		TempK:     tK,
		DGrxn:     dg,
		Favorable: dg < favorableThreshold,
	}
}

// ReductionChecks runs ReductionCheck for every ceramic against Cu2O and
// appends a per-ceramic signal.
func ReductionChecks(cu model.Oxide, ceramics []model.Oxide, tK float64) ([]model.Reaction, []model.Signal) {
	var reactions []model.Reaction
	var signals []model.Signal

	for _, ceramic := range ceramics {
		rxn := ReductionCheck(cu, ceramic, tK)
		reactions = append(reactions, rxn)

		verdict := "cannot"
		severity := model.SeverityInfo
		if rxn.Favorable {
			verdict = "CAN"
			severity = model.SeverityWarning
		}
		signals = append(signals, model.Signal{
			Type:     model.SignalReduction,
			Severity: severity,
			Description: fmt.Sprintf("Cu %s reduce %s at %.0f K (dG_rxn = %+.1f kJ/mol O₂)",
				verdict, ceramic.Name, tK, rxn.DGrxn),
			Data: map[string]any{
				"ceramic":   ceramic.Name,
				"temp_k":    tK,
				"dg_rxn_kj": rxn.DGrxn,
			},
		})
	}

	return reactions, signals
}

// SulfideExchange tests the matte-style copper capture route,
// 2Cu + FeS → Cu₂S + Fe, at tK. The formation reactions share the ½S₂
// reference, so the exchange energy is the difference of the two dGf values.
func SulfideExchange(feS, cu2S model.Sulfide, tK float64) (model.Reaction, model.Signal) {
	dg := cu2S.Gibbs(tK) - feS.Gibbs(tK)

	rxn := model.Reaction{
		Equation:  "2Cu + FeS → Cu₂S + Fe",
		TempK:     tK,
		DGrxn:     dg,
		Favorable: dg < favorableThreshold,
	}

	verdict := "unfavorable"
	if rxn.Favorable {
		verdict = "favorable"
	}
	sig := model.Signal{
		Type:     model.SignalSulfide,
		Severity: model.SeverityInfo,
		Description: fmt.Sprintf("sulfide exchange %s is %s at %.0f K (dG_rxn = %+.1f kJ/mol)",
			rxn.Equation, verdict, tK, rxn.DGrxn),
		Data: map[string]any{
			"temp_k":    tK,
			"dg_rxn_kj": rxn.DGrxn,
			"favorable": rxn.Favorable,
		},
	}

	return rxn, sig
}

// metalSymbol derives the display symbol of the oxide's metal from its
// element selection (the non-oxygen element).
func metalSymbol(o model.Oxide) string {
	for _, el := range o.Elements {
		if el != "O" {
			if len(el) > 1 {
				return el[:1] + string(el[1]+('a'-'A'))
			}
			return el
		}
	}
	return "M"
}

// ExtrapolationSignal flags curves that left their assessed temperature
// range. Values there are still reported, but the reader should know.
func ExtrapolationSignal(curves []model.Curve) *model.Signal {
	var affected []string
	for _, c := range curves {
		for _, ex := range c.Extrapolated {
			if ex {
				affected = append(affected, c.Oxide)
				break
			}
		}
	}
	if len(affected) == 0 {
		return nil
	}

	return &model.Signal{
		Type:     model.SignalExtrapolation,
		Severity: model.SeverityWarning,
		Description: fmt.Sprintf("%d curve(s) contain points outside the assessed range: %v",
			len(affected), affected),
		Data: map[string]any{"oxides": affected},
	}
}
