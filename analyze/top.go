/*package analyze contains the truth-level top quark analysis which is run over
converted event files: top mass reconstruction from W b pairs and the
kinematic correlations between the two decay products.
*/
package analyze

import (
	"io"
	"math"

	"go-hep.org/x/hep/fmom"
	"go-hep.org/x/hep/hbook"

	"github.com/phil-mansfield/lhetruth/event"
	"github.com/phil-mansfield/lhetruth/logs"
	"github.com/phil-mansfield/lhetruth/particle"
)

var log = logs.NamedLogger("analyze")

// PDG codes used by the analysis.
const (
	TopID int32 = 6
)

// Species names used by the analysis.
const (
	TopSpecies    = "Top"
	WSpecies      = "W"
	BottomSpecies = "Bottom"
)

// From returns true if both of p's mothers have the PDG code pdgID.
func From(pdgID int32, p *particle.Particle) bool {
	return p.PdgIDMother1 == pdgID && p.PdgIDMother2 == pdgID
}

// Asymmetry returns (a - b) / (a + b), or 0 if a + b isn't positive.
func Asymmetry(a, b float64) float64 {
	sum := a + b
	if sum > 0 { return (a - b) / sum }
	return 0
}

// Hist1D is a named one-dimensional histogram.
type Hist1D struct {
	Name, XLabel string
	*hbook.H1D
}

// Hist2D is a named two-dimensional histogram.
type Hist2D struct {
	Name, XLabel, YLabel string
	*hbook.H2D
}

// TopAnalysis accumulates histograms over t -> W b events.
type TopAnalysis struct {
	// Weight is applied to every fill.
	Weight float64

	TopMass, WbMass, WbPT, DeltaR, DeltaPhi, Asy *Hist1D
	PT, DeltaRPT, DeltaPhiPT, AsyPT *Hist2D

	events, pairs int
}

func newHist1D(name, xLabel string, bins int, low, high float64) *Hist1D {
	h := hbook.NewH1D(bins, low, high)
	h.Ann["name"] = name
	return &Hist1D{name, xLabel, h}
}

func newHist2D(
	name, xLabel, yLabel string,
	xBins int, xLow, xHigh float64, yBins int, yLow, yHigh float64,
) *Hist2D {
	h := hbook.NewH2D(xBins, xLow, xHigh, yBins, yLow, yHigh)
	h.Ann["name"] = name
	return &Hist2D{name, xLabel, yLabel, h}
}

// NewTopAnalysis books all histograms.
func NewTopAnalysis(weight float64) *TopAnalysis {
	const ptTop = "$p_T(t)$"
	return &TopAnalysis{
		Weight: weight,

		TopMass: newHist1D("top_mass", "$m(t)$", 50, 100, 250),
		WbMass: newHist1D("Wb_mass", "$M(W^\\pm b)$", 50, 100, 250),
		WbPT: newHist1D("Wb_PT", "Total $p_T$", 50, 400, 1000),
		DeltaR: newHist1D("DeltaR", "$\\Delta R(W, b)$", 50, 0, 6),
		DeltaPhi: newHist1D("DeltaPhi", "$|\\Delta\\phi(W, b)|$", 50, 0, 3.2),
		Asy: newHist1D("Asy", "Asy[$p_T(W) - p_T(b)$]", 50, -1, 1),

		PT: newHist2D("PT", ptTop, "$p_T(W) + p_T(b)$",
			50, 400, 1000, 50, 400, 1000),
		DeltaRPT: newHist2D("DeltaR_PT", ptTop, "$\\Delta R(W, b)$",
			50, 400, 1000, 50, 0, 6),
		DeltaPhiPT: newHist2D("DeltaPhi_PT", ptTop, "$|\\Delta\\phi(W, b)|$",
			50, 400, 1000, 50, 0, 3.2),
		AsyPT: newHist2D("Asy_PT", ptTop, "Asy[$p_T(W) - p_T(b)$]",
			50, 400, 1000, 50, -1, 1),
	}
}

// Hists1D returns every one-dimensional histogram.
func (a *TopAnalysis) Hists1D() []*Hist1D {
	return []*Hist1D{ a.TopMass, a.WbMass, a.WbPT, a.DeltaR, a.DeltaPhi, a.Asy }
}

// Hists2D returns every two-dimensional histogram.
func (a *TopAnalysis) Hists2D() []*Hist2D {
	return []*Hist2D{ a.PT, a.DeltaRPT, a.DeltaPhiPT, a.AsyPT }
}

// Fill adds one event. Events need at least one top, one W, and one b quark.
// The leading top fills TopMass, and the first W b pair where both particles
// come from a top fills everything else. It returns true if a pair was found.
func (a *TopAnalysis) Fill(ev *event.Event) bool {
	tops := ev.Get(TopSpecies)
	ws := ev.Get(WSpecies)
	bs := ev.Get(BottomSpecies)
	if len(tops) == 0 || len(ws) == 0 || len(bs) == 0 { return false }
	a.events++

	top := &tops[0]
	topP4 := top.P4()
	a.TopMass.Fill(topP4.M(), a.Weight)
	topPT := float64(top.PT)

	for i := range ws {
		for j := range bs {
			w, b := &ws[i], &bs[j]
			if !(From(TopID, w) && From(TopID, b)) { continue }
			a.fillPair(topPT, w, b)
			return true
		}
	}
	return false
}

func (a *TopAnalysis) fillPair(topPT float64, w, b *particle.Particle) {
	wP4, bP4 := w.P4(), b.P4()

	a.WbMass.Fill(fmom.InvMass(&wP4, &bP4), a.Weight)

	totalPT := float64(w.PT) + float64(b.PT)
	a.WbPT.Fill(totalPT, a.Weight)
	a.PT.Fill(topPT, totalPT, a.Weight)

	dR := fmom.DeltaR(&wP4, &bP4)
	a.DeltaR.Fill(dR, a.Weight)
	a.DeltaRPT.Fill(topPT, dR, a.Weight)

	dPhi := math.Abs(fmom.DeltaPhi(&wP4, &bP4))
	a.DeltaPhi.Fill(dPhi, a.Weight)
	a.DeltaPhiPT.Fill(topPT, dPhi, a.Weight)

	asy := Asymmetry(float64(w.PT), float64(b.PT))
	a.Asy.Fill(asy, a.Weight)
	a.AsyPT.Fill(topPT, asy, a.Weight)

	a.pairs++
}

// Events returns the number of events with a top, a W, and a b quark.
func (a *TopAnalysis) Events() int { return a.events }

// Pairs returns the number of events where a W b pair from a top was found.
func (a *TopAnalysis) Pairs() int { return a.pairs }

// Run fills the analysis with every event in r.
func (a *TopAnalysis) Run(r event.Reader) (int, error) {
	n := 0
	for {
		ev, err := r.ReadEvent()
		if err != nil {
			if err == io.EOF { break }
			return n, err
		}
		a.Fill(ev)
		n++
	}
	log.Infof(
		"%d events read, %d with t, W, and b, %d with a W b pair from t.",
		n, a.events, a.pairs,
	)
	return n, nil
}
