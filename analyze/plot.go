package analyze

import (
	"fmt"
	"path"

	plt "github.com/phil-mansfield/pyplot"
)

// StepPoints converts the bins of h into the x and y coordinates of a step
// plot outlining the histogram.
func StepPoints(h *Hist1D) (xs, ys []float64) {
	bins := h.Binning.Bins
	xs = make([]float64, 0, 2*len(bins))
	ys = make([]float64, 0, 2*len(bins))
	for i := range bins {
		xs = append(xs, bins[i].XMin(), bins[i].XMax())
		ys = append(ys, bins[i].SumW(), bins[i].SumW())
	}
	return xs, ys
}

// ProfilePoints returns the weighted mean y value of every x bin of h which
// has a positive sum of weights, ordered by x. The x coordinates are the bin
// centers.
func ProfilePoints(h *Hist2D) (xs, ys []float64) {
	edges := h.Binning.XEdges
	index := make(map[float64]int, len(edges))
	for i := range edges { index[edges[i].XMin()] = i }

	sw, swy := make([]float64, len(edges)), make([]float64, len(edges))
	bins := h.Binning.Bins
	for i := range bins {
		ix := index[bins[i].XMin()]
		sw[ix] += bins[i].SumW()
		swy[ix] += bins[i].SumW() * bins[i].YMid()
	}

	for i := range edges {
		if sw[i] <= 0 { continue }
		xs = append(xs, edges[i].XMid())
		ys = append(ys, swy[i] / sw[i])
	}
	return xs, ys
}

// Plot writes a log-scale PNG of every one-dimensional histogram and a
// profile PNG of every two-dimensional histogram to dir. The plots are only
// rendered once plt.Execute() is called.
func (a *TopAnalysis) Plot(dir string) []string {
	fnames := []string{}
	for _, h := range a.Hists1D() {
		fname := path.Join(dir, fmt.Sprintf("%s.png", h.Name))
		plotHist(h, fname)
		fnames = append(fnames, fname)
	}
	for _, h := range a.Hists2D() {
		fname := path.Join(dir, fmt.Sprintf("%s.png", h.Name))
		plotProfile(h, fname)
		fnames = append(fnames, fname)
	}
	return fnames
}

func plotHist(h *Hist1D, fname string) {
	xs, ys := StepPoints(h)
	if len(xs) == 0 { return }

	plt.Figure()
	plt.Plot(xs, ys, "r", plt.LW(2))

	plt.Title(fmt.Sprintf("%s: %d entries", h.Name, h.Entries()))
	plt.XLabel(h.XLabel, plt.FontSize(16))
	plt.YLabel("Events", plt.FontSize(16))

	max := 0.0
	for _, y := range ys {
		if y > max { max = y }
	}
	if max > 0 {
		plt.YScale("log")
	}
	plt.XLim(xs[0], xs[len(xs) - 1])

	plt.Grid(plt.Axis("y"))
	plt.SaveFig(fname)
}

func plotProfile(h *Hist2D, fname string) {
	xs, ys := ProfilePoints(h)
	if len(xs) == 0 { return }

	plt.Figure()
	plt.Plot(xs, ys, "ko")

	plt.Title(fmt.Sprintf("%s: %d entries", h.Name, h.Entries()))
	plt.XLabel(h.XLabel, plt.FontSize(16))
	plt.YLabel("Mean " + h.YLabel, plt.FontSize(16))
	plt.XLim(h.XMin(), h.XMax())
	plt.YLim(h.YMin(), h.YMax())

	plt.Grid()
	plt.SaveFig(fname)
}

// Summary returns a single-line description of h.
func Summary(h *Hist1D) string {
	return fmt.Sprintf(
		"%-10s entries = %6d, sum(w) = %.4g, mean = %.4g",
		h.Name, h.Entries(), h.SumW(), h.XMean(),
	)
}

// Summary2D returns a single-line description of h.
func Summary2D(h *Hist2D) string {
	return fmt.Sprintf(
		"%-10s entries = %6d, sum(w) = %.4g, mean = (%.4g, %.4g)",
		h.Name, h.Entries(), h.SumW(), h.XMean(), h.YMean(),
	)
}

// Execute renders every plot created since the last call.
func Execute() { plt.Execute() }
