package analyze

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"go-hep.org/x/hep/hbook"
	"go-hep.org/x/hep/hbook/yodacnv"
)

// HistFileName is the name of the file which WriteHistFile is usually
// pointed at inside an output directory.
const HistFileName = "top_analysis.yoda"

// WriteYODA writes every histogram, 1D and 2D, to w in the YODA text format.
// Each histogram's path is its name.
func (a *TopAnalysis) WriteYODA(w io.Writer) error {
	hs := []yodacnv.Marshaler{}
	for _, h := range a.Hists1D() { hs = append(hs, h.H1D) }
	for _, h := range a.Hists2D() { hs = append(hs, h.H2D) }
	return yodacnv.Write(w, hs...)
}

// WriteHistFile writes every histogram to the YODA file fname.
func (a *TopAnalysis) WriteHistFile(fname string) error {
	f, err := os.Create(fname)
	if err != nil { return err }

	bw := bufio.NewWriter(f)
	if err = a.WriteYODA(bw); err == nil { err = bw.Flush() }
	if cerr := f.Close(); err == nil { err = cerr }
	if err != nil { return fmt.Errorf("writing %s: %w", fname, err) }

	log.Infof("Wrote %d histograms to %s.", len(a.Hists1D()) + len(a.Hists2D()), fname)
	return nil
}

// ReadHistFile reads back the histograms in a YODA file, keyed by name.
func ReadHistFile(fname string) (map[string]hbook.Object, error) {
	f, err := os.Open(fname)
	if err != nil { return nil, err }
	defer f.Close()

	objs, err := yodacnv.Read(bufio.NewReader(f))
	if err != nil { return nil, fmt.Errorf("reading %s: %w", fname, err) }

	out := map[string]hbook.Object{}
	for _, o := range objs { out[o.Name()] = o }
	return out, nil
}
