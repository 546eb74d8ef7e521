/*package lhe converts Les Houches Event files into events whose particles have
been filtered by status, sorted into species, and ordered by PT.
*/
package lhe

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"go-hep.org/x/hep/lhef"

	"github.com/phil-mansfield/lhetruth/event"
	"github.com/phil-mansfield/lhetruth/logs"
	"github.com/phil-mansfield/lhetruth/particle"
)

var log = logs.NamedLogger("lhe")

// Entry is a single particle line from an LHE event block.
type Entry struct {
	ID, Status int32
	Mother1, Mother2 int32 // 1-based, 0 means no mother.
	Color1, Color2 int32
	P [5]float64 // px, py, pz, E, m
	Lifetime, Spin float64
}

// Entries unpacks the particle lines of a decoded LHE event.
func Entries(evt *lhef.HEPEUP) []Entry {
	n := len(evt.IDUP)
	es := make([]Entry, n)
	for i := range es {
		e := &es[i]
		e.ID = int32(evt.IDUP[i])
		e.Status = int32(evt.ISTUP[i])
		e.Mother1, e.Mother2 = int32(evt.MOTHUP[i][0]), int32(evt.MOTHUP[i][1])
		e.Color1, e.Color2 = int32(evt.ICOLUP[i][0]), int32(evt.ICOLUP[i][1])
		for j := range e.P { e.P[j] = float64(evt.PUP[i][j]) }
		if i < len(evt.VTIMUP) { e.Lifetime = float64(evt.VTIMUP[i]) }
		if i < len(evt.SPINUP) { e.Spin = float64(evt.SPINUP[i]) }
	}
	return es
}

// Converter turns LHE events into event.Events.
type Converter struct {
	species  *particle.Species
	statuses []int32

	// MaxEvents stops Convert after this many events. Zero means no limit.
	MaxEvents int
	// ProgressEvery is the number of events between progress messages.
	ProgressEvery int
}

// NewConverter returns a Converter which keeps particles with one of the
// given statuses whose PDG codes are in species.
func NewConverter(species *particle.Species, statuses []int32) *Converter {
	c := &Converter{
		species: species, statuses: statuses, ProgressEvery: 10000,
	}

	log.Info(">>>> LHE conversion initiated <<<<")
	log.Infof(
		"Reading %s state particles in the LHE file.", statusNames(statuses),
	)
	return c
}

func statusNames(statuses []int32) string {
	names := make([]string, len(statuses))
	for i, st := range statuses {
		names[i] = particle.StatusName(st)
		if names[i] == "" { names[i] = fmt.Sprintf("status %d", st) }
	}
	if len(names) < 2 { return strings.Join(names, "") }
	return strings.Join(names[:len(names)-1], ", ") +
		" and " + names[len(names)-1]
}

func (c *Converter) keep(status int32) bool {
	for _, st := range c.statuses {
		if st == status { return true }
	}
	return false
}

// motherID returns the PDG code of the particle at the 1-based index i, or 0
// if i doesn't refer to a particle.
func motherID(ids []int32, i int32) int32 {
	if i > 0 && int(i) <= len(ids) { return ids[i-1] }
	return 0
}

// ConvertEntries builds the event for a single set of LHE particle lines.
// Mother PDG codes are looked up among all entries, including ones which
// are not kept.
func (c *Converter) ConvertEntries(
	number int64, weight float64, es []Entry,
) *event.Event {
	ids := make([]int32, len(es))
	for i := range es { ids[i] = es[i].ID }

	ev := event.New(number, weight)
	for i := range es {
		e := &es[i]
		if !c.keep(e.Status) { continue }
		name, charge3, ok := c.species.Lookup(e.ID)
		if !ok { continue }

		p := particle.Particle{}
		p.PdgID = e.ID
		p.Mother1, p.Mother2 = e.Mother1, e.Mother2
		p.PdgIDMother1 = motherID(ids, e.Mother1)
		p.PdgIDMother2 = motherID(ids, e.Mother2)
		p.Status = e.Status
		p.SetP4(
			float32(e.P[0]), float32(e.P[1]), float32(e.P[2]), float32(e.P[3]),
		)
		p.Mass = float32(e.P[4])
		p.Charge = charge3
		p.Color1, p.Color2 = e.Color1, e.Color2
		p.Lifetime = float32(e.Lifetime)
		p.Helicity = int32(e.Spin)

		ev.Add(name, &p)
	}

	ev.Sort()
	return ev
}

// Convert decodes the LHE stream r and writes each event to w, numbering
// events from 1. It returns the number of events written. ctx is checked
// between events.
func (c *Converter) Convert(
	ctx context.Context, r io.Reader, w event.Writer,
) (int, error) {
	dec, err := lhef.NewDecoder(r)
	if err != nil { return 0, fmt.Errorf("reading LHE header: %w", err) }

	log.Info("Looping over events, please wait patiently.")
	n := 0
	for c.MaxEvents == 0 || n < c.MaxEvents {
		if err := ctx.Err(); err != nil { return n, err }

		evt, err := dec.Decode()
		if err == io.EOF {
			break
		} else if err != nil {
			return n, fmt.Errorf("decoding LHE event %d: %w", n+1, err)
		}

		ev := c.ConvertEntries(int64(n+1), float64(evt.XWGTUP), Entries(evt))
		if err := w.WriteEvent(ev); err != nil { return n, err }
		n++

		if c.ProgressEvery > 0 && n%c.ProgressEvery == 0 {
			log.Infof("%d events converted.", n)
		}
	}

	log.Infof("Finished: %d events converted.", n)
	return n, nil
}

type gzipFile struct {
	*gzip.Reader
	f *os.File
}

func (g *gzipFile) Close() error {
	if err := g.Reader.Close(); err != nil {
		g.f.Close()
		return err
	}
	return g.f.Close()
}

// Open opens an LHE file, decompressing it if its name ends in ".gz".
func Open(fname string) (io.ReadCloser, error) {
	f, err := os.Open(fname)
	if err != nil { return nil, err }
	if !strings.HasSuffix(fname, ".gz") { return f, nil }

	zr, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", fname, err)
	}
	return &gzipFile{zr, f}, nil
}

// ConvertFile converts the LHE file at in and writes the events to w.
func (c *Converter) ConvertFile(
	ctx context.Context, in string, w event.Writer,
) (int, error) {
	r, err := Open(in)
	if err != nil { return 0, err }
	defer r.Close()

	n, err := c.Convert(ctx, r, w)
	if err != nil { return n, fmt.Errorf("%s: %w", in, err) }
	return n, nil
}
