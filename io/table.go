package io

import (
	"fmt"
	"io"
	"strings"

	"github.com/phil-mansfield/table"

	"github.com/phil-mansfield/lhetruth/event"
	"github.com/phil-mansfield/lhetruth/particle"
)

// Column layout of table files.
const (
	EventCol = iota
	WeightCol
	PdgIDCol
	PdgIDMother1Col
	PdgIDMother2Col
	StatusCol
	PxCol
	PyCol
	PzCol
	EnergyCol
	MassCol
	PTCol
	EtaCol
	PhiCol
	ChargeCol
	Mother1Col
	Mother2Col
	Color1Col
	Color2Col
	LifetimeCol
	HelicityCol
	tableCols
)

// TableWriter writes one line per particle. Events without any particles
// leave no trace in the table.
type TableWriter struct {
	w io.Writer
}

func NewTableWriter(w io.Writer) *TableWriter { return &TableWriter{w} }

// WriteEvent writes every particle of ev, species in alphabetical order.
func (tw *TableWriter) WriteEvent(ev *event.Event) error {
	for _, name := range ev.Names() {
		ps := ev.Species[name]
		for i := range ps {
			if _, err := io.WriteString(tw.w, tableLine(ev, &ps[i])); err != nil {
				return fmt.Errorf("event %d: %w", ev.Number, err)
			}
		}
	}
	return nil
}

func (tw *TableWriter) Close() error { return nil }

func tableLine(ev *event.Event, p *particle.Particle) string {
	// %.9g is enough digits to recover any float32 exactly.
	vals := []string{
		fmt.Sprintf("%d", ev.Number),
		fmt.Sprintf("%.17g", ev.Weight),
		fmt.Sprintf("%d", p.PdgID),
		fmt.Sprintf("%d", p.PdgIDMother1),
		fmt.Sprintf("%d", p.PdgIDMother2),
		fmt.Sprintf("%d", p.Status),
		fmt.Sprintf("%.9g", p.Px),
		fmt.Sprintf("%.9g", p.Py),
		fmt.Sprintf("%.9g", p.Pz),
		fmt.Sprintf("%.9g", p.Energy),
		fmt.Sprintf("%.9g", p.Mass),
		fmt.Sprintf("%.9g", p.PT),
		fmt.Sprintf("%.9g", p.Eta),
		fmt.Sprintf("%.9g", p.Phi),
		fmt.Sprintf("%d", p.Charge),
		fmt.Sprintf("%d", p.Mother1),
		fmt.Sprintf("%d", p.Mother2),
		fmt.Sprintf("%d", p.Color1),
		fmt.Sprintf("%d", p.Color2),
		fmt.Sprintf("%.9g", p.Lifetime),
		fmt.Sprintf("%d", p.Helicity),
	}
	return strings.Join(vals, " ") + "\n"
}

// TableRow is a single line of a table file.
type TableRow struct {
	Event    int64
	Weight   float64
	Particle particle.Particle
}

// ReadParticleTable reads every row of a table file. Kinematics are rebuilt
// from the stored Px, Py, Pz, and Energy columns.
func ReadParticleTable(fname string) ([]TableRow, error) {
	colIdxs := make([]int, tableCols)
	for i := range colIdxs { colIdxs[i] = i }

	cols, err := table.ReadTable(fname, colIdxs, nil)
	if err != nil { return nil, err }
	if len(cols) < tableCols { return nil, nil }

	rows := make([]TableRow, len(cols[EventCol]))
	for i := range rows {
		row := &rows[i]
		row.Event = int64(cols[EventCol][i])
		row.Weight = cols[WeightCol][i]

		p := &row.Particle
		p.PdgID = int32(cols[PdgIDCol][i])
		p.PdgIDMother1 = int32(cols[PdgIDMother1Col][i])
		p.PdgIDMother2 = int32(cols[PdgIDMother2Col][i])
		p.Status = int32(cols[StatusCol][i])
		p.SetP4(
			float32(cols[PxCol][i]), float32(cols[PyCol][i]),
			float32(cols[PzCol][i]), float32(cols[EnergyCol][i]),
		)
		p.Mass = float32(cols[MassCol][i])
		p.Charge = int32(cols[ChargeCol][i])
		p.Mother1 = int32(cols[Mother1Col][i])
		p.Mother2 = int32(cols[Mother2Col][i])
		p.Color1 = int32(cols[Color1Col][i])
		p.Color2 = int32(cols[Color2Col][i])
		p.Lifetime = float32(cols[LifetimeCol][i])
		p.Helicity = int32(cols[HelicityCol][i])
	}
	return rows, nil
}

// TableReader regroups the rows of a table file into events.
type TableReader struct {
	rows    []TableRow
	species *particle.Species
}

// ReadTableEvents reads a table file and returns a Reader over its events.
// Species names are recovered from the PDG codes using species; rows with
// unknown codes are dropped with a warning.
func ReadTableEvents(
	fname string, species *particle.Species,
) (*TableReader, error) {
	rows, err := ReadParticleTable(fname)
	if err != nil { return nil, fmt.Errorf("%s: %w", fname, err) }
	return &TableReader{rows, species}, nil
}

// ReadEvent returns the next run of rows sharing an event number.
func (tr *TableReader) ReadEvent() (*event.Event, error) {
	if len(tr.rows) == 0 { return nil, io.EOF }

	ev := event.New(tr.rows[0].Event, tr.rows[0].Weight)
	n := 0
	for ; n < len(tr.rows) && tr.rows[n].Event == ev.Number; n++ {
		p := &tr.rows[n].Particle
		name, _, ok := tr.species.Lookup(p.PdgID)
		if !ok {
			log.Warnf(
				"Dropping particle with unknown pdgID %d in event %d.",
				p.PdgID, ev.Number,
			)
			continue
		}
		ev.Add(name, p)
	}
	tr.rows = tr.rows[n:]
	return ev, nil
}

func (tr *TableReader) Close() error { return nil }
