package io

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/phil-mansfield/lhetruth/event"
	"github.com/phil-mansfield/lhetruth/particle"
)

/*
The binary format used for event files is as follows:
    |-- 1 --||-- 2 --||-- 3 --||-- ... 4 ... --|

    1 - (int32) Flag indicating the endianness of the file. 0 indicates a
        little endian byte ordering and -1 indicates a big endian order.
    2 - (int32) Schema version. Must equal SchemaVersion.
    3 - (int32) Size of a wireParticle. Should be checked for consistency.
    4 - A sequence of events, each laid out as:
        (int64) event number, (float64) event weight,
        (int32) number of species, then for each species
            (int32) length of the name, the name's bytes,
            (int32) particle count, the packed wireParticles.
*/

// DefaultOrder is the byte order used when writing binary event files.
// Files of either byte order can be read.
var DefaultOrder binary.ByteOrder = binary.LittleEndian

const (
	littleEndianFlag int32 = 0
	bigEndianFlag    int32 = -1
)

// Limits on the per-species counts stored in an event. Readers reject
// anything larger instead of allocating it.
const (
	maxSpeciesName         = 1 << 10
	maxParticlesPerSpecies = 1 << 20
)

// wireParticle is the on-disk layout of a particle.Particle. Field order is
// fixed: changing it requires a new SchemaVersion.
type wireParticle struct {
	PdgID        int32 `bson:"pdgId"`
	PdgIDMother1 int32 `bson:"pdgId_Mother1"`
	PdgIDMother2 int32 `bson:"pdgId_Mother2"`
	Status       int32 `bson:"status"`

	Px     float32 `bson:"Px"`
	Py     float32 `bson:"Py"`
	Pz     float32 `bson:"Pz"`
	Energy float32 `bson:"Energy"`
	Mass   float32 `bson:"Mass"`

	PT  float32 `bson:"PT"`
	Eta float32 `bson:"Eta"`
	Phi float32 `bson:"Phi"`

	Charge  int32 `bson:"Charge"`
	Mother1 int32 `bson:"Mother1"`
	Mother2 int32 `bson:"Mother2"`
	Color1  int32 `bson:"Color1"`
	Color2  int32 `bson:"Color2"`

	Lifetime float32 `bson:"Lifetime"`
	Helicity int32   `bson:"Helicity"`
}

func toWire(p *particle.Particle, w *wireParticle) {
	*w = wireParticle{
		p.PdgID, p.PdgIDMother1, p.PdgIDMother2, p.Status,
		p.Px, p.Py, p.Pz, p.Energy, p.Mass,
		p.PT, p.Eta, p.Phi,
		p.Charge, p.Mother1, p.Mother2, p.Color1, p.Color2,
		p.Lifetime, p.Helicity,
	}
}

// fromWire rebuilds a particle. The derived kinematics are recomputed from
// the stored momentum, which reproduces the stored PT, Eta, and Phi.
func fromWire(w *wireParticle, p *particle.Particle) {
	*p = particle.Particle{}
	p.PdgID, p.PdgIDMother1, p.PdgIDMother2 = w.PdgID, w.PdgIDMother1, w.PdgIDMother2
	p.Status = w.Status
	p.SetP4(w.Px, w.Py, w.Pz, w.Energy)
	p.Mass = w.Mass
	p.Charge = w.Charge
	p.Mother1, p.Mother2 = w.Mother1, w.Mother2
	p.Color1, p.Color2 = w.Color1, w.Color2
	p.Lifetime = w.Lifetime
	p.Helicity = w.Helicity
}

func wireSize() int32 { return int32(binary.Size(wireParticle{})) }

// endianness converts an endianness flag to a byte order.
func endianness(flag int32) (binary.ByteOrder, error) {
	switch flag {
	case littleEndianFlag:
		return binary.LittleEndian, nil
	case bigEndianFlag:
		return binary.BigEndian, nil
	}
	return nil, fmt.Errorf("Unrecognized endianness flag, %d.", flag)
}

func endiannessFlag(order binary.ByteOrder) int32 {
	if order == binary.BigEndian { return bigEndianFlag }
	return littleEndianFlag
}

// BinaryWriter writes binary event files.
type BinaryWriter struct {
	w     io.Writer
	order binary.ByteOrder
	buf   []wireParticle
}

// NewBinaryWriter writes the file header to w and returns a writer for the
// events which follow it.
func NewBinaryWriter(w io.Writer, order binary.ByteOrder) (*BinaryWriter, error) {
	hd := []int32{ endiannessFlag(order), SchemaVersion, wireSize() }
	if err := binary.Write(w, order, hd); err != nil {
		return nil, fmt.Errorf("writing event file header: %w", err)
	}
	return &BinaryWriter{w: w, order: order}, nil
}

// WriteEvent appends one event to the file.
func (bw *BinaryWriter) WriteEvent(ev *event.Event) error {
	names := ev.Names()
	for _, name := range names {
		if err := checkSpecies(len(name), len(ev.Species[name])); err != nil {
			return fmt.Errorf("event %d: %w", ev.Number, err)
		}
	}
	if err := bw.write(ev.Number, ev.Weight, int32(len(names))); err != nil {
		return fmt.Errorf("event %d: %w", ev.Number, err)
	}

	for _, name := range names {
		ps := ev.Species[name]
		if cap(bw.buf) < len(ps) { bw.buf = make([]wireParticle, len(ps)) }
		buf := bw.buf[:len(ps)]
		for i := range ps { toWire(&ps[i], &buf[i]) }

		err := bw.write(int32(len(name)), []byte(name), int32(len(ps)), buf)
		if err != nil {
			return fmt.Errorf("event %d, species %s: %w", ev.Number, name, err)
		}
	}
	return nil
}

func (bw *BinaryWriter) write(vals ...interface{}) error {
	for _, val := range vals {
		if err := binary.Write(bw.w, bw.order, val); err != nil { return err }
	}
	return nil
}

// Close is a no-op: BinaryWriter holds no state beyond w.
func (bw *BinaryWriter) Close() error { return nil }

// BinaryReader reads binary event files.
type BinaryReader struct {
	r     io.Reader
	order binary.ByteOrder
	buf   []wireParticle
}

// NewBinaryReader reads and checks the file header from r.
func NewBinaryReader(r io.Reader) (*BinaryReader, error) {
	// order doesn't matter for this read, since flags are symmetric.
	var flag int32
	if err := binary.Read(r, binary.LittleEndian, &flag); err != nil {
		return nil, fmt.Errorf("reading event file header: %w", err)
	}
	order, err := endianness(flag)
	if err != nil { return nil, err }

	var version, size int32
	if err := binary.Read(r, order, &version); err != nil {
		return nil, fmt.Errorf("reading event file header: %w", err)
	} else if err := binary.Read(r, order, &size); err != nil {
		return nil, fmt.Errorf("reading event file header: %w", err)
	}

	if version != SchemaVersion {
		return nil, fmt.Errorf(
			"Event file has schema version %d, but only version %d is " +
				"supported.", version, SchemaVersion,
		)
	} else if size != wireSize() {
		return nil, fmt.Errorf(
			"Expected particle record size of %d, found %d.", wireSize(), size,
		)
	}

	return &BinaryReader{r: r, order: order}, nil
}

// ReadEvent reads the next event. io.EOF is returned only if the file ends
// cleanly between events.
func (br *BinaryReader) ReadEvent() (*event.Event, error) {
	var number int64
	if err := binary.Read(br.r, br.order, &number); err != nil {
		if err == io.EOF { return nil, io.EOF }
		return nil, fmt.Errorf("reading event number: %w", err)
	}

	var weight float64
	var nSpecies int32
	if err := br.read(&weight, &nSpecies); err != nil {
		return nil, fmt.Errorf("event %d: %w", number, unexpected(err))
	} else if nSpecies < 0 {
		return nil, fmt.Errorf("event %d has %d species.", number, nSpecies)
	}

	ev := event.New(number, weight)
	for i := int32(0); i < nSpecies; i++ {
		name, ps, err := br.readSpecies()
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", number, unexpected(err))
		}
		ev.Species[name] = ps
	}
	return ev, nil
}

func (br *BinaryReader) readSpecies() (string, []particle.Particle, error) {
	var nameLen int32
	if err := br.read(&nameLen); err != nil { return "", nil, err }
	if nameLen < 0 || nameLen > maxSpeciesName {
		return "", nil, fmt.Errorf("invalid species name length %d", nameLen)
	}
	name := make([]byte, nameLen)
	if _, err := io.ReadFull(br.r, name); err != nil { return "", nil, err }

	var n int32
	if err := br.read(&n); err != nil { return "", nil, err }
	if err := checkSpecies(len(name), int(n)); err != nil {
		return "", nil, err
	}

	if cap(br.buf) < int(n) { br.buf = make([]wireParticle, n) }
	buf := br.buf[:n]
	if err := binary.Read(br.r, br.order, buf); err != nil {
		return "", nil, err
	}

	ps := make([]particle.Particle, n)
	for i := range ps { fromWire(&buf[i], &ps[i]) }
	return string(name), ps, nil
}

func checkSpecies(nameLen, n int) error {
	if nameLen > maxSpeciesName {
		return fmt.Errorf(
			"species name length %d is larger than %d", nameLen, maxSpeciesName,
		)
	} else if n < 0 || n > maxParticlesPerSpecies {
		return fmt.Errorf(
			"species particle count %d is outside [0, %d]",
			n, maxParticlesPerSpecies,
		)
	}
	return nil
}

func (br *BinaryReader) read(vals ...interface{}) error {
	for _, val := range vals {
		if err := binary.Read(br.r, br.order, val); err != nil { return err }
	}
	return nil
}

// Close is a no-op: BinaryReader holds no state beyond r.
func (br *BinaryReader) Close() error { return nil }

// unexpected converts an EOF in the middle of an event into
// io.ErrUnexpectedEOF so callers don't mistake it for the end of the file.
func unexpected(err error) error {
	if err == io.EOF { return io.ErrUnexpectedEOF }
	return err
}
