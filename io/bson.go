package io

import (
	"encoding/binary"
	"fmt"
	"io"

	"gopkg.in/mgo.v2/bson"

	"github.com/phil-mansfield/lhetruth/event"
	"github.com/phil-mansfield/lhetruth/particle"
)

// maxDocumentSize is the largest BSON document that will be read. It matches
// MongoDB's own limit.
const maxDocumentSize = 16 << 20

type bsonEvent struct {
	Version int32                     `bson:"version"`
	Number  int64                     `bson:"number"`
	Weight  float64                   `bson:"weight"`
	Species map[string][]wireParticle `bson:"species"`
}

// BSONWriter writes events as a stream of BSON documents, one per event.
type BSONWriter struct {
	w io.Writer
}

func NewBSONWriter(w io.Writer) *BSONWriter { return &BSONWriter{w} }

// WriteEvent appends one event document.
func (bw *BSONWriter) WriteEvent(ev *event.Event) error {
	doc := bsonEvent{
		Version: SchemaVersion, Number: ev.Number, Weight: ev.Weight,
		Species: make(map[string][]wireParticle, len(ev.Species)),
	}
	for name, ps := range ev.Species {
		ws := make([]wireParticle, len(ps))
		for i := range ps { toWire(&ps[i], &ws[i]) }
		doc.Species[name] = ws
	}

	data, err := bson.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("bson marshal of event %d: %w", ev.Number, err)
	}
	if _, err := bw.w.Write(data); err != nil {
		return fmt.Errorf("event %d: %w", ev.Number, err)
	}
	return nil
}

func (bw *BSONWriter) Close() error { return nil }

// BSONReader reads a stream of BSON event documents.
type BSONReader struct {
	r io.Reader
}

func NewBSONReader(r io.Reader) *BSONReader { return &BSONReader{r} }

// ReadEvent reads the next event document.
func (br *BSONReader) ReadEvent() (*event.Event, error) {
	// Every BSON document starts with its own little endian int32 length,
	// which includes these four bytes.
	var size [4]byte
	if _, err := io.ReadFull(br.r, size[:]); err != nil {
		if err == io.EOF { return nil, io.EOF }
		return nil, fmt.Errorf("reading document size: %w", err)
	}
	n := int32(binary.LittleEndian.Uint32(size[:]))
	if n < 5 || n > maxDocumentSize {
		return nil, fmt.Errorf("Invalid BSON document size %d.", n)
	}

	data := make([]byte, n)
	copy(data, size[:])
	if _, err := io.ReadFull(br.r, data[4:]); err != nil {
		return nil, fmt.Errorf("reading document: %w", unexpected(err))
	}

	doc := bsonEvent{}
	if err := bson.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("bson unmarshal: %w", err)
	}
	if doc.Version != SchemaVersion {
		return nil, fmt.Errorf(
			"Event %d has schema version %d, but only version %d is " +
				"supported.", doc.Number, doc.Version, SchemaVersion,
		)
	}

	ev := event.New(doc.Number, doc.Weight)
	for name, ws := range doc.Species {
		ps := make([]particle.Particle, len(ws))
		for i := range ws { fromWire(&ws[i], &ps[i]) }
		ev.Species[name] = ps
	}
	return ev, nil
}

func (br *BSONReader) Close() error { return nil }
