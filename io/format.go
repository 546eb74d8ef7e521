/*package io reads and writes event files. Three formats are supported: a packed
binary format, a stream of BSON documents, and a whitespace-separated text
table.
*/
package io

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/phil-mansfield/lhetruth/event"
	"github.com/phil-mansfield/lhetruth/logs"
	"github.com/phil-mansfield/lhetruth/particle"
)

const (
	// DefaultOutputName is the base name used when an output file has the
	// wrong extension for its format.
	DefaultOutputName = "lhe_analysis"
	// SchemaVersion is written to every binary and BSON event file. Files
	// with any other version are rejected.
	SchemaVersion int32 = 1
)

var log = logs.NamedLogger("io")

// Format identifies an event file format.
type Format int

const (
	Binary Format = iota
	BSON
	Table
)

var formats = map[string]Format{
	"binary": Binary,
	"bson": BSON,
	"table": Table,
}

// ParseFormat converts a format name, as used in config files, into a
// Format. Names are case insensitive.
func ParseFormat(name string) (Format, error) {
	f, ok := formats[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		valid := []string{}
		for _, f := range formats { valid = append(valid, f.String()) }
		sort.Strings(valid)
		return 0, fmt.Errorf(
			"Unrecognized format '%s'. The accepted formats are: %s.",
			name, strings.Join(valid, ", "),
		)
	}
	return f, nil
}

func (f Format) String() string {
	switch f {
	case Binary:
		return "Binary"
	case BSON:
		return "BSON"
	case Table:
		return "Table"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// Extension returns the file extension, without a leading dot, used by
// files of this format.
func (f Format) Extension() string {
	switch f {
	case Binary:
		return "lhet"
	case BSON:
		return "bson"
	case Table:
		return "txt"
	}
	panic(fmt.Sprintf("Unrecognized format %d.", int(f)))
}

// FullExtension returns everything after the first dot in the base name of
// fname, so "events.lhet.gz" gives "lhet.gz".
func FullExtension(fname string) string {
	parts := strings.Split(filepath.Base(fname), ".")
	if len(parts) > 2 {
		return strings.Join(parts[1:], ".")
	}
	return parts[len(parts) - 1]
}

// OutputPath returns the path that an event file of the given format will be
// written to. If fname doesn't end with the format's extension a warning is
// logged and DefaultOutputName is used in the same directory.
func OutputPath(fname string, f Format) string {
	ext := f.Extension()
	if FullExtension(fname) == ext { return fname }

	out := filepath.Join(
		filepath.Dir(fname), fmt.Sprintf("%s.%s", DefaultOutputName, ext),
	)
	log.Warnf("Must be a '.%s' file. Using default name: '%s'", ext, out)
	return out
}

// NewWriter returns a Writer which encodes events to w in the given format.
// Closing the Writer flushes it but does not close w.
func NewWriter(w io.Writer, f Format) (event.Writer, error) {
	switch f {
	case Binary:
		bw, err := NewBinaryWriter(w, DefaultOrder)
		if err != nil { return nil, err }
		return bw, nil
	case BSON:
		return NewBSONWriter(w), nil
	case Table:
		return NewTableWriter(w), nil
	}
	return nil, fmt.Errorf("Cannot write events with format %s.", f)
}

// NewReader returns a Reader decoding events from r. Tables cannot be
// streamed and must be opened with OpenEventFile.
func NewReader(r io.Reader, f Format) (event.Reader, error) {
	switch f {
	case Binary:
		br, err := NewBinaryReader(r)
		if err != nil { return nil, err }
		return br, nil
	case BSON:
		return NewBSONReader(r), nil
	}
	return nil, fmt.Errorf("Cannot stream events with format %s.", f)
}

// fileWriter closes the underlying file after the Writer is done with it.
type fileWriter struct {
	event.Writer
	buf *bufio.Writer
	f *os.File
}

func (fw *fileWriter) Close() error {
	if err := fw.Writer.Close(); err != nil {
		fw.f.Close()
		return err
	}
	if err := fw.buf.Flush(); err != nil {
		fw.f.Close()
		return err
	}
	return fw.f.Close()
}

// CreateEventFile creates (or truncates) fname and returns a Writer for it.
func CreateEventFile(fname string, f Format) (event.Writer, error) {
	file, err := os.Create(fname)
	if err != nil { return nil, err }
	buf := bufio.NewWriter(file)
	w, err := NewWriter(buf, f)
	if err != nil {
		file.Close()
		return nil, err
	}
	return &fileWriter{w, buf, file}, nil
}

type fileReader struct {
	event.Reader
	f *os.File
}

func (fr *fileReader) Close() error {
	if err := fr.Reader.Close(); err != nil {
		fr.f.Close()
		return err
	}
	return fr.f.Close()
}

// OpenEventFile opens an event file. The species table is only needed for
// Table files, which don't store species names, and may be nil otherwise.
func OpenEventFile(
	fname string, f Format, species *particle.Species,
) (event.Reader, error) {
	if f == Table {
		if species == nil { species = particle.DefaultSpecies() }
		tr, err := ReadTableEvents(fname, species)
		if err != nil { return nil, err }
		return tr, nil
	}

	file, err := os.Open(fname)
	if err != nil { return nil, err }
	r, err := NewReader(bufio.NewReader(file), f)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("%s: %w", fname, err)
	}
	return &fileReader{r, file}, nil
}

// ReadAll reads every remaining event from r.
func ReadAll(r event.Reader) ([]*event.Event, error) {
	evs := []*event.Event{}
	for {
		ev, err := r.ReadEvent()
		if err == io.EOF {
			return evs, nil
		} else if err != nil {
			return evs, err
		}
		evs = append(evs, ev)
	}
}
