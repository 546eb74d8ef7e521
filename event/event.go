/*package event defines a single generator event after its particles have been
split into species, and the interfaces used to stream events to and from
storage.
*/
package event

import (
	"sort"

	"github.com/phil-mansfield/lhetruth/particle"
)

// Event is the set of particles kept from one generator event. Each species
// slice is sorted from highest to lowest PT.
type Event struct {
	Number  int64
	Weight  float64
	Species map[string][]particle.Particle
}

// New returns an empty event with the given number and weight.
func New(number int64, weight float64) *Event {
	return &Event{
		Number: number, Weight: weight,
		Species: map[string][]particle.Particle{},
	}
}

// Add appends p to the given species.
func (ev *Event) Add(species string, p *particle.Particle) {
	ev.Species[species] = append(ev.Species[species], *p)
}

// Sort orders every species by descending PT.
func (ev *Event) Sort() {
	for _, ps := range ev.Species { particle.SortByPT(ps) }
}

// Names returns the species present in the event in alphabetical order.
func (ev *Event) Names() []string {
	names := make([]string, 0, len(ev.Species))
	for name := range ev.Species { names = append(names, name) }
	sort.Strings(names)
	return names
}

// Get returns the particles of a species, or nil if it has none.
func (ev *Event) Get(species string) []particle.Particle {
	return ev.Species[species]
}

// Len returns the total number of particles in the event.
func (ev *Event) Len() int {
	n := 0
	for _, ps := range ev.Species { n += len(ps) }
	return n
}

// Writer is implemented by every event file format.
type Writer interface {
	WriteEvent(ev *Event) error
	Close() error
}

// Reader is implemented by every event file format. ReadEvent returns io.EOF
// once all events have been read.
type Reader interface {
	ReadEvent() (*Event, error)
	Close() error
}
