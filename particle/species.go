package particle

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/phil-mansfield/lhetruth/logs"
)

var log = logs.NamedLogger("particle")

// Generator status codes which the converter knows how to name.
const (
	Initial      int32 = -1
	Final        int32 = 1
	Intermediate int32 = 2
)

// StatusName returns a human-readable name for a status code, or "" if the
// code isn't one of Initial, Intermediate, or Final.
func StatusName(status int32) string {
	switch status {
	case Initial:
		return "Initial"
	case Intermediate:
		return "Intermediate"
	case Final:
		return "Final"
	}
	return ""
}

type speciesEntry struct {
	name    string
	charge3 int32
}

// Species groups PDG codes into named species (e.g. both 11 and -11 are
// "Electron") and records the charge of each code in units of e/3.
type Species struct {
	names   []string
	entries map[int32]speciesEntry
}

// NewSpecies returns an empty Species table.
func NewSpecies() *Species {
	return &Species{entries: map[int32]speciesEntry{}}
}

// DefaultSpecies returns the Standard Model table used when no species file
// is given.
func DefaultSpecies() *Species {
	s := NewSpecies()
	for _, def := range defaultDefinitions {
		s.define(def.Name, def.ID, def.Charge3)
	}
	return s
}

// Define adds the PDG code pid to the species name with the given charge,
// creating the species if it doesn't exist yet. If pid already belongs to a
// species it is moved to name.
func (s *Species) Define(name string, pid, charge3 int32) {
	if !s.Has(name) {
		log.Infof("Particle class %s added.", name)
	}
	s.define(name, pid, charge3)
	log.Infof("Class %s: pdgID of %d with Q = %d/3 added.", name, pid, charge3)
}

func (s *Species) define(name string, pid, charge3 int32) {
	if !s.Has(name) { s.names = append(s.names, name) }
	s.entries[pid] = speciesEntry{name, charge3}
}

// Has returns true if a species with the given name has been defined.
func (s *Species) Has(name string) bool {
	for _, n := range s.names {
		if n == name { return true }
	}
	return false
}

// Lookup returns the species name and charge of a PDG code. ok is false if
// the code has not been defined.
func (s *Species) Lookup(pid int32) (name string, charge3 int32, ok bool) {
	e, ok := s.entries[pid]
	return e.name, e.charge3, ok
}

// Names returns the species names in the order they were defined.
func (s *Species) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Codes returns the number of PDG codes in the table.
func (s *Species) Codes() int { return len(s.entries) }

// Definition is a single entry of a species file.
type Definition struct {
	Name    string `yaml:"name"`
	ID      int32  `yaml:"id"`
	Charge3 int32  `yaml:"charge3"`
}

type speciesFile struct {
	Species []Definition `yaml:"species"`
}

// ExampleSpeciesFile is a YAML species file that adds a heavy neutral lepton.
const ExampleSpeciesFile = `# Additional particle species. Each entry adds one PDG code to the named
# species, creating the species if needed. Charges are in units of e/3.
species:
  - name: HeavyNeutrino
    id: 9900012
    charge3: 0
  - name: Wprime
    id: 34
    charge3: 3
  - name: Wprime
    id: -34
    charge3: -3`

// ParseSpecies reads YAML species definitions and applies them to s.
func (s *Species) ParseSpecies(data []byte) error {
	sf := speciesFile{}
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return fmt.Errorf("yaml unmarshal: %w", err)
	}

	for i, def := range sf.Species {
		if def.Name == "" {
			return fmt.Errorf("species entry %d has no name", i+1)
		} else if def.ID == 0 {
			return fmt.Errorf("species entry %d (%s) has no PDG id", i+1, def.Name)
		}
		s.Define(def.Name, def.ID, def.Charge3)
	}
	return nil
}

// ReadSpeciesFile applies the definitions in a YAML species file to s.
func (s *Species) ReadSpeciesFile(fname string) error {
	data, err := os.ReadFile(fname)
	if err != nil { return fmt.Errorf("read %s: %w", fname, err) }
	if err := s.ParseSpecies(data); err != nil {
		return fmt.Errorf("species file %s: %w", fname, err)
	}
	return nil
}

var defaultDefinitions = []Definition{
	{"Electron", 11, -3}, {"Electron", -11, 3},
	{"Muon", 13, -3}, {"Muon", -13, 3},
	{"Tau", 15, -3}, {"Tau", -15, 3},

	{"Neutrino", 12, 0}, {"Neutrino", 14, 0}, {"Neutrino", 16, 0},
	{"Neutrino", -12, 0}, {"Neutrino", -14, 0}, {"Neutrino", -16, 0},

	{"Top", 6, 2}, {"Top", -6, -2},
	{"Bottom", 5, -1}, {"Bottom", -5, 1},
	{"Charm", 4, 2}, {"Charm", -4, -2},
	{"Strange", 3, -1}, {"Strange", -3, 1},
	{"Up", 2, 2}, {"Up", -2, -2},
	{"Down", 1, -1}, {"Down", -1, 1},

	{"Gluon", 21, 0},
	{"Gamma", 22, 0},
	{"Z", 23, 0},
	{"W", 24, 3}, {"W", -24, -3},
	{"H", 25, 0},
}
