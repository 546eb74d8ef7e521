package io

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/gcfg.v1"

	"github.com/phil-mansfield/lhetruth/particle"
)

const (
	ExampleConvertFile = `[Convert]

#######################
# Required Parameters #
#######################

# Les Houches Event file to convert. Files ending in .gz are decompressed
# on the fly.
Input = path/to/ttbar.lhe.gz
# Event file which will be written. If the extension doesn't match
# OutputFormat, lhe_analysis.<ext> is written to the same directory instead.
Output = path/to/ttbar_truth.lhet

#######################
# Optional Parameters #
#######################

# One of [ Binary | BSON | Table ]. Binary files use the .lhet extension,
# BSON files use .bson, and Table files use .txt. Default is Binary.
# OutputFormat = Binary

# Comma-separated list of the generator status codes which are kept:
# -1 is initial state, 2 is intermediate, and 1 is final state. Default is
# all three.
# Statuses = -1, 2, 1

# YAML file defining additional species (see -ExampleConfig Species).
# Particles whose pdgID isn't in the species table are skipped.
# SpeciesFile = path/to/species.yaml

# Stop after this many events. Default is to convert the whole file.
# MaxEvents = 10000

# Log progress every ProgressEvery events. Default is 10000.
# ProgressEvery = 10000

# Verbose = false will only print warnings and errors.
# Verbose = true

# Output files which are useful for profiling and debugging. Generally, there
# isn't a reason to use these unless something goes wrong.
# ProfileFile = prof.out
# LogFile = log.out`

	ExampleAnalyzeFile = `[Analyze]

#######################
# Required Parameters #
#######################

# Event file written by a Convert run.
Input = path/to/ttbar_truth.lhet
# Directory which plots and the top_analysis.yoda histogram file will be
# written to. Only required if Plot = true.
Output = path/to/plot/dir

#######################
# Optional Parameters #
#######################

# Format of the input file. One of [ Binary | BSON | Table ].
# InputFormat = Binary

# Each event is weighted by CrossSection * Luminosity / GeneratedEvents. The
# units are up to you. If GeneratedEvents isn't set, every event has weight 1.
# CrossSection = 3.743
# Luminosity = 400
# GeneratedEvents = 1000000

# Only needed for Table input files, which don't record species names.
# SpeciesFile = path/to/species.yaml

# Plot = false skips the plots and only logs histogram summaries.
# Plot = true

# Verbose = true

# ProfileFile = prof.out
# LogFile = log.out`
)

type SharedConfig struct {
	// Required
	Input, Output string
	// Optional
	LogFile, ProfileFile string
	SpeciesFile string
	Verbose bool
}

func (con *SharedConfig) ValidInput() bool {
	return con.Input != ""
}
func (con *SharedConfig) ValidOutput() bool {
	return con.Output != ""
}
func (con *SharedConfig) ValidLogFile() bool {
	return con.LogFile != ""
}
func (con *SharedConfig) ValidProfileFile() bool {
	return con.ProfileFile != ""
}
func (con *SharedConfig) ValidSpeciesFile() bool {
	return con.SpeciesFile != ""
}

// Species returns the default species table extended by SpeciesFile, if one
// was given.
func (con *SharedConfig) Species() (*particle.Species, error) {
	s := particle.DefaultSpecies()
	if con.ValidSpeciesFile() {
		if err := s.ReadSpeciesFile(con.SpeciesFile); err != nil {
			return nil, err
		}
	}
	return s, nil
}

type ConvertConfig struct {
	SharedConfig
	// Optional
	OutputFormat string
	Statuses string
	MaxEvents int
	ProgressEvery int
}

type ConvertWrapper struct {
	Convert ConvertConfig
}

func DefaultConvertWrapper() *ConvertWrapper {
	con := ConvertConfig{}
	con.OutputFormat = "Binary"
	con.Statuses = "-1, 2, 1"
	con.ProgressEvery = 10000
	con.Verbose = true
	return &ConvertWrapper{con}
}

func (con *ConvertConfig) ValidOutputFormat() bool {
	_, err := ParseFormat(con.OutputFormat)
	return err == nil
}
func (con *ConvertConfig) ValidStatuses() bool {
	sts, err := con.StatusList()
	return err == nil && len(sts) > 0
}
func (con *ConvertConfig) ValidMaxEvents() bool {
	return con.MaxEvents >= 0
}
func (con *ConvertConfig) ValidProgressEvery() bool {
	return con.ProgressEvery > 0
}

// Format returns the parsed OutputFormat.
func (con *ConvertConfig) Format() (Format, error) {
	return ParseFormat(con.OutputFormat)
}

// StatusList parses Statuses.
func (con *ConvertConfig) StatusList() ([]int32, error) {
	return ParseStatuses(con.Statuses)
}

// ParseStatuses parses a comma-separated list of status codes.
func ParseStatuses(str string) ([]int32, error) {
	sts := []int32{}
	for _, tok := range strings.Split(str, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" { continue }
		n, err := strconv.ParseInt(tok, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("Invalid status code '%s'.", tok)
		}
		sts = append(sts, int32(n))
	}
	return sts, nil
}

// Check returns an error describing the first invalid value in con.
func (con *ConvertConfig) Check() error {
	if !con.ValidInput() {
		return fmt.Errorf("Invalid/non-existent 'Input' value.")
	} else if !con.ValidOutput() {
		return fmt.Errorf("Invalid/non-existent 'Output' value.")
	} else if !con.ValidOutputFormat() {
		_, err := con.Format()
		return err
	} else if !con.ValidStatuses() {
		return fmt.Errorf("Invalid/empty 'Statuses' value, '%s'.", con.Statuses)
	} else if !con.ValidMaxEvents() {
		return fmt.Errorf("'MaxEvents' must be non-negative.")
	} else if !con.ValidProgressEvery() {
		return fmt.Errorf("'ProgressEvery' must be positive.")
	}
	return nil
}

type AnalyzeConfig struct {
	SharedConfig
	// Optional
	InputFormat string
	CrossSection, Luminosity float64
	GeneratedEvents int
	Plot bool
}

type AnalyzeWrapper struct {
	Analyze AnalyzeConfig
}

func DefaultAnalyzeWrapper() *AnalyzeWrapper {
	con := AnalyzeConfig{}
	con.InputFormat = "Binary"
	con.CrossSection = 1
	con.Luminosity = 1
	con.Plot = true
	con.Verbose = true
	return &AnalyzeWrapper{con}
}

func (con *AnalyzeConfig) ValidInputFormat() bool {
	_, err := ParseFormat(con.InputFormat)
	return err == nil
}
func (con *AnalyzeConfig) ValidGeneratedEvents() bool {
	return con.GeneratedEvents >= 0
}

// Format returns the parsed InputFormat.
func (con *AnalyzeConfig) Format() (Format, error) {
	return ParseFormat(con.InputFormat)
}

// Weight returns the weight given to each analyzed event.
func (con *AnalyzeConfig) Weight() float64 {
	if con.GeneratedEvents == 0 { return 1 }
	return con.CrossSection * con.Luminosity / float64(con.GeneratedEvents)
}

// Check returns an error describing the first invalid value in con.
func (con *AnalyzeConfig) Check() error {
	if !con.ValidInput() {
		return fmt.Errorf("Invalid/non-existent 'Input' value.")
	} else if con.Plot && !con.ValidOutput() {
		return fmt.Errorf("Invalid/non-existent 'Output' value.")
	} else if !con.ValidInputFormat() {
		_, err := con.Format()
		return err
	} else if !con.ValidGeneratedEvents() {
		return fmt.Errorf("'GeneratedEvents' must be non-negative.")
	}
	return nil
}

// ReadConvertConfig reads a [Convert] config file on top of the defaults and
// checks it.
func ReadConvertConfig(fname string) (*ConvertConfig, error) {
	wrap := DefaultConvertWrapper()
	if err := gcfg.ReadFileInto(wrap, fname); err != nil { return nil, err }
	if err := wrap.Convert.Check(); err != nil { return nil, err }
	return &wrap.Convert, nil
}

// ParseConvertConfig is ReadConvertConfig for a config held in memory.
func ParseConvertConfig(str string) (*ConvertConfig, error) {
	wrap := DefaultConvertWrapper()
	if err := gcfg.ReadStringInto(wrap, str); err != nil { return nil, err }
	if err := wrap.Convert.Check(); err != nil { return nil, err }
	return &wrap.Convert, nil
}

// ReadAnalyzeConfig reads an [Analyze] config file on top of the defaults
// and checks it.
func ReadAnalyzeConfig(fname string) (*AnalyzeConfig, error) {
	wrap := DefaultAnalyzeWrapper()
	if err := gcfg.ReadFileInto(wrap, fname); err != nil { return nil, err }
	if err := wrap.Analyze.Check(); err != nil { return nil, err }
	return &wrap.Analyze, nil
}

// ParseAnalyzeConfig is ReadAnalyzeConfig for a config held in memory.
func ParseAnalyzeConfig(str string) (*AnalyzeConfig, error) {
	wrap := DefaultAnalyzeWrapper()
	if err := gcfg.ReadStringInto(wrap, str); err != nil { return nil, err }
	if err := wrap.Analyze.Check(); err != nil { return nil, err }
	return &wrap.Analyze, nil
}
