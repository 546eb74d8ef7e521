package io

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExampleConvertFile(t *testing.T) {
	con, err := ParseConvertConfig(ExampleConvertFile)
	require.NoError(t, err)

	assert.Equal(t, "path/to/ttbar.lhe.gz", con.Input)
	assert.Equal(t, "path/to/ttbar_truth.lhet", con.Output)
	assert.True(t, con.Verbose)
	assert.Equal(t, 0, con.MaxEvents)
	assert.Equal(t, 10000, con.ProgressEvery)

	f, err := con.Format()
	require.NoError(t, err)
	assert.Equal(t, Binary, f)

	sts, err := con.StatusList()
	require.NoError(t, err)
	assert.Equal(t, []int32{ -1, 2, 1 }, sts)
}

func TestConvertConfigOverrides(t *testing.T) {
	str := `[Convert]
Input = in.lhe
Output = out.bson
OutputFormat = BSON
Statuses = 1
MaxEvents = 20
Verbose = false`

	con, err := ParseConvertConfig(str)
	require.NoError(t, err)

	f, _ := con.Format()
	assert.Equal(t, BSON, f)
	sts, _ := con.StatusList()
	assert.Equal(t, []int32{ 1 }, sts)
	assert.Equal(t, 20, con.MaxEvents)
	assert.False(t, con.Verbose)
}

func TestConvertConfigErrors(t *testing.T) {
	table := []string{
		"[Convert]\nOutput = out.lhet",
		"[Convert]\nInput = in.lhe",
		"[Convert]\nInput = in.lhe\nOutput = o.lhet\nOutputFormat = ROOT",
		"[Convert]\nInput = in.lhe\nOutput = o.lhet\nStatuses = one",
		"[Convert]\nInput = in.lhe\nOutput = o.lhet\nStatuses = ,",
		"[Convert]\nInput = in.lhe\nOutput = o.lhet\nMaxEvents = -1",
		"[Convert]\nInput = in.lhe\nOutput = o.lhet\nProgressEvery = 0",
		"[Convert]\nInput = in.lhe\nOutput = o.lhet\nUnknownKey = 1",
	}

	for i, str := range table {
		_, err := ParseConvertConfig(str)
		assert.Error(t, err, "%d) %q", i+1, str)
	}
}

func TestExampleAnalyzeFile(t *testing.T) {
	con, err := ParseAnalyzeConfig(ExampleAnalyzeFile)
	require.NoError(t, err)

	assert.Equal(t, "path/to/ttbar_truth.lhet", con.Input)
	assert.Equal(t, "path/to/plot/dir", con.Output)
	assert.True(t, con.Plot)
	assert.Equal(t, 1.0, con.Weight())
}

func TestAnalyzeWeight(t *testing.T) {
	str := `[Analyze]
Input = in.lhet
Plot = false
CrossSection = 3.743
Luminosity = 400
GeneratedEvents = 1000000`

	con, err := ParseAnalyzeConfig(str)
	require.NoError(t, err)
	assert.InDelta(t, 3.743*400/1e6, con.Weight(), 1e-12)
}

func TestAnalyzeConfigErrors(t *testing.T) {
	table := []string{
		"[Analyze]\nOutput = plots",
		"[Analyze]\nInput = in.lhet",
		"[Analyze]\nInput = in.lhet\nOutput = p\nInputFormat = ROOT",
		"[Analyze]\nInput = in.lhet\nOutput = p\nGeneratedEvents = -5",
	}

	for i, str := range table {
		_, err := ParseAnalyzeConfig(str)
		assert.Error(t, err, "%d) %q", i+1, str)
	}
}

func TestSharedConfigSpecies(t *testing.T) {
	con := SharedConfig{}
	s, err := con.Species()
	require.NoError(t, err)
	_, _, ok := s.Lookup(6)
	assert.True(t, ok)

	fname := filepath.Join(t.TempDir(), "species.yaml")
	data := "species:\n  - name: Zprime\n    id: 32\n    charge3: 0\n"
	require.NoError(t, os.WriteFile(fname, []byte(data), 0644))

	con.SpeciesFile = fname
	s, err = con.Species()
	require.NoError(t, err)
	name, _, ok := s.Lookup(32)
	assert.True(t, ok)
	assert.Equal(t, "Zprime", name)

	con.SpeciesFile = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = con.Species()
	assert.Error(t, err)
}

func TestReadConvertConfig(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "convert.cfg")
	require.NoError(t, os.WriteFile(fname, []byte(ExampleConvertFile), 0644))

	con, err := ReadConvertConfig(fname)
	require.NoError(t, err)
	assert.Equal(t, "path/to/ttbar.lhe.gz", con.Input)

	_, err = ReadConvertConfig(filepath.Join(t.TempDir(), "missing.cfg"))
	assert.Error(t, err)
}
