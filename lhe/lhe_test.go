package lhe

import (
	"bytes"
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phil-mansfield/lhetruth/event"
	"github.com/phil-mansfield/lhetruth/particle"
)

// A single g g -> t t~ -> W+ b W- b~ event and a second g g -> t t~ event.
const ttbarLHE = `<LesHouchesEvents version="1.0">
<header>
</header>
<init>
 2212 2212 6.500000e+03 6.500000e+03 0 0 247000 247000 -4 1
 5.060000e+02 1.200000e+00 5.060000e+02 1
</init>
<event>
 8 1 +5.0600000e+02 1.7250000e+02 7.5467711e-03 1.0800000e-01
       21 -1    0    0  501  502 +0.0000000000e+00 +0.0000000000e+00 +8.0000000000e+02 8.0000000000e+02 0.0000000000e+00 0.0000e+00 -1.0000e+00
       21 -1    0    0  503  501 -0.0000000000e+00 -0.0000000000e+00 -2.0000000000e+02 2.0000000000e+02 0.0000000000e+00 0.0000e+00 1.0000e+00
        6  2    1    2  503    0 +3.0000000000e+02 +4.0000000000e+02 +5.0000000000e+02 7.2826156e+02 1.7250000000e+02 0.0000e+00 0.0000e+00
       -6  2    1    2    0  502 -3.0000000000e+02 -4.0000000000e+02 +1.0000000000e+02 2.7173844e+02 1.7250000000e+02 0.0000e+00 0.0000e+00
       24  2    3    3    0    0 +2.0000000000e+02 +2.5000000000e+02 +3.0000000000e+02 4.6900000e+02 8.0400000000e+01 0.0000e+00 0.0000e+00
        5  1    3    3  503    0 +1.0000000000e+02 +1.5000000000e+02 +2.0000000000e+02 2.5900000e+02 4.7000000000e+00 0.0000e+00 -1.0000e+00
      -24  2    4    4    0    0 -2.0000000000e+02 -2.5000000000e+02 +5.0000000000e+01 3.3000000e+02 8.0400000000e+01 0.0000e+00 0.0000e+00
       -5  1    4    4    0  502 -1.0000000000e+02 -1.5000000000e+02 +5.0000000000e+01 1.9000000e+02 4.7000000000e+00 0.0000e+00 1.0000e+00
</event>
<event>
 4 1 +5.0600000e+02 1.7250000e+02 7.5467711e-03 1.0800000e-01
       21 -1    0    0  501  502 +0.0000000000e+00 +0.0000000000e+00 +3.0000000000e+02 3.0000000000e+02 0.0000000000e+00 0.0000e+00 -1.0000e+00
       21 -1    0    0  502  501 -0.0000000000e+00 -0.0000000000e+00 -3.0000000000e+02 3.0000000000e+02 0.0000000000e+00 0.0000e+00 1.0000e+00
        6  1    1    2  501    0 +1.0000000000e+01 +0.0000000000e+00 +0.0000000000e+00 3.0000000e+02 1.7250000000e+02 0.0000e+00 1.0000e+00
       -6  1    1    2    0  502 -1.0000000000e+01 -0.0000000000e+00 -0.0000000000e+00 3.0000000e+02 1.7250000000e+02 0.0000e+00 -1.0000e+00
</event>
</LesHouchesEvents>
`

type memWriter struct {
	evs []*event.Event
	closed bool
}

func (w *memWriter) WriteEvent(ev *event.Event) error {
	w.evs = append(w.evs, ev)
	return nil
}

func (w *memWriter) Close() error {
	w.closed = true
	return nil
}

func allStatuses() []int32 {
	return []int32{ particle.Initial, particle.Intermediate, particle.Final }
}

func TestConvert(t *testing.T) {
	c := NewConverter(particle.DefaultSpecies(), allStatuses())
	w := &memWriter{}
	n, err := c.Convert(context.Background(), strings.NewReader(ttbarLHE), w)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Len(t, w.evs, 2)

	ev := w.evs[0]
	assert.Equal(t, int64(1), ev.Number)
	assert.Equal(t, 506.0, ev.Weight)
	assert.Equal(t, []string{ "Bottom", "Gluon", "Top", "W" }, ev.Names())
	assert.Equal(t, 8, ev.Len())

	// Tops are sorted by PT: both have PT 500, so input order is kept.
	tops := ev.Get("Top")
	require.Len(t, tops, 2)
	assert.Equal(t, int32(6), tops[0].PdgID)
	assert.Equal(t, int32(21), tops[0].PdgIDMother1)
	assert.Equal(t, int32(21), tops[0].PdgIDMother2)
	assert.Equal(t, int32(2), tops[0].Charge)
	assert.Equal(t, int32(503), tops[0].Color1)
	assert.InDelta(t, 500, tops[0].PT, 1e-3)
	assert.Equal(t, float32(172.5), tops[0].Mass)

	// b and b~ have the same PT too.
	bs := ev.Get("Bottom")
	require.Len(t, bs, 2)
	assert.Equal(t, int32(6), bs[0].PdgIDMother1)
	assert.Equal(t, int32(-6), bs[1].PdgIDMother1)
	assert.Equal(t, int32(3), bs[0].Mother1)
	assert.Equal(t, int32(-1), bs[0].Charge)
	assert.Equal(t, int32(-1), bs[0].Helicity)
	assert.Equal(t, particle.Final, bs[0].Status)

	ws := ev.Get("W")
	require.Len(t, ws, 2)
	assert.Equal(t, int32(3), ws[0].Charge)
	assert.Equal(t, float32(80.4), ws[0].Mass)

	gluons := ev.Get("Gluon")
	require.Len(t, gluons, 2)
	assert.Equal(t, float32(particle.MaxEta), gluons[0].Eta)
	assert.Equal(t, float32(-particle.MaxEta), gluons[1].Eta)
	assert.Equal(t, int32(0), gluons[0].PdgIDMother1)

	ev = w.evs[1]
	assert.Equal(t, int64(2), ev.Number)
	tops = ev.Get("Top")
	require.Len(t, tops, 2)
	assert.InDelta(t, 0, tops[0].Eta, 1e-6)
	assert.InDelta(t, 0, tops[0].Phi, 1e-6)
}

func TestConvertStatusFilter(t *testing.T) {
	c := NewConverter(particle.DefaultSpecies(), []int32{ particle.Final })
	w := &memWriter{}
	_, err := c.Convert(context.Background(), strings.NewReader(ttbarLHE), w)
	require.NoError(t, err)

	assert.Equal(t, []string{ "Bottom" }, w.evs[0].Names())
	assert.Equal(t, []string{ "Top" }, w.evs[1].Names())

	// Mother lookups still see the dropped intermediate particles.
	b := w.evs[0].Get("Bottom")[0]
	assert.Equal(t, int32(6), b.PdgIDMother1)
}

func TestConvertMaxEvents(t *testing.T) {
	c := NewConverter(particle.DefaultSpecies(), allStatuses())
	c.MaxEvents = 1
	w := &memWriter{}
	n, err := c.Convert(context.Background(), strings.NewReader(ttbarLHE), w)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, w.evs, 1)
}

func TestConvertCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewConverter(particle.DefaultSpecies(), allStatuses())
	w := &memWriter{}
	n, err := c.Convert(ctx, strings.NewReader(ttbarLHE), w)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, n)
}

func TestConvertEntries(t *testing.T) {
	species := particle.NewSpecies()
	species.Define("Lepton", 11, -3)

	es := []Entry{
		{ ID: 23, Status: 2 },
		{ ID: 11, Status: 1, Mother1: 1, Mother2: 7, P: [5]float64{ 1, 1, 0, 2, 0.000511 } },
		{ ID: 11, Status: 1, Mother1: 1, P: [5]float64{ 3, 4, 0, 5, 0.000511 }, Spin: 1.9 },
		{ ID: 13, Status: 1, Mother1: 1 },
	}

	c := NewConverter(species, []int32{ particle.Final })
	ev := c.ConvertEntries(9, 2.5, es)

	assert.Equal(t, int64(9), ev.Number)
	assert.Equal(t, 2.5, ev.Weight)
	ls := ev.Get("Lepton")
	require.Len(t, ls, 2)

	assert.InDelta(t, 5, ls[0].PT, 1e-6)
	assert.Equal(t, int32(1), ls[0].Helicity)
	assert.Equal(t, int32(23), ls[0].PdgIDMother1)
	assert.Equal(t, int32(0), ls[0].PdgIDMother2)

	// Out of range mother index.
	assert.Equal(t, int32(7), ls[1].Mother2)
	assert.Equal(t, int32(0), ls[1].PdgIDMother2)
}

func TestStatusNames(t *testing.T) {
	assert.Equal(t, "Initial, Intermediate and Final", statusNames(allStatuses()))
	assert.Equal(t, "Final", statusNames([]int32{ particle.Final }))
	assert.Equal(t, "Final and status 4", statusNames([]int32{ 1, 4 }))
}

func TestConvertFileGzip(t *testing.T) {
	dir := t.TempDir()

	buf := &bytes.Buffer{}
	zw := gzip.NewWriter(buf)
	_, err := zw.Write([]byte(ttbarLHE))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	gzName := filepath.Join(dir, "ttbar.lhe.gz")
	require.NoError(t, os.WriteFile(gzName, buf.Bytes(), 0644))
	plainName := filepath.Join(dir, "ttbar.lhe")
	require.NoError(t, os.WriteFile(plainName, []byte(ttbarLHE), 0644))

	for _, fname := range []string{ gzName, plainName } {
		c := NewConverter(particle.DefaultSpecies(), allStatuses())
		w := &memWriter{}
		n, err := c.ConvertFile(context.Background(), fname, w)
		require.NoError(t, err, fname)
		assert.Equal(t, 2, n, fname)
	}

	c := NewConverter(particle.DefaultSpecies(), allStatuses())
	_, err = c.ConvertFile(
		context.Background(), filepath.Join(dir, "missing.lhe"), &memWriter{},
	)
	assert.Error(t, err)
}
