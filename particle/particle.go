/*package particle contains the record used to store a single generator-level
particle, along with the tables needed to sort particles into species.
*/
package particle

import (
	"math"
	"sort"

	"go-hep.org/x/hep/fmom"
)

const (
	// MaxEta is the pseudorapidity assigned to particles with no transverse
	// momentum. It matches the value ROOT's TVector3 uses for the same case.
	MaxEta = 10e10
)

// Particle is one particle from a single event. The exported fields are laid
// out in the order used by the event files in the io package.
//
// Mother1 and Mother2 are indices into the full particle list of the event
// the particle was read from. Nothing here checks that they are valid.
type Particle struct {
	PdgID, PdgIDMother1, PdgIDMother2 int32
	Status int32

	Px, Py, Pz, Energy, Mass float32
	PT, Eta, Phi float32 // Only set through SetP4.

	Charge int32 // In units of e/3.
	Mother1, Mother2 int32
	Color1, Color2 int32

	Lifetime float32
	Helicity int32

	p4 fmom.PxPyPzE
}

// New returns a Particle with every field set to zero.
func New() *Particle {
	return &Particle{}
}

// SetP4 sets the Cartesian four-momentum of p and recomputes PT, Eta, and Phi.
// Mass is not changed.
func (p *Particle) SetP4(px, py, pz, e float32) {
	p.Px, p.Py, p.Pz, p.Energy = px, py, pz, e
	p.p4 = fmom.NewPxPyPzE(float64(px), float64(py), float64(pz), float64(e))

	// fmom's Pt() takes the sign of E. PT here never does.
	x, y, z := p.p4.Px(), p.p4.Py(), p.p4.Pz()
	p.PT = float32(math.Hypot(x, y))
	p.Eta = float32(pseudoRapidity(x, y, z))
	p.Phi = float32(azimuth(x, y))
}

// P4 returns a copy of the four-momentum of p.
func (p *Particle) P4() fmom.PxPyPzE {
	return p.p4
}

func pseudoRapidity(px, py, pz float64) float64 {
	pt := math.Hypot(px, py)
	if pt == 0 {
		switch {
		case pz > 0:
			return MaxEta
		case pz < 0:
			return -MaxEta
		default:
			return 0
		}
	}
	return math.Asinh(pz / pt)
}

func azimuth(px, py float64) float64 {
	if px == 0 && py == 0 { return 0 }
	return math.Atan2(py, px)
}

// SortByPT sorts ps from highest to lowest PT. Particles with equal PT keep
// their relative order.
func SortByPT(ps []Particle) {
	sort.SliceStable(ps, func(i, j int) bool { return ps[i].PT > ps[j].PT })
}
