package models

// Minutia type codes as emitted by the minutia extraction stage.
const (
	// RidgeEnding marks a ridge termination.
	RidgeEnding = 0

	// Bifurcation marks a ridge split. Feature vectors flag a point as a
	// bifurcation when its code equals this value unless configured otherwise.
	Bifurcation = 1
)

// Point is a pixel position in the minutia extractor's (x, y) order: X is
// the first array index (the row) and Y the second (the column). Bearings
// between points are atan2(ΔY, ΔX) in the same order.
type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Minutia represents a single ridge ending or bifurcation
type Minutia struct {
	Point `yaml:",inline"`

	// Type is the raw type code reported by the extractor
	Type int `yaml:"type"`
}

// RidgeNeighbor is one reference point reached by walking along the ridges
// from a minutia, together with the number of ridges crossed on the way.
type RidgeNeighbor struct {
	Point `yaml:",inline"`

	Type  int `yaml:"type"`
	Count int `yaml:"count"`
}

// RidgeCount holds the two nearest ridge-count reference points (ki, kj)
// for one minutia. It is produced by the minutia extraction stage.
type RidgeCount struct {
	I RidgeNeighbor `yaml:"i"`
	J RidgeNeighbor `yaml:"j"`
}

// FeatureVector describes a minutia relative to its two ridge-count
// reference points ki and kj.
type FeatureVector struct {
	// Dki and Dkj are the Euclidean distances from the minutia to ki and kj
	Dki float64
	Dkj float64

	// Fiki and Fikj are the angles between the bearing from ki (kj) to the
	// minutia and the ridge orientation at the minutia
	Fiki float64
	Fikj float64

	// Phiki and Phikj are the orientation differences between the minutia
	// and ki (kj)
	Phiki float64
	Phikj float64

	// Nki and Nkj are the ridge counts carried over from the RidgeCount
	Nki int
	Nkj int

	// Type, TypeI and TypeJ are 1 for bifurcations and 0 otherwise
	Type  int
	TypeI int
	TypeJ int
}

// FeatureLen is the number of values in a FeatureVector
const FeatureLen = 11

// Values returns the vector in its canonical order:
// dki, dkj, fiki, fikj, phiki, phikj, nki, nkj, type, typei, typej.
func (v FeatureVector) Values() [FeatureLen]float64 {
	return [FeatureLen]float64{
		v.Dki, v.Dkj,
		v.Fiki, v.Fikj,
		v.Phiki, v.Phikj,
		float64(v.Nki), float64(v.Nkj),
		float64(v.Type), float64(v.TypeI), float64(v.TypeJ),
	}
}
