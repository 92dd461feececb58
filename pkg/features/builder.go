// Package features builds rotation-invariant feature vectors that describe
// each minutia relative to two ridge-count reference points.
package features

import (
	"errors"
	"fmt"
	"math"

	"ridgefeatures/internal/models"
	"ridgefeatures/pkg/axial"
)

var (
	// ErrNoOrientation is returned when a point falls outside the
	// orientation field or on a cell without an orientation.
	ErrNoOrientation = errors.New("no orientation at point")

	// ErrLengthMismatch is returned by GetFeatures when the minutia and
	// ridge-count sequences differ in length.
	ErrLengthMismatch = errors.New("minutiae and ridge counts differ in length")
)

// Lookup returns the ridge orientation at a pixel. ok is false where the
// orientation is undefined. *field.OrientationField satisfies it.
type Lookup interface {
	Lookup(row, col int) (theta float64, ok bool)
}

// orientationAt reads the orientation under p, truncating the coordinates
// to the containing pixel. X selects the row and Y the column.
func orientationAt(orient Lookup, p models.Point) (float64, error) {
	// Truncation would fold (-1, 0) onto pixel 0
	if p.X < 0 || p.Y < 0 {
		return 0, fmt.Errorf("%w: (%g, %g)", ErrNoOrientation, p.X, p.Y)
	}
	theta, ok := orient.Lookup(int(p.X), int(p.Y))
	if !ok {
		return 0, fmt.Errorf("%w: (%g, %g)", ErrNoOrientation, p.X, p.Y)
	}
	return theta, nil
}

func isBifurcation(code, bifurcation int) int {
	if code == bifurcation {
		return 1
	}
	return 0
}

// Build computes the feature vector of p from its reference points rc.
// Angular differences are wrapped to (−π/2, π/2] and distances are
// Euclidean. Type flags are 1 when the type code equals bifurcation.
func Build(p models.Minutia, rc models.RidgeCount, orient Lookup, bifurcation int) (models.FeatureVector, error) {
	theta, err := orientationAt(orient, p.Point)
	if err != nil {
		return models.FeatureVector{}, fmt.Errorf("minutia: %w", err)
	}
	thetaI, err := orientationAt(orient, rc.I.Point)
	if err != nil {
		return models.FeatureVector{}, fmt.Errorf("reference ki: %w", err)
	}
	thetaJ, err := orientationAt(orient, rc.J.Point)
	if err != nil {
		return models.FeatureVector{}, fmt.Errorf("reference kj: %w", err)
	}

	return models.FeatureVector{
		Dki:   distance(rc.I.Point, p.Point),
		Dkj:   distance(rc.J.Point, p.Point),
		Fiki:  axial.Diff(bearing(rc.I.Point, p.Point), theta),
		Fikj:  axial.Diff(bearing(rc.J.Point, p.Point), theta),
		Phiki: axial.Diff(theta, thetaI),
		Phikj: axial.Diff(theta, thetaJ),
		Nki:   rc.I.Count,
		Nkj:   rc.J.Count,
		Type:  isBifurcation(p.Type, bifurcation),
		TypeI: isBifurcation(rc.I.Type, bifurcation),
		TypeJ: isBifurcation(rc.J.Type, bifurcation),
	}, nil
}

func distance(a, b models.Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// bearing is the direction of travel from a to b.
func bearing(a, b models.Point) float64 {
	return math.Atan2(b.Y-a.Y, b.X-a.X)
}
