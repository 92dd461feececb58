package frequency

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// plateauTolerance is the relative height difference, as a fraction of the
// profile's range, below which neighbouring samples belong to one crest.
const plateauTolerance = 1e-9

// crest is a maximal run of equal samples profile[start..end].
type crest struct {
	start, end int
}

// FindPeaks returns the sub-sample positions of the ridge crests in profile,
// in increasing order.
//
// A crest is a run of equal samples, usually a single one, that is strictly
// higher than every other sample within width/2 of the run. Crests whose
// topographic prominence is below minProminence are discarded as noise.
// Interior crests are placed at the vertex of the parabola through the
// sample and its neighbours, or at the centre of a flat run.
//
// A crest touching either end of the profile is only kept when the profile
// also holds an interior crest and the end crest is no more than
// minProminence lower than the tallest one. Its position is mirrored from
// the nearest interior crest about the trough between them and clamped to
// at most one sample past the end.
func FindPeaks(profile []float64, width int, minProminence float64) []float64 {
	n := len(profile)
	if n < 3 {
		return nil
	}
	lo, hi := floats.Min(profile), floats.Max(profile)
	if hi == lo {
		return nil
	}

	half := max(width/2, 1)
	var (
		peaks []float64
		ends  []crest
		top   = math.Inf(-1)
	)
	for _, c := range crests(profile, plateauTolerance*(hi-lo)) {
		if !isLocalMax(profile, c, half) || prominence(profile, c) < minProminence {
			continue
		}
		if c.start == 0 || c.end == n-1 {
			ends = append(ends, c)
			continue
		}
		peaks = append(peaks, c.position(profile))
		top = math.Max(top, profile[c.start])
	}
	if len(peaks) == 0 {
		return nil
	}

	for _, c := range ends {
		if profile[c.start] < top-minProminence {
			continue
		}
		if c.start == 0 {
			first := peaks[0]
			t := trough(profile, c.end+1, int(math.Ceil(first))-1)
			pos := math.Min(math.Max(2*t-first, -1), float64(c.end)/2)
			peaks = append([]float64{pos}, peaks...)
		} else {
			last := peaks[len(peaks)-1]
			t := trough(profile, int(math.Floor(last))+1, c.start-1)
			pos := math.Max(math.Min(2*t-last, float64(n)), float64(c.start+n-1)/2)
			peaks = append(peaks, pos)
		}
	}
	return peaks
}

// crests splits x into runs of samples that differ by at most tol from the
// first sample of the run. A run covering the whole profile is dropped.
func crests(x []float64, tol float64) []crest {
	var runs []crest
	for i := 0; i < len(x); {
		j := i
		for j+1 < len(x) && math.Abs(x[j+1]-x[i]) <= tol {
			j++
		}
		if i > 0 || j < len(x)-1 {
			runs = append(runs, crest{start: i, end: j})
		}
		i = j + 1
	}
	return runs
}

func isLocalMax(x []float64, c crest, half int) bool {
	for j := max(c.start-half, 0); j <= min(c.end+half, len(x)-1); j++ {
		if (j < c.start || j > c.end) && x[j] >= x[c.start] {
			return false
		}
	}
	return true
}

// prominence is the height of c above the higher of the two lowest points
// reached walking outwards until a higher sample. A side that runs off the
// profile without meeting one does not bound the crest; if neither side is
// bounded the lowest point on either side is used.
func prominence(x []float64, c crest) float64 {
	v := x[c.start]
	var bounded, free []float64
	if c.start > 0 {
		base, ok := descend(x, c.start-1, -1, v)
		if ok {
			bounded = append(bounded, base)
		} else {
			free = append(free, base)
		}
	}
	if c.end < len(x)-1 {
		base, ok := descend(x, c.end+1, 1, v)
		if ok {
			bounded = append(bounded, base)
		} else {
			free = append(free, base)
		}
	}
	if len(bounded) > 0 {
		return v - floats.Max(bounded)
	}
	return v - floats.Min(free)
}

// descend walks from i in direction step while samples stay at or below v
// and returns the lowest sample seen. ok reports whether the walk stopped
// at a higher sample rather than at the end of x.
func descend(x []float64, i, step int, v float64) (base float64, ok bool) {
	base = v
	for ; i >= 0 && i < len(x); i += step {
		if x[i] > v {
			return base, true
		}
		base = math.Min(base, x[i])
	}
	return base, false
}

func (c crest) position(x []float64) float64 {
	if c.start != c.end {
		return float64(c.start+c.end) / 2
	}
	return vertex(x, c.start)
}

// vertex refines the extremum at i with a parabola through i-1, i and i+1.
func vertex(x []float64, i int) float64 {
	l, c, r := x[i-1], x[i], x[i+1]
	d := l - 2*c + r
	if d == 0 {
		return float64(i)
	}
	return float64(i) + 0.5*(l-r)/d
}

// trough returns the refined position of the lowest sample in x[from..to].
func trough(x []float64, from, to int) float64 {
	k := from
	for i := from + 1; i <= to; i++ {
		if x[i] < x[k] {
			k = i
		}
	}
	if k > 0 && k < len(x)-1 {
		return vertex(x, k)
	}
	return float64(k)
}
