package imgproc

import (
	"math"

	"golang.org/x/image/math/f64"
	"gonum.org/v1/gonum/mat"
)

// edgeTolerance absorbs rounding in the inverse mapping so that samples that
// land a hair outside the source area still read the edge pixel.
const edgeTolerance = 1e-9

// pixelHalf is the distance from a pixel centre to its edge. The source
// covers the whole area of its pixels, half a pixel beyond the outermost
// centres.
const pixelHalf = 0.5

// rotationInverse returns the map from destination pixel (x=col, y=row) to
// source position for a rotation of the content by angle about the centre
// of a w×h canvas. Positive angles turn the content counter-clockwise as
// displayed (rows growing downwards).
func rotationInverse(angle float64, w, h int) f64.Aff3 {
	sin, cos := math.Sincos(angle)
	cx, cy := float64(w-1)/2, float64(h-1)/2
	return f64.Aff3{
		cos, -sin, cx - cos*cx + sin*cy,
		sin, cos, cy - sin*cx - cos*cy,
	}
}

// Rotate turns the content of src by angle radians about its centre and
// returns a matrix of the same size. Samples are bilinearly interpolated and
// read the nearest edge pixel within half a pixel of the outermost centres;
// destination pixels whose source falls outside the area of src are zero.
func Rotate(src mat.Matrix, angle float64) *mat.Dense {
	h, w := src.Dims()
	in := mat.DenseCopyOf(src)
	dst := mat.NewDense(h, w, nil)
	m := rotationInverse(angle, w, h)

	maxX, maxY := float64(w-1), float64(h-1)
	margin := pixelHalf + edgeTolerance
	for r := 0; r < h; r++ {
		out := dst.RawRowView(r)
		for c := range out {
			x, y := float64(c), float64(r)
			sx := m[0]*x + m[1]*y + m[2]
			sy := m[3]*x + m[4]*y + m[5]
			if sx < -margin || sy < -margin || sx > maxX+margin || sy > maxY+margin {
				continue
			}
			out[c] = bilinear(in, math.Min(math.Max(sx, 0), maxX), math.Min(math.Max(sy, 0), maxY))
		}
	}
	return dst
}

// bilinear samples src at (x, y), which must lie inside the pixel grid.
func bilinear(src *mat.Dense, x, y float64) float64 {
	h, w := src.Dims()
	x0, y0 := int(math.Floor(x)), int(math.Floor(y))
	if x0 > w-2 {
		x0 = max(w-2, 0)
	}
	if y0 > h-2 {
		y0 = max(h-2, 0)
	}
	x1, y1 := min(x0+1, w-1), min(y0+1, h-1)
	fx, fy := x-float64(x0), y-float64(y0)

	top := src.At(y0, x0)*(1-fx) + src.At(y0, x1)*fx
	bottom := src.At(y1, x0)*(1-fx) + src.At(y1, x1)*fx
	return top*(1-fy) + bottom*fy
}
