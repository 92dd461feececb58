package imgproc

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"gonum.org/v1/gonum/mat"
)

// FromImage converts img to a matrix of grayscale intensities in [0, 255],
// indexed [row, col].
func FromImage(img image.Image) *mat.Dense {
	gray := imaging.Grayscale(img)
	b := gray.Bounds()
	m := mat.NewDense(b.Dy(), b.Dx(), nil)
	for y := 0; y < b.Dy(); y++ {
		row := m.RawRowView(y)
		pix := gray.Pix[y*gray.Stride:]
		for x := range row {
			row[x] = float64(pix[x*4])
		}
	}
	return m
}

// Load decodes the image file at path into a grayscale intensity matrix.
func Load(path string) (*mat.Dense, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image %s: %w", path, err)
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("image %s is empty", path)
	}
	return FromImage(img), nil
}
