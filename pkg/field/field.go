package field

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

const (
	// Undefined is returned by OrientationField.At for pixels that no full
	// block covers.
	Undefined = -1.0

	// Invalid is returned by FrequencyField.At for blocks whose ridge
	// frequency could not be determined.
	Invalid = -1.0
)

// Estimate is a block value that may be absent.
type Estimate struct {
	Value float64
	Valid bool
}

// blockGrid stores one value per block and answers per-pixel queries by
// tiling. It implements the read-only part of mat.Matrix.
type blockGrid struct {
	layout  Layout
	values  []float64
	valid   []bool
	missing float64
}

func (g *blockGrid) Dims() (r, c int) {
	return g.layout.Height, g.layout.Width
}

func (g *blockGrid) lookup(row, col int) (float64, bool) {
	i, j, ok := g.layout.BlockOf(row, col)
	if !ok {
		return g.missing, false
	}
	k := i*g.layout.BlockCols + j
	if !g.valid[k] {
		return g.missing, false
	}
	return g.values[k], true
}

func (g *blockGrid) At(row, col int) float64 {
	if row < 0 || col < 0 || row >= g.layout.Height || col >= g.layout.Width {
		panic(mat.ErrIndexOutOfRange)
	}
	v, _ := g.lookup(row, col)
	return v
}

func (g *blockGrid) block(i, j int) (float64, bool) {
	if i < 0 || j < 0 || i >= g.layout.BlockRows || j >= g.layout.BlockCols {
		panic(mat.ErrIndexOutOfRange)
	}
	k := i*g.layout.BlockCols + j
	if !g.valid[k] {
		return g.missing, false
	}
	return g.values[k], true
}

// dense materialises the tiled per-pixel field.
func (g *blockGrid) dense() *mat.Dense {
	d := mat.NewDense(g.layout.Height, g.layout.Width, nil)
	for r := 0; r < g.layout.Height; r++ {
		row := d.RawRowView(r)
		for c := range row {
			row[c], _ = g.lookup(r, c)
		}
	}
	return d
}

// OrientationField is a dense ridge orientation map with angles in [0, π).
type OrientationField struct {
	blockGrid
}

// NewOrientationField builds a field from a BlockRows×BlockCols matrix of
// block angles. The values are copied.
func NewOrientationField(layout Layout, blocks mat.Matrix) (*OrientationField, error) {
	r, c := blocks.Dims()
	if r != layout.BlockRows || c != layout.BlockCols {
		return nil, fmt.Errorf("block matrix is %dx%d, layout expects %dx%d",
			r, c, layout.BlockRows, layout.BlockCols)
	}

	g := blockGrid{
		layout:  layout,
		values:  make([]float64, r*c),
		valid:   make([]bool, r*c),
		missing: Undefined,
	}
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			g.values[i*c+j] = blocks.At(i, j)
			g.valid[i*c+j] = true
		}
	}
	return &OrientationField{blockGrid: g}, nil
}

// T returns the transposed field as a mat.Matrix.
func (f *OrientationField) T() mat.Matrix { return mat.Transpose{Matrix: f} }

// Layout returns the block layout the field was estimated on.
func (f *OrientationField) Layout() Layout { return f.layout }

// Lookup returns the orientation at pixel (row, col). ok is false outside
// the image or outside full-block coverage.
func (f *OrientationField) Lookup(row, col int) (theta float64, ok bool) {
	return f.lookup(row, col)
}

// Block returns the smoothed angle of block (i, j).
func (f *OrientationField) Block(i, j int) float64 {
	v, _ := f.block(i, j)
	return v
}

// Dense returns a newly allocated Height×Width copy of the field.
func (f *OrientationField) Dense() *mat.Dense { return f.dense() }

// FrequencyField is a dense ridge frequency map in cycles per pixel.
type FrequencyField struct {
	blockGrid
}

// NewFrequencyField builds a field from row-major block estimates.
func NewFrequencyField(layout Layout, blocks []Estimate) (*FrequencyField, error) {
	if len(blocks) != layout.Blocks() {
		return nil, fmt.Errorf("got %d block estimates, layout expects %d",
			len(blocks), layout.Blocks())
	}

	g := blockGrid{
		layout:  layout,
		values:  make([]float64, len(blocks)),
		valid:   make([]bool, len(blocks)),
		missing: Invalid,
	}
	for k, e := range blocks {
		g.values[k] = e.Value
		g.valid[k] = e.Valid
	}
	return &FrequencyField{blockGrid: g}, nil
}

// T returns the transposed field as a mat.Matrix.
func (f *FrequencyField) T() mat.Matrix { return mat.Transpose{Matrix: f} }

// Layout returns the block layout the field was estimated on.
func (f *FrequencyField) Layout() Layout { return f.layout }

// Lookup returns the frequency at pixel (row, col). ok is false where the
// frequency is undeterminable.
func (f *FrequencyField) Lookup(row, col int) (freq float64, ok bool) {
	return f.lookup(row, col)
}

// Block returns the estimate for block (i, j).
func (f *FrequencyField) Block(i, j int) Estimate {
	v, ok := f.block(i, j)
	return Estimate{Value: v, Valid: ok}
}

// ValidBlocks returns the values of all valid blocks in row-major order.
func (f *FrequencyField) ValidBlocks() []float64 {
	out := make([]float64, 0, len(f.values))
	for k, v := range f.values {
		if f.valid[k] {
			out = append(out, v)
		}
	}
	return out
}

// Dense returns a newly allocated Height×Width copy of the field with the
// Invalid sentinel in undeterminable cells.
func (f *FrequencyField) Dense() *mat.Dense { return f.dense() }

var (
	_ mat.Matrix = (*OrientationField)(nil)
	_ mat.Matrix = (*FrequencyField)(nil)
)
