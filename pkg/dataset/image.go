package dataset

import (
	"fmt"

	"github.com/disintegration/imaging"

	"camposevis/internal/models"
)

// projectedAlpha is the constant opacity applied to every projected image
// sample so that overlapping frusta stay readable.
const projectedAlpha = 0.5

// LoadImageGrid decodes the image at path and returns it as a grid of
// normalized color samples, subsampled by factor along both axes. Source
// alpha is discarded (RGBA images are treated as RGB) and every sample gets
// the constant projected alpha instead. Subsampling keeps every factor-th
// pixel starting at 0, so the grid has ceil(dim/factor) rows and columns.
func LoadImageGrid(path string, factor int) (*models.ImageGrid, error) {
	if factor < 1 {
		return nil, fmt.Errorf("downsample factor must be >= 1, got %d", factor)
	}

	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening image %s: %w", path, err)
	}
	nrgba := imaging.Clone(img)

	bounds := nrgba.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	rows := (height + factor - 1) / factor
	cols := (width + factor - 1) / factor

	grid := &models.ImageGrid{
		Rows:   rows,
		Cols:   cols,
		Pixels: make([]models.RGBA, 0, rows*cols),
	}
	for y := 0; y < height; y += factor {
		for x := 0; x < width; x += factor {
			c := nrgba.NRGBAAt(bounds.Min.X+x, bounds.Min.Y+y)
			grid.Pixels = append(grid.Pixels, models.RGBA{
				R: float64(c.R) / 255.0,
				G: float64(c.G) / 255.0,
				B: float64(c.B) / 255.0,
				A: projectedAlpha,
			})
		}
	}
	return grid, nil
}
