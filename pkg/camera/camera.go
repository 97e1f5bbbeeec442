// Package camera provides the camera model used by the pose visualizer:
// camera-to-world poses, pinhole intrinsics and per-pixel ray generation.
package camera

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Pose is a camera-to-world rigid transform. The rotation columns are the
// camera's X/Y/Z axes expressed in world coordinates and the translation is
// the camera position in world coordinates.
type Pose struct {
	Rotation    mgl64.Mat3
	Translation mgl64.Vec3
}

// PoseFromMatrix builds a Pose from a row-major 4x4 or 3x4 camera-to-world
// transform matrix. The fourth row, when present, is ignored.
func PoseFromMatrix(rows [][]float64) (Pose, error) {
	if len(rows) != 3 && len(rows) != 4 {
		return Pose{}, fmt.Errorf("transform matrix must have 3 or 4 rows, got %d", len(rows))
	}
	for i := 0; i < 3; i++ {
		if len(rows[i]) != 4 {
			return Pose{}, fmt.Errorf("transform matrix row %d must have 4 columns, got %d", i, len(rows[i]))
		}
	}

	rot := mgl64.Mat3FromRows(
		mgl64.Vec3{rows[0][0], rows[0][1], rows[0][2]},
		mgl64.Vec3{rows[1][0], rows[1][1], rows[1][2]},
		mgl64.Vec3{rows[2][0], rows[2][1], rows[2][2]},
	)
	trans := mgl64.Vec3{rows[0][3], rows[1][3], rows[2][3]}

	return Pose{Rotation: rot, Translation: trans}, nil
}

// Position returns the camera position in world coordinates.
func (p Pose) Position() mgl64.Vec3 {
	return p.Translation
}

// Axis returns the camera axis (0=X, 1=Y, 2=Z) in world coordinates.
func (p Pose) Axis(i int) mgl64.Vec3 {
	return p.Rotation.Col(i)
}

// Intrinsics holds the pinhole parameters necessary to project between the
// image plane and 3D space.
type Intrinsics struct {
	Width  int     `json:"w"`
	Height int     `json:"h"`
	Fx     float64 `json:"fl_x"`
	Fy     float64 `json:"fl_y"`
	Cx     float64 `json:"cx"`
	Cy     float64 `json:"cy"`
}

// CheckValid checks if the fields for Intrinsics have valid inputs.
func (in Intrinsics) CheckValid() error {
	if in.Width <= 0 || in.Height <= 0 {
		return fmt.Errorf("invalid image size (%d, %d)", in.Width, in.Height)
	}
	if in.Fx <= 0 {
		return fmt.Errorf("invalid focal length fx = %v", in.Fx)
	}
	if in.Fy <= 0 {
		return fmt.Errorf("invalid focal length fy = %v", in.Fy)
	}
	if in.Cx < 0 {
		return fmt.Errorf("invalid principal point cx = %v", in.Cx)
	}
	if in.Cy < 0 {
		return fmt.Errorf("invalid principal point cy = %v", in.Cy)
	}
	return nil
}

// CoordGrid is a row-major grid of (y, x) pixel-center coordinates.
type CoordGrid struct {
	Rows, Cols int
	YX         []mgl64.Vec2
}

// At returns the (y, x) coordinate at grid cell (r, c).
func (g CoordGrid) At(r, c int) mgl64.Vec2 {
	return g.YX[r*g.Cols+c]
}

// ImageCoords returns the pixel-center sampling grid for the sensor,
// subsampled by stride along both axes. Pixel centers sit at integer
// coordinates plus 0.5. With stride k the grid has ceil(dim/k) rows and
// columns; samples are taken at pixels 0, k, 2k, ... (no interpolation).
func (in Intrinsics) ImageCoords(stride int) (CoordGrid, error) {
	if err := in.CheckValid(); err != nil {
		return CoordGrid{}, err
	}
	if stride < 1 {
		return CoordGrid{}, fmt.Errorf("stride must be >= 1, got %d", stride)
	}

	rows := (in.Height + stride - 1) / stride
	cols := (in.Width + stride - 1) / stride

	grid := CoordGrid{
		Rows: rows,
		Cols: cols,
		YX:   make([]mgl64.Vec2, 0, rows*cols),
	}
	for y := 0; y < in.Height; y += stride {
		for x := 0; x < in.Width; x += stride {
			grid.YX = append(grid.YX, mgl64.Vec2{float64(y) + 0.5, float64(x) + 0.5})
		}
	}
	return grid, nil
}

// Camera combines a pose with pinhole intrinsics.
type Camera struct {
	Pose       Pose
	Intrinsics Intrinsics
}

// RayBundle holds per-pixel rays: same-shaped grids of origins and unit
// direction vectors in world space.
type RayBundle struct {
	Rows, Cols int
	Origins    []mgl64.Vec3
	Directions []mgl64.Vec3
}

// At returns the origin and direction of the ray at grid cell (r, c).
func (b RayBundle) At(r, c int) (mgl64.Vec3, mgl64.Vec3) {
	i := r*b.Cols + c
	return b.Origins[i], b.Directions[i]
}

// PointsAt returns the world-space points at the given distance along each
// ray, in the bundle's row-major grid order.
func (b RayBundle) PointsAt(distance float64) []mgl64.Vec3 {
	points := make([]mgl64.Vec3, len(b.Origins))
	for i := range b.Origins {
		points[i] = b.Origins[i].Add(b.Directions[i].Mul(distance))
	}
	return points
}

// GenerateRays generates one world-space ray per grid coordinate using the
// pinhole model. The camera frame follows the OpenGL convention used by
// neural-rendering datasets: +X right, +Y up, looking along -Z.
func (c Camera) GenerateRays(coords CoordGrid) (RayBundle, error) {
	if err := c.Intrinsics.CheckValid(); err != nil {
		return RayBundle{}, err
	}
	if len(coords.YX) != coords.Rows*coords.Cols {
		return RayBundle{}, fmt.Errorf("coordinate grid has %d entries, want %d", len(coords.YX), coords.Rows*coords.Cols)
	}

	bundle := RayBundle{
		Rows:       coords.Rows,
		Cols:       coords.Cols,
		Origins:    make([]mgl64.Vec3, len(coords.YX)),
		Directions: make([]mgl64.Vec3, len(coords.YX)),
	}
	for i, yx := range coords.YX {
		y, x := yx[0], yx[1]
		dirCam := mgl64.Vec3{
			(x - c.Intrinsics.Cx) / c.Intrinsics.Fx,
			-(y - c.Intrinsics.Cy) / c.Intrinsics.Fy,
			-1,
		}
		bundle.Origins[i] = c.Pose.Translation
		bundle.Directions[i] = c.Pose.Rotation.Mul3x1(dirCam).Normalize()
	}
	return bundle, nil
}
