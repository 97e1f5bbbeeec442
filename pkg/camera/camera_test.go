package camera

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vecInDelta(t *testing.T, want, got mgl64.Vec3, delta float64) {
	t.Helper()
	for i := 0; i < 3; i++ {
		assert.InDelta(t, want[i], got[i], delta, "component %d of %v vs %v", i, want, got)
	}
}

func validIntrinsics() Intrinsics {
	return Intrinsics{Width: 4, Height: 6, Fx: 2, Fy: 2, Cx: 1.5, Cy: 2.5}
}

func TestPoseFromMatrix(t *testing.T) {
	rows := [][]float64{
		{1, 0, 0, 10},
		{0, 1, 0, 20},
		{0, 0, 1, 30},
		{0, 0, 0, 1},
	}

	pose, err := PoseFromMatrix(rows)
	require.NoError(t, err)

	vecInDelta(t, mgl64.Vec3{10, 20, 30}, pose.Position(), 1e-12)
	vecInDelta(t, mgl64.Vec3{1, 0, 0}, pose.Axis(0), 1e-12)
	vecInDelta(t, mgl64.Vec3{0, 1, 0}, pose.Axis(1), 1e-12)
	vecInDelta(t, mgl64.Vec3{0, 0, 1}, pose.Axis(2), 1e-12)

	// A 3x4 matrix must decode the same way.
	pose3x4, err := PoseFromMatrix(rows[:3])
	require.NoError(t, err)
	assert.Equal(t, pose, pose3x4)
}

func TestPoseFromMatrixRotationColumns(t *testing.T) {
	// Rotation by 90 degrees about world Z: camera X maps to world Y.
	rows := [][]float64{
		{0, -1, 0, 0},
		{1, 0, 0, 0},
		{0, 0, 1, 0},
	}

	pose, err := PoseFromMatrix(rows)
	require.NoError(t, err)

	vecInDelta(t, mgl64.Vec3{0, 1, 0}, pose.Axis(0), 1e-12)
	vecInDelta(t, mgl64.Vec3{-1, 0, 0}, pose.Axis(1), 1e-12)
	vecInDelta(t, mgl64.Vec3{0, 0, 1}, pose.Axis(2), 1e-12)
}

func TestPoseFromMatrixInvalid(t *testing.T) {
	_, err := PoseFromMatrix([][]float64{{1, 0, 0, 0}, {0, 1, 0, 0}})
	assert.Error(t, err)

	_, err = PoseFromMatrix([][]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}})
	assert.Error(t, err)
}

func TestIntrinsicsCheckValid(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Intrinsics)
		wantErr bool
	}{
		{"valid", func(in *Intrinsics) {}, false},
		{"zero width", func(in *Intrinsics) { in.Width = 0 }, true},
		{"zero height", func(in *Intrinsics) { in.Height = 0 }, true},
		{"bad fx", func(in *Intrinsics) { in.Fx = 0 }, true},
		{"bad fy", func(in *Intrinsics) { in.Fy = -1 }, true},
		{"bad cx", func(in *Intrinsics) { in.Cx = -0.5 }, true},
		{"bad cy", func(in *Intrinsics) { in.Cy = -0.5 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validIntrinsics()
			tt.mutate(&in)
			err := in.CheckValid()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestImageCoordsStride(t *testing.T) {
	in := Intrinsics{Width: 10, Height: 7, Fx: 1, Fy: 1, Cx: 5, Cy: 3.5}

	// Strided subsampling keeps ceil(dim/stride) rows and columns.
	grid, err := in.ImageCoords(3)
	require.NoError(t, err)
	assert.Equal(t, 3, grid.Rows) // ceil(7/3)
	assert.Equal(t, 4, grid.Cols) // ceil(10/3)
	assert.Len(t, grid.YX, 12)

	// Pixel centers at integer coordinates plus 0.5, stride apart.
	assert.Equal(t, mgl64.Vec2{0.5, 0.5}, grid.At(0, 0))
	assert.Equal(t, mgl64.Vec2{0.5, 3.5}, grid.At(0, 1))
	assert.Equal(t, mgl64.Vec2{3.5, 0.5}, grid.At(1, 0))
	assert.Equal(t, mgl64.Vec2{6.5, 9.5}, grid.At(2, 3))

	full, err := in.ImageCoords(1)
	require.NoError(t, err)
	assert.Equal(t, 7, full.Rows)
	assert.Equal(t, 10, full.Cols)

	// A stride larger than the image keeps a single sample.
	one, err := in.ImageCoords(20)
	require.NoError(t, err)
	assert.Equal(t, 1, one.Rows)
	assert.Equal(t, 1, one.Cols)

	_, err = in.ImageCoords(0)
	assert.Error(t, err)
}

func TestGenerateRaysIdentityPose(t *testing.T) {
	cam := Camera{
		Pose:       Pose{Rotation: mgl64.Ident3(), Translation: mgl64.Vec3{1, 2, 3}},
		Intrinsics: validIntrinsics(),
	}

	coords, err := cam.Intrinsics.ImageCoords(1)
	require.NoError(t, err)

	rays, err := cam.GenerateRays(coords)
	require.NoError(t, err)
	assert.Equal(t, coords.Rows, rays.Rows)
	assert.Equal(t, coords.Cols, rays.Cols)
	require.Len(t, rays.Directions, coords.Rows*coords.Cols)

	for i, origin := range rays.Origins {
		vecInDelta(t, cam.Pose.Translation, origin, 1e-12)
		assert.InDelta(t, 1.0, rays.Directions[i].Len(), 1e-12)
	}

	// The ray through the principal point looks straight down camera -Z.
	// With cx=1.5, cy=2.5 that is the sample at row 2, column 1.
	_, center := rays.At(2, 1)
	vecInDelta(t, mgl64.Vec3{0, 0, -1}, center, 1e-12)

	// One pixel right of center leans toward +X; one pixel down leans
	// toward -Y (image rows grow downward, camera Y points up).
	_, right := rays.At(2, 2)
	assert.Greater(t, right.X(), 0.0)
	assert.InDelta(t, 0.0, right.Y(), 1e-12)

	_, below := rays.At(3, 1)
	assert.Less(t, below.Y(), 0.0)
	assert.InDelta(t, 0.0, below.X(), 1e-12)
}

func TestGenerateRaysRotatedPose(t *testing.T) {
	// Rotation whose columns are x=(0,0,-1), y=(0,1,0), z=(1,0,0):
	// the camera looks along world -X.
	rot := mgl64.Mat3FromRows(
		mgl64.Vec3{0, 0, 1},
		mgl64.Vec3{0, 1, 0},
		mgl64.Vec3{-1, 0, 0},
	)
	cam := Camera{
		Pose:       Pose{Rotation: rot, Translation: mgl64.Vec3{5, 0, 0}},
		Intrinsics: validIntrinsics(),
	}

	coords, err := cam.Intrinsics.ImageCoords(1)
	require.NoError(t, err)
	rays, err := cam.GenerateRays(coords)
	require.NoError(t, err)

	_, center := rays.At(2, 1)
	vecInDelta(t, mgl64.Vec3{-1, 0, 0}, center, 1e-12)
}

func TestGenerateRaysInvalid(t *testing.T) {
	cam := Camera{Pose: Pose{Rotation: mgl64.Ident3()}}
	_, err := cam.GenerateRays(CoordGrid{Rows: 1, Cols: 1, YX: []mgl64.Vec2{{0.5, 0.5}}})
	assert.Error(t, err)

	cam.Intrinsics = validIntrinsics()
	_, err = cam.GenerateRays(CoordGrid{Rows: 2, Cols: 2, YX: []mgl64.Vec2{{0.5, 0.5}}})
	assert.Error(t, err)
}

func TestPointsAt(t *testing.T) {
	cam := Camera{
		Pose:       Pose{Rotation: mgl64.Ident3(), Translation: mgl64.Vec3{0, 0, 0}},
		Intrinsics: validIntrinsics(),
	}
	coords, err := cam.Intrinsics.ImageCoords(1)
	require.NoError(t, err)
	rays, err := cam.GenerateRays(coords)
	require.NoError(t, err)

	points := rays.PointsAt(2.0)
	require.Len(t, points, len(rays.Origins))

	// Center ray at distance 2 lands two units down the view direction.
	vecInDelta(t, mgl64.Vec3{0, 0, -2}, points[2*coords.Cols+1], 1e-12)

	// Every point sits at the requested distance from its origin.
	for i, p := range points {
		assert.InDelta(t, 2.0, p.Sub(rays.Origins[i]).Len(), 1e-12)
	}
}
