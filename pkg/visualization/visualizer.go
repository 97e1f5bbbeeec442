// Package visualization renders a set of camera poses as one interactive 3D
// figure: an RGB axis triad and index label per camera, optional projected
// image planes with gray boundary rays, world reference axes and a cubic
// bounding box fitted to the scene.
package visualization

import (
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/floats"

	"camposevis/internal/models"
	"camposevis/pkg/dataset"
)

// axisScale is the length of a camera axis line relative to the image plane
// distance.
const axisScale = 0.8

// Options controls one visualization pass. The zero value is not usable;
// populate it from config or use sensible literals in tests.
type Options struct {
	// ImageDownsampleFactor is the stride used when sampling image pixels
	ImageDownsampleFactor int

	// SkipProbability is the per-camera chance of being skipped at random
	SkipProbability float64

	// ImagePlane is the distance from camera center to the projected plane
	ImagePlane float64

	// SelectedFrames restricts visualization to these indices (nil = all)
	SelectedFrames []int

	// ShowImage projects and draws per-camera imagery
	ShowImage bool

	// StrictSelection applies SelectedFrames even when ShowImage is off.
	// Off by default: historically frame selection was only honoured while
	// images were shown, and some debugging workflows rely on that.
	StrictSelection bool

	// Title is the figure title
	Title string
}

// imageLoader decodes and downsamples the image for one camera. Split out
// so tests can substitute synthetic imagery for disk reads.
type imageLoader func(path string, factor int) (*models.ImageGrid, error)

// Visualizer draws a camera set into a 3D figure.
type Visualizer struct {
	set       *models.CameraSet
	opts      Options
	rng       *rand.Rand
	selected  map[int]struct{}
	loadImage imageLoader
}

// New creates a Visualizer over the given camera set. A nil rng gets a
// time-seeded source.
func New(set *models.CameraSet, opts Options, rng *rand.Rand) (*Visualizer, error) {
	if set == nil || set.Len() == 0 {
		return nil, fmt.Errorf("camera set is empty")
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	if opts.ImageDownsampleFactor < 1 {
		return nil, fmt.Errorf("image downsample factor must be >= 1, got %d", opts.ImageDownsampleFactor)
	}
	if opts.SkipProbability < 0 || opts.SkipProbability > 1 {
		return nil, fmt.Errorf("skip probability must be in [0, 1], got %v", opts.SkipProbability)
	}
	if opts.ImagePlane <= 0 {
		return nil, fmt.Errorf("image plane distance must be > 0, got %v", opts.ImagePlane)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	var selected map[int]struct{}
	if opts.SelectedFrames != nil {
		selected = make(map[int]struct{}, len(opts.SelectedFrames))
		for _, frame := range opts.SelectedFrames {
			selected[frame] = struct{}{}
		}
	}

	return &Visualizer{
		set:       set,
		opts:      opts,
		rng:       rng,
		selected:  selected,
		loadImage: dataset.LoadImageGrid,
	}, nil
}

// segment is one colored line from a to b.
type segment struct {
	name  string
	a, b  mgl64.Vec3
	color string
	width float32
}

// labelPoint is a text marker placed at a world position.
type labelPoint struct {
	pos  mgl64.Vec3
	text string
}

// surfacePoint is one projected image sample.
type surfacePoint struct {
	pos   mgl64.Vec3
	color string
}

// figure is the geometric content of one visualization pass, before any
// chart assembly.
type figure struct {
	segments []segment
	labels   []labelPoint
	points   []surfacePoint
	skipped  []int

	// axisMin/axisMax are the shared limits of all three axes
	axisMin, axisMax float64
}

var (
	axisNames  = [3]string{"x", "y", "z"}
	axisColors = [3]string{"#ff0000", "#00ff00", "#0000ff"}
)

// shouldSkip decides whether camera i is left out of the figure given the
// random sample drawn for it. Without strict selection the frame-selection
// clause is gated on ShowImage, reproducing the original tool's behaviour.
func (v *Visualizer) shouldSkip(i int, sample float64) bool {
	if sample < v.opts.SkipProbability {
		return true
	}
	if v.selected == nil {
		return false
	}
	if _, ok := v.selected[i]; ok {
		return false
	}
	return v.opts.ShowImage || v.opts.StrictSelection
}

// build runs the visualization loop over all cameras and returns the
// resulting figure content.
func (v *Visualizer) build() (*figure, error) {
	// Bounds are seeded from every camera position up front; skipped
	// cameras still count here. Only frustum corners of drawn images
	// expand them further.
	minPos, maxPos := bounds(v.set.Positions())

	fig := &figure{}
	axisLen := axisScale * v.opts.ImagePlane

	for i, cam := range v.set.Cameras {
		sample := v.rng.Float64()
		if v.shouldSkip(i, sample) {
			fig.skipped = append(fig.skipped, i)
			continue
		}

		pos := cam.Pose.Position()
		for axis := 0; axis < 3; axis++ {
			end := pos.Add(cam.Pose.Axis(axis).Mul(axisLen))
			fig.segments = append(fig.segments, segment{
				name:  fmt.Sprintf("cam %d %s", i, axisNames[axis]),
				a:     pos,
				b:     end,
				color: axisColors[axis],
				width: 2,
			})
		}

		if v.opts.ShowImage {
			if err := v.addImagePlane(fig, i, &minPos, &maxPos); err != nil {
				return nil, err
			}
		}

		fig.labels = append(fig.labels, labelPoint{pos: pos, text: strconv.Itoa(i)})
	}

	// A single cubic bounding box: the global scalar extremes across all
	// three axes, not per-axis extents.
	fig.axisMax = floats.Max(maxPos[:]) * 1.1
	fig.axisMin = floats.Min(minPos[:]) * 0.9

	// World reference axes from the origin.
	origin := mgl64.Vec3{}
	for axis := 0; axis < 3; axis++ {
		end := mgl64.Vec3{}
		end[axis] = fig.axisMax
		fig.segments = append(fig.segments, segment{
			name:  "world " + axisNames[axis],
			a:     origin,
			b:     end,
			color: axisColors[axis],
			width: 2,
		})
	}

	return fig, nil
}

// addImagePlane projects camera i's image onto a plane at the configured
// distance and adds the colored point grid plus the four gray boundary rays.
// The running bounds are expanded by the plane corners.
func (v *Visualizer) addImagePlane(fig *figure, i int, minPos, maxPos *mgl64.Vec3) error {
	cam := v.set.Cameras[i]

	grid, err := v.loadImage(v.set.ImagePaths[i], v.opts.ImageDownsampleFactor)
	if err != nil {
		return fmt.Errorf("camera %d: %w", i, err)
	}

	coords, err := cam.Intrinsics.ImageCoords(v.opts.ImageDownsampleFactor)
	if err != nil {
		return fmt.Errorf("camera %d: %w", i, err)
	}
	if coords.Rows != grid.Rows || coords.Cols != grid.Cols {
		return fmt.Errorf("camera %d: image grid %dx%d does not match sensor grid %dx%d",
			i, grid.Rows, grid.Cols, coords.Rows, coords.Cols)
	}

	rays, err := cam.GenerateRays(coords)
	if err != nil {
		return fmt.Errorf("camera %d: %w", i, err)
	}
	points := rays.PointsAt(v.opts.ImagePlane)

	for idx, p := range points {
		fig.points = append(fig.points, surfacePoint{pos: p, color: cssColor(grid.Pixels[idx])})
	}

	pos := cam.Pose.Position()
	for _, corner := range gridCorners(points, rays.Rows, rays.Cols) {
		fig.segments = append(fig.segments, segment{
			name:  fmt.Sprintf("cam %d frustum", i),
			a:     pos,
			b:     corner,
			color: "rgba(128,128,128,0.5)",
			width: 1,
		})
		*minPos = vecMin(*minPos, corner)
		*maxPos = vecMax(*maxPos, corner)
	}

	return nil
}

// gridCorners returns the four corners of a row-major point grid in the
// order top-left, bottom-left, top-right, bottom-right.
func gridCorners(points []mgl64.Vec3, rows, cols int) []mgl64.Vec3 {
	return []mgl64.Vec3{
		points[0],
		points[(rows-1)*cols],
		points[cols-1],
		points[(rows-1)*cols+cols-1],
	}
}

// bounds returns the per-component minimum and maximum over the positions.
func bounds(positions []mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	minPos, maxPos := positions[0], positions[0]
	for _, p := range positions[1:] {
		minPos = vecMin(minPos, p)
		maxPos = vecMax(maxPos, p)
	}
	return minPos, maxPos
}

func vecMin(a, b mgl64.Vec3) mgl64.Vec3 {
	for i := range a {
		if b[i] < a[i] {
			a[i] = b[i]
		}
	}
	return a
}

func vecMax(a, b mgl64.Vec3) mgl64.Vec3 {
	for i := range a {
		if b[i] > a[i] {
			a[i] = b[i]
		}
	}
	return a
}

// cssColor formats a normalized color sample as a CSS rgba() literal.
func cssColor(c models.RGBA) string {
	return fmt.Sprintf("rgba(%d,%d,%d,%.2f)",
		int(c.R*255+0.5), int(c.G*255+0.5), int(c.B*255+0.5), c.A)
}
