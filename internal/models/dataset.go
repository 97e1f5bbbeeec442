package models

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"camposevis/pkg/camera"
)

// CameraSet is an ordered collection of cameras, index-aligned with the
// image files captured by each camera. Index i identifies both a camera
// and (optionally) an image.
type CameraSet struct {
	// Cameras holds pose and intrinsics per frame, in dataset order
	Cameras []camera.Camera

	// ImagePaths holds the image file path per frame
	ImagePaths []string
}

// Len returns the number of cameras in the set.
func (s *CameraSet) Len() int {
	return len(s.Cameras)
}

// Validate checks the index-alignment invariant between cameras and images.
func (s *CameraSet) Validate() error {
	if len(s.Cameras) != len(s.ImagePaths) {
		return fmt.Errorf("camera set has %d cameras but %d image paths", len(s.Cameras), len(s.ImagePaths))
	}
	return nil
}

// Positions returns the world-space position of every camera in the set.
func (s *CameraSet) Positions() []mgl64.Vec3 {
	positions := make([]mgl64.Vec3, len(s.Cameras))
	for i, cam := range s.Cameras {
		positions[i] = cam.Pose.Position()
	}
	return positions
}

// RGBA is a normalized color sample with values in [0, 1].
type RGBA struct {
	R, G, B, A float64
}

// ImageGrid is a decoded image downsampled to a row-major grid of
// normalized color samples.
type ImageGrid struct {
	// Rows and Cols are the grid dimensions after downsampling
	Rows, Cols int

	// Pixels holds the color samples in row-major order
	Pixels []RGBA
}

// At returns the color sample at grid cell (r, c).
func (g *ImageGrid) At(r, c int) RGBA {
	return g.Pixels[r*g.Cols+c]
}
