// Package dataset loads camera parameters and images from a
// transforms.json dataset as produced by instant-ngp and nerfstudio style
// pipelines: global pinhole intrinsics with optional per-frame overrides,
// plus one camera-to-world transform and image path per frame.
package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"camposevis/internal/models"
	"camposevis/pkg/camera"
)

// transformsFile mirrors the transforms.json layout.
type transformsFile struct {
	FlX    float64           `json:"fl_x"`
	FlY    float64           `json:"fl_y"`
	Cx     float64           `json:"cx"`
	Cy     float64           `json:"cy"`
	W      int               `json:"w"`
	H      int               `json:"h"`
	Frames []transformsFrame `json:"frames"`
}

// transformsFrame is one entry of the frames array. Intrinsics fields are
// pointers so per-frame overrides can be told apart from absent values.
type transformsFrame struct {
	FilePath        string      `json:"file_path"`
	TransformMatrix [][]float64 `json:"transform_matrix"`
	FlX             *float64    `json:"fl_x"`
	FlY             *float64    `json:"fl_y"`
	Cx              *float64    `json:"cx"`
	Cy              *float64    `json:"cy"`
	W               *int        `json:"w"`
	H               *int        `json:"h"`
}

// Load reads a transforms.json file and returns the camera set it
// describes, in frame order. Image paths are resolved relative to the
// directory containing the file.
func Load(path string) (*models.CameraSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading transforms file: %w", err)
	}

	var tf transformsFile
	if err := json.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("parsing transforms file: %w", err)
	}
	if len(tf.Frames) == 0 {
		return nil, fmt.Errorf("transforms file %s contains no frames", path)
	}

	baseDir := filepath.Dir(path)
	set := &models.CameraSet{
		Cameras:    make([]camera.Camera, 0, len(tf.Frames)),
		ImagePaths: make([]string, 0, len(tf.Frames)),
	}

	for i, frame := range tf.Frames {
		pose, err := camera.PoseFromMatrix(frame.TransformMatrix)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}

		intr := frameIntrinsics(&tf, &frame)
		if err := intr.CheckValid(); err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}

		if frame.FilePath == "" {
			return nil, fmt.Errorf("frame %d: missing file_path", i)
		}
		imagePath := frame.FilePath
		if !filepath.IsAbs(imagePath) {
			imagePath = filepath.Join(baseDir, imagePath)
		}

		set.Cameras = append(set.Cameras, camera.Camera{Pose: pose, Intrinsics: intr})
		set.ImagePaths = append(set.ImagePaths, imagePath)
	}

	return set, nil
}

// frameIntrinsics merges the global intrinsics with any per-frame overrides.
func frameIntrinsics(tf *transformsFile, frame *transformsFrame) camera.Intrinsics {
	intr := camera.Intrinsics{
		Width:  tf.W,
		Height: tf.H,
		Fx:     tf.FlX,
		Fy:     tf.FlY,
		Cx:     tf.Cx,
		Cy:     tf.Cy,
	}
	if frame.W != nil {
		intr.Width = *frame.W
	}
	if frame.H != nil {
		intr.Height = *frame.H
	}
	if frame.FlX != nil {
		intr.Fx = *frame.FlX
	}
	if frame.FlY != nil {
		intr.Fy = *frame.FlY
	}
	if frame.Cx != nil {
		intr.Cx = *frame.Cx
	}
	if frame.Cy != nil {
		intr.Cy = *frame.Cy
	}
	return intr
}
