// Package photos loads externally captured images and converts them into
// the 28x28 grayscale tensor format the classifier was trained on.
//
// Consumer photos differ from the training data in two ways: they are
// color and high resolution, and they are usually dark-on-light while the
// training images are light-on-dark. Loading therefore grayscales,
// downsamples with nearest-neighbor, normalizes to [0,1], and optionally
// inverts intensity.
package photos

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/garb-ml/garb/internal/dataset"
	"github.com/garb-ml/garb/internal/tensor"
)

// Sample is one prepared photo ready for classification.
type Sample struct {
	Name   string  // file name, without directory
	Pixels []float32
}

// Batch packages a sample as a single-image batch compatible with the
// evaluator's model interface.
func (s Sample) Batch() dataset.Batch {
	t := tensor.FromSlice(s.Pixels, tensor.Shape{1, 1, dataset.ImageSide, dataset.ImageSide})
	return dataset.Batch{Images: t, Labels: []int{-1}}
}

// supported reports whether path has a decodable image extension.
func supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg":
		return true
	}
	return false
}

// LoadDir loads every PNG and JPEG in dir, sorted by file name. invert
// flips intensity so that dark-on-light photos match the light-on-dark
// training distribution.
func LoadDir(dir string, invert bool) ([]Sample, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("photos: read dir: %w", err)
	}

	var samples []Sample
	for _, entry := range entries {
		if entry.IsDir() || !supported(entry.Name()) {
			continue
		}
		sample, err := LoadFile(filepath.Join(dir, entry.Name()), invert)
		if err != nil {
			return nil, err
		}
		samples = append(samples, sample)
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i].Name < samples[j].Name })

	log.Info().Str("dir", dir).Int("count", len(samples)).Bool("invert", invert).
		Msg("photos loaded")
	return samples, nil
}

// LoadFile decodes and prepares a single photo.
func LoadFile(path string, invert bool) (Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return Sample{}, fmt.Errorf("photos: open %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return Sample{}, fmt.Errorf("photos: decode %s: %w", path, err)
	}

	return Sample{
		Name:   filepath.Base(path),
		Pixels: Prepare(img, invert),
	}, nil
}

// Prepare converts an arbitrary image to the normalized 28x28 grayscale
// pixel layout used by the dataset: row-major, [0,1], light-on-dark when
// invert is set.
func Prepare(img image.Image, invert bool) []float32 {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	pixels := make([]float32, dataset.ImagePixels)
	for y := 0; y < dataset.ImageSide; y++ {
		// Nearest-neighbor: each target pixel samples one source pixel.
		srcY := bounds.Min.Y + y*h/dataset.ImageSide
		for x := 0; x < dataset.ImageSide; x++ {
			srcX := bounds.Min.X + x*w/dataset.ImageSide

			r, g, b, _ := img.At(srcX, srcY).RGBA()
			// Luma weights, on the 16-bit channel range of RGBA().
			gray := (0.299*float32(r) + 0.587*float32(g) + 0.114*float32(b)) / 65535.0
			if invert {
				gray = 1 - gray
			}
			pixels[y*dataset.ImageSide+x] = gray
		}
	}
	return pixels
}
