package dataset

import (
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// IDX file format (as published with MNIST/Fashion-MNIST):
//
//	images: magic 0x00000803 (2051), count, rows, cols, then raw bytes
//	labels: magic 0x00000801 (2049), count, then raw bytes
//
// All integers are big-endian. The distributed files are gzipped.

const (
	idxImagesMagic = 2051
	idxLabelsMagic = 2049
)

// openIDX opens an IDX file, transparently handling the .gz variant.
// When path has no .gz suffix but does not exist, the .gz sibling is tried.
func openIDX(path string) (io.ReadCloser, error) {
	if !strings.HasSuffix(path, ".gz") {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			path += ".gz"
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}

	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open gzip %s: %w", filepath.Base(path), err)
	}
	return &gzipFile{gz: gz, f: f}, nil
}

type gzipFile struct {
	gz *gzip.Reader
	f  *os.File
}

func (g *gzipFile) Read(p []byte) (int, error) { return g.gz.Read(p) }

func (g *gzipFile) Close() error {
	gzErr := g.gz.Close()
	fErr := g.f.Close()
	if gzErr != nil {
		return gzErr
	}
	return fErr
}

// readIDXImages reads an IDX image file and returns one byte slice per
// image plus the image dimensions.
func readIDXImages(path string) ([][]byte, int, int, error) {
	r, err := openIDX(path)
	if err != nil {
		return nil, 0, 0, err
	}
	defer r.Close()

	var magic uint32
	if err := binary.Read(r, binary.BigEndian, &magic); err != nil {
		return nil, 0, 0, fmt.Errorf("read magic: %w", err)
	}
	if magic != idxImagesMagic {
		return nil, 0, 0, fmt.Errorf("invalid image magic: got %d, want %d", magic, idxImagesMagic)
	}

	var count, rows, cols uint32
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return nil, 0, 0, err
	}
	if err := binary.Read(r, binary.BigEndian, &rows); err != nil {
		return nil, 0, 0, err
	}
	if err := binary.Read(r, binary.BigEndian, &cols); err != nil {
		return nil, 0, 0, err
	}

	imageSize := int(rows * cols)
	images := make([][]byte, count)
	for i := range images {
		images[i] = make([]byte, imageSize)
		if _, err := io.ReadFull(r, images[i]); err != nil {
			return nil, 0, 0, fmt.Errorf("read image %d: %w", i, err)
		}
	}

	return images, int(rows), int(cols), nil
}

// readIDXLabels reads an IDX label file.
func readIDXLabels(path string) ([]byte, error) {
	r, err := openIDX(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var magic uint32
	if err := binary.Read(r, binary.BigEndian, &magic); err != nil {
		return nil, fmt.Errorf("read magic: %w", err)
	}
	if magic != idxLabelsMagic {
		return nil, fmt.Errorf("invalid label magic: got %d, want %d", magic, idxLabelsMagic)
	}

	var count uint32
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return nil, err
	}

	labels := make([]byte, count)
	if _, err := io.ReadFull(r, labels); err != nil {
		return nil, fmt.Errorf("read labels: %w", err)
	}
	return labels, nil
}

// loadPair reads one image/label file pair into a Split, normalizing
// pixels to [0, 1].
func loadPair(imagePath, labelPath string) (*Split, error) {
	imagesRaw, rows, cols, err := readIDXImages(imagePath)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", filepath.Base(imagePath), err)
	}
	if rows*cols != ImagePixels {
		return nil, fmt.Errorf("load %s: %dx%d images, want 28x28", filepath.Base(imagePath), rows, cols)
	}

	labelsRaw, err := readIDXLabels(labelPath)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", filepath.Base(labelPath), err)
	}
	if len(imagesRaw) != len(labelsRaw) {
		return nil, fmt.Errorf("image count %d != label count %d", len(imagesRaw), len(labelsRaw))
	}

	images := make([][]float32, len(imagesRaw))
	labels := make([]int, len(labelsRaw))
	for i, raw := range imagesRaw {
		img := make([]float32, ImagePixels)
		for j, b := range raw {
			img[j] = float32(b) / 255.0
		}
		images[i] = img
		labels[i] = int(labelsRaw[i])
	}

	return NewSplit(images, labels)
}

// Load reads the Fashion-MNIST train and test splits from dir.
// Files may be present either gzipped (as distributed) or extracted.
func Load(dir string) (train, test *Split, err error) {
	train, err = loadPair(
		filepath.Join(dir, "train-images-idx3-ubyte"),
		filepath.Join(dir, "train-labels-idx1-ubyte"),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("training set: %w", err)
	}

	test, err = loadPair(
		filepath.Join(dir, "t10k-images-idx3-ubyte"),
		filepath.Join(dir, "t10k-labels-idx1-ubyte"),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("test set: %w", err)
	}

	return train, test, nil
}
