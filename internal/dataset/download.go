package dataset

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
)

// baseURL hosts the official Fashion-MNIST distribution.
const baseURL = "http://fashion-mnist.s3-website.eu-central-1.amazonaws.com/"

var datasetFiles = []string{
	"train-images-idx3-ubyte.gz",
	"train-labels-idx1-ubyte.gz",
	"t10k-images-idx3-ubyte.gz",
	"t10k-labels-idx1-ubyte.gz",
}

// Download fetches any missing Fashion-MNIST files into dir. Files already
// present (gzipped or extracted) are left alone.
func Download(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	client := &http.Client{Timeout: 5 * time.Minute}

	for _, name := range datasetFiles {
		gzPath := filepath.Join(dir, name)
		plainPath := gzPath[:len(gzPath)-len(".gz")]
		if fileExists(gzPath) || fileExists(plainPath) {
			continue
		}

		log.Info().Str("file", name).Msg("downloading dataset file")
		if err := fetch(client, baseURL+name, gzPath); err != nil {
			return fmt.Errorf("download %s: %w", name, err)
		}
	}

	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// fetch downloads url into path via a temporary file so an interrupted
// download never leaves a truncated dataset file behind.
func fetch(client *http.Client, url, path string) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}
