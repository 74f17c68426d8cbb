package pipeline

import (
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/aenuguzocket/texteditor-pipeline/model"
)

// persistRun writes the run's artifacts into a fresh directory named by
// the run ID: the reference, every input and cleaned layer (names
// derived from z so reruns are byte-comparable), the erase mask, the
// composed canvas, and the JSON report.
func persistRun(outputDir string, reference image.Image, inputs []model.Layer, result *Result) (string, error) {
	dir := filepath.Join(outputDir, result.Report.RunID)
	layersDir := filepath.Join(dir, "layers")
	if err := os.MkdirAll(layersDir, 0o755); err != nil {
		return "", fmt.Errorf("creating run directory: %w", err)
	}

	if err := writePNG(filepath.Join(dir, "reference.png"), reference); err != nil {
		return "", err
	}

	for _, layer := range inputs {
		if layer.Image == nil {
			continue
		}
		name := fmt.Sprintf("layer_%02d.png", layer.Z)
		if err := writePNG(filepath.Join(layersDir, name), layer.Image); err != nil {
			return "", err
		}
	}
	for _, layer := range result.CleanedLayers {
		if layer.Image == nil {
			continue
		}
		name := fmt.Sprintf("layer_%02d_cleaned.png", layer.Z)
		if err := writePNG(filepath.Join(layersDir, name), layer.Image); err != nil {
			return "", err
		}
	}

	if err := writePNG(filepath.Join(dir, "mask.png"), result.Mask); err != nil {
		return "", err
	}
	if err := writePNG(filepath.Join(dir, "composed.png"), result.Composed); err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(result.Report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding report: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "report.json"), data, 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}

	return dir, nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Base(path), err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}
