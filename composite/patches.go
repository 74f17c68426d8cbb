package composite

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	_ "image/jpeg"
	_ "image/png"
)

// DirPatches resolves patch references against a base directory. An
// absolute reference is used as-is; anything else is joined to the
// directory. Decoding supports the formats the extraction step emits
// (PNG, JPEG).
type DirPatches struct {
	Dir string
}

// LoadPatch reads and decodes the referenced patch raster.
func (d DirPatches) LoadPatch(ref string) (image.Image, error) {
	if ref == "" {
		return nil, fmt.Errorf("empty patch reference")
	}

	path := ref
	if !filepath.IsAbs(path) && d.Dir != "" {
		path = filepath.Join(d.Dir, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening patch: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding patch %s: %w", filepath.Base(path), err)
	}
	return img, nil
}
