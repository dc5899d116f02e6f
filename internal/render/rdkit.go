// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/bbwen/molexplain/internal/container"
)

// DefaultImage is the drawing container image: an RDKit script that reads a
// highlight document on stdin and writes a PNG to stdout.
const DefaultImage = "rdkit-draw:latest"

// RDKitRenderer draws highlight documents by piping them through the
// rdkit-draw container image. It depends on a container.Runtime (docker or
// podman) injected at construction time.
type RDKitRenderer struct {
	runtime container.Runtime
	image   string
}

// NewRDKitRenderer creates a renderer that uses the given container runtime.
// An empty image selects DefaultImage. It verifies that the image exists
// locally before returning.
func NewRDKitRenderer(rt container.Runtime, image string) (*RDKitRenderer, error) {
	if image == "" {
		image = DefaultImage
	}
	if err := rt.ImageExists(image); err != nil {
		return nil, fmt.Errorf("renderer image not available in %s: %w", rt.Name(), err)
	}
	return &RDKitRenderer{runtime: rt, image: image}, nil
}

// Draw renders one highlight document to a PNG file at outPath.
func (r *RDKitRenderer) Draw(h Highlight, outPath string) error {
	doc, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("encoding highlight for %s: %w", h.SMILES, err)
	}

	args := []string{
		"--width", strconv.Itoa(h.Width),
		"--height", strconv.Itoa(h.Height),
	}

	var png bytes.Buffer
	if err := r.runtime.Run(r.image, args, bytes.NewReader(doc), &png); err != nil {
		return fmt.Errorf("drawing %s: %w", h.SMILES, err)
	}
	if png.Len() == 0 {
		return fmt.Errorf("renderer produced empty output for %s", h.SMILES)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(outPath, png.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}
	return nil
}

// WriteHighlight saves the highlight document itself as JSON, the artifact
// consumed when drawing is skipped or delegated elsewhere.
func WriteHighlight(h Highlight, outPath string) error {
	data, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding highlight for %s: %w", h.SMILES, err)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	return os.WriteFile(outPath, data, 0o644)
}
