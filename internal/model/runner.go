// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package model drives the GNN framework, which runs as a container image.
// Jobs go in as YAML documents on stdin; the framework answers with
// checkpoint bytes (training) or importance records as JSONL (explaining).
package model

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/bbwen/molexplain/internal/container"
	"github.com/bbwen/molexplain/pkg/types"
)

// DefaultImage is the model framework container image.
const DefaultImage = "molrep:latest"

// TrainRequest is the job document for a training run. The molecule list is
// embedded so the container needs no access to host paths; hyperparameters
// come from the model config file when one is set.
type TrainRequest struct {
	Dataset string         `yaml:"dataset"`
	SMILES  []string       `yaml:"smiles"`
	Params  map[string]any `yaml:"params,omitempty"`
}

// ExplainRequest is the job document for an attribution run. The checkpoint
// travels base64-encoded inside the document, again to avoid host mounts.
type ExplainRequest struct {
	Dataset    string   `yaml:"dataset"`
	SMILES     []string `yaml:"smiles"`
	Checkpoint []byte   `yaml:"checkpoint"`
}

// Runner trains a model and produces per-molecule importances. The container
// implementation is the production path; tests substitute their own.
type Runner interface {
	// Train runs a training job and returns the checkpoint bytes.
	Train(req TrainRequest) ([]byte, error)

	// Explain runs an attribution job and returns one importance record
	// per molecule, in request order.
	Explain(req ExplainRequest) ([]types.ImportanceRecord, error)
}

// ContainerRunner runs jobs by piping them through the model framework
// image. It depends on a container.Runtime (docker or podman) injected at
// construction time.
type ContainerRunner struct {
	runtime container.Runtime
	image   string
}

// NewContainerRunner creates a runner that uses the given container runtime.
// An empty image selects DefaultImage. It verifies that the image exists
// locally before returning.
func NewContainerRunner(rt container.Runtime, image string) (*ContainerRunner, error) {
	if image == "" {
		image = DefaultImage
	}
	if err := rt.ImageExists(image); err != nil {
		return nil, fmt.Errorf("model image not available in %s: %w", rt.Name(), err)
	}
	return &ContainerRunner{runtime: rt, image: image}, nil
}

// Train pipes the training job through the container and returns the
// checkpoint the framework writes to stdout.
func (r *ContainerRunner) Train(req TrainRequest) ([]byte, error) {
	doc, err := yaml.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding training job for %s: %w", req.Dataset, err)
	}

	var out bytes.Buffer
	if err := r.runtime.Run(r.image, []string{"train"}, bytes.NewReader(doc), &out); err != nil {
		return nil, fmt.Errorf("training on %s: %w", req.Dataset, err)
	}
	if out.Len() == 0 {
		return nil, fmt.Errorf("training on %s produced an empty checkpoint", req.Dataset)
	}
	return out.Bytes(), nil
}

// Explain pipes the attribution job through the container and decodes the
// JSONL it writes to stdout.
func (r *ContainerRunner) Explain(req ExplainRequest) ([]types.ImportanceRecord, error) {
	doc, err := yaml.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding attribution job for %s: %w", req.Dataset, err)
	}

	var out bytes.Buffer
	if err := r.runtime.Run(r.image, []string{"explain"}, bytes.NewReader(doc), &out); err != nil {
		return nil, fmt.Errorf("explaining %s: %w", req.Dataset, err)
	}

	records, err := decodeImportances(&out)
	if err != nil {
		return nil, fmt.Errorf("decoding attribution output for %s: %w", req.Dataset, err)
	}
	if len(records) != len(req.SMILES) {
		return nil, fmt.Errorf("attribution output for %s has %d records, want %d",
			req.Dataset, len(records), len(req.SMILES))
	}
	return records, nil
}

// decodeImportances reads JSONL importance records from the framework's
// stdout, skipping blank lines.
func decodeImportances(r *bytes.Buffer) ([]types.ImportanceRecord, error) {
	var records []types.ImportanceRecord
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var rec types.ImportanceRecord
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no importance records in output")
	}
	return records, nil
}

// LoadParams reads model hyperparameters from a YAML config file. An empty
// path yields no parameters.
func LoadParams(path string) (map[string]any, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model config %s: %w", path, err)
	}
	var params map[string]any
	if err := yaml.Unmarshal(data, &params); err != nil {
		return nil, fmt.Errorf("parsing model config %s: %w", path, err)
	}
	return params, nil
}
