// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings for stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "molexplain/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// DatasetConfig holds settings for benchmark acquisition and loading.
type DatasetConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the benchmark mirror. Archives live at BaseURL/<name>/<file>.
	BaseURL string `json:"base_url" yaml:"base_url"`

	// DataDir is the base directory for datasets (one subdirectory per benchmark).
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// FetchDelay is the delay between consecutive file downloads (default 1s).
	FetchDelay time.Duration `json:"fetch_delay" yaml:"fetch_delay"`

	// Token is an optional bearer token for the benchmark mirror.
	Token string `json:"token,omitempty" yaml:"token,omitempty"`
}

// EvaluateConfig holds settings for attribution scoring.
type EvaluateConfig struct {
	// Normalizer selects the pooled rescaling strategy: minmax or quantile.
	Normalizer string `json:"normalizer" yaml:"normalizer"`

	// PositiveOnly fits the normalizer on the positive pooled values only.
	PositiveOnly bool `json:"positive_only" yaml:"positive_only"`
}

// VisualizeConfig holds settings for highlight generation and drawing.
type VisualizeConfig struct {
	// Eps is the absolute importance below which an atom stays uncolored.
	Eps float64 `json:"eps" yaml:"eps"`

	// VisFactor scales the per-atom highlight radius.
	VisFactor float64 `json:"vis_factor" yaml:"vis_factor"`

	// ImgWidth and ImgHeight are the rendered image dimensions in pixels.
	ImgWidth  int `json:"img_width" yaml:"img_width"`
	ImgHeight int `json:"img_height" yaml:"img_height"`

	// OutDir is the directory for highlight documents and rendered images.
	OutDir string `json:"out_dir" yaml:"out_dir"`

	// RendererImage is the container image that draws molecules
	// (default "rdkit-draw:latest").
	RendererImage string `json:"renderer_image" yaml:"renderer_image"`
}

// ModelConfig holds settings for the external training framework.
type ModelConfig struct {
	// Image is the framework container image (default "molrep:latest").
	Image string `json:"image" yaml:"image"`

	// ConfigPath is the framework-native model/hyperparameter YAML. Its
	// contents are opaque payload passed through to the framework.
	ConfigPath string `json:"config_path" yaml:"config_path"`

	// CheckpointDir is the directory for model checkpoints.
	CheckpointDir string `json:"checkpoint_dir" yaml:"checkpoint_dir"`
}

// ResultsConfig holds settings for the evaluation results store.
type ResultsConfig struct {
	// ResultsDir is the directory for the SQLite index and exports.
	ResultsDir string `json:"results_dir" yaml:"results_dir"`

	// MaxResults is the default maximum number of listed runs (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Dataset   DatasetConfig   `json:"dataset" yaml:"dataset"`
	Evaluate  EvaluateConfig  `json:"evaluate" yaml:"evaluate"`
	Visualize VisualizeConfig `json:"visualize" yaml:"visualize"`
	Model     ModelConfig     `json:"model" yaml:"model"`
	Results   ResultsConfig   `json:"results" yaml:"results"`
}
