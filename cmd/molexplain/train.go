// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bbwen/molexplain/internal/container"
	"github.com/bbwen/molexplain/internal/dataset"
	"github.com/bbwen/molexplain/internal/model"
)

const defaultCheckpointDir = "checkpoints"

var trainCmd = &cobra.Command{
	Use:   "train [dataset]",
	Short: "Train a model on a benchmark",
	Long: `Train runs the containerized framework on a benchmark's molecule list and
saves the resulting checkpoint. Hyperparameters come from the model config
file and are passed through to the framework unchanged.`,
	Args: cobra.ExactArgs(1),
	RunE: runTrain,
}

func init() {
	trainCmd.Flags().String("data-dir", defaultDataDir, "base directory for benchmarks")
	trainCmd.Flags().String("checkpoint-dir", defaultCheckpointDir, "directory for model checkpoints")
	trainCmd.Flags().String("image", "", "framework container image (default molrep:latest)")
	trainCmd.Flags().String("model-config", "", "framework hyperparameter YAML")

	rootCmd.AddCommand(trainCmd)
}

// newRunner detects a container runtime and wraps it in a model runner.
func newRunner(image string) (model.Runner, error) {
	if image == "" {
		image = viper.GetString("model.image")
	}
	rt, err := container.DetectRuntime()
	if err != nil {
		return nil, err
	}
	return model.NewContainerRunner(rt, image)
}

// checkpointPath is where a benchmark's trained checkpoint lives.
func checkpointPath(checkpointDir, name string) string {
	return filepath.Join(checkpointDir, name+".ckpt")
}

func runTrain(cmd *cobra.Command, args []string) error {
	name := args[0]
	dataDir, _ := cmd.Flags().GetString("data-dir")
	checkpointDir, _ := cmd.Flags().GetString("checkpoint-dir")
	image, _ := cmd.Flags().GetString("image")
	modelConfig, _ := cmd.Flags().GetString("model-config")
	if modelConfig == "" {
		modelConfig = viper.GetString("model.config_path")
	}

	ds, err := dataset.Load(filepath.Join(dataDir, name))
	if err != nil {
		return err
	}

	params, err := model.LoadParams(modelConfig)
	if err != nil {
		return err
	}

	runner, err := newRunner(image)
	if err != nil {
		return err
	}

	fmt.Printf("training on %s (%d molecules)\n", name, len(ds.SMILES))
	ckpt, err := runner.Train(model.TrainRequest{
		Dataset: name,
		SMILES:  ds.SMILES,
		Params:  params,
	})
	if err != nil {
		return err
	}

	dest := checkpointPath(checkpointDir, name)
	if err := os.MkdirAll(checkpointDir, 0o755); err != nil {
		return fmt.Errorf("creating checkpoint directory: %w", err)
	}
	if err := os.WriteFile(dest, ckpt, 0o644); err != nil {
		return fmt.Errorf("writing checkpoint: %w", err)
	}

	fmt.Printf("checkpoint saved: %s (%d bytes)\n", dest, len(ckpt))
	return nil
}
