// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bbwen/molexplain/internal/dataset"
	"github.com/bbwen/molexplain/internal/model"
)

var explainCmd = &cobra.Command{
	Use:   "explain [dataset]",
	Short: "Produce per-molecule importances from a trained model",
	Long: `Explain runs the framework's attribution method over a benchmark using the
checkpoint saved by train, and writes one importance record per molecule to
the benchmark's importances.jsonl.`,
	Args: cobra.ExactArgs(1),
	RunE: runExplain,
}

func init() {
	explainCmd.Flags().String("data-dir", defaultDataDir, "base directory for benchmarks")
	explainCmd.Flags().String("checkpoint-dir", defaultCheckpointDir, "directory for model checkpoints")
	explainCmd.Flags().String("image", "", "framework container image (default molrep:latest)")
	explainCmd.Flags().String("out", "", "importances output path (default <data-dir>/<dataset>/importances.jsonl)")

	rootCmd.AddCommand(explainCmd)
}

func runExplain(cmd *cobra.Command, args []string) error {
	name := args[0]
	dataDir, _ := cmd.Flags().GetString("data-dir")
	checkpointDir, _ := cmd.Flags().GetString("checkpoint-dir")
	image, _ := cmd.Flags().GetString("image")
	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		out = filepath.Join(dataDir, name, dataset.ImportancesFile)
	}

	ds, err := dataset.Load(filepath.Join(dataDir, name))
	if err != nil {
		return err
	}

	ckpt, err := os.ReadFile(checkpointPath(checkpointDir, name))
	if err != nil {
		return fmt.Errorf("reading checkpoint (run train first?): %w", err)
	}

	runner, err := newRunner(image)
	if err != nil {
		return err
	}

	fmt.Printf("explaining %s (%d molecules)\n", name, len(ds.SMILES))
	records, err := runner.Explain(model.ExplainRequest{
		Dataset:    name,
		SMILES:     ds.SMILES,
		Checkpoint: ckpt,
	})
	if err != nil {
		return err
	}

	if err := dataset.WriteImportances(out, records); err != nil {
		return err
	}
	fmt.Printf("importances saved: %s (%d records)\n", out, len(records))
	return nil
}
