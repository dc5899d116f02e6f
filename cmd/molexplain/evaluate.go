// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bbwen/molexplain/internal/dataset"
	"github.com/bbwen/molexplain/internal/explain"
	"github.com/bbwen/molexplain/internal/results"
	"github.com/bbwen/molexplain/pkg/types"
)

const defaultResultsDir = "results"

var evaluateCmd = &cobra.Command{
	Use:   "evaluate [dataset]",
	Short: "Score importances against a benchmark's ground truth",
	Long: `Evaluate folds bond importances onto atoms, normalizes the pooled
importance distribution, scores the result against the benchmark's ground
truth, and records the run in the results store. Pair-shaped ground truth
is scored with signed three-way attribution classes; per-atom binary truth
with an optimal-threshold search unless --no-search is set.`,
	Args: cobra.ExactArgs(1),
	RunE: runEvaluate,
}

func init() {
	evaluateCmd.Flags().String("data-dir", defaultDataDir, "base directory for benchmarks")
	evaluateCmd.Flags().String("importances", "", "importances path (default <data-dir>/<dataset>/importances.jsonl)")
	evaluateCmd.Flags().String("normalizer", "", "pooled rescaling strategy: minmax or quantile (default minmax)")
	evaluateCmd.Flags().Bool("positive-only", false, "fit the normalizer on positive pooled values only")
	evaluateCmd.Flags().Bool("no-search", false, "skip the threshold search and cut at 0.5")
	evaluateCmd.Flags().String("results-dir", defaultResultsDir, "directory for the results store")
	evaluateCmd.Flags().Bool("no-record", false, "print the report without recording the run")

	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	name := args[0]
	dataDir, _ := cmd.Flags().GetString("data-dir")
	impPath, _ := cmd.Flags().GetString("importances")
	if impPath == "" {
		impPath = filepath.Join(dataDir, name, dataset.ImportancesFile)
	}
	normalizer, _ := cmd.Flags().GetString("normalizer")
	if normalizer == "" {
		normalizer = viper.GetString("evaluate.normalizer")
	}
	positiveOnly, _ := cmd.Flags().GetBool("positive-only")
	noSearch, _ := cmd.Flags().GetBool("no-search")
	resultsDir, _ := cmd.Flags().GetString("results-dir")
	noRecord, _ := cmd.Flags().GetBool("no-record")

	ds, err := dataset.Load(filepath.Join(dataDir, name))
	if err != nil {
		return err
	}

	records, err := dataset.LoadImportances(impPath)
	if err != nil {
		return err
	}

	evalCfg := types.EvaluateConfig{
		Normalizer:   normalizer,
		PositiveOnly: positiveOnly,
	}

	_, vectors, err := explain.PrepareAttributions(ds.SMILES, records)
	if err != nil {
		return err
	}
	norm, err := explain.Normalize(vectors, evalCfg)
	if err != nil {
		return err
	}
	report, err := explain.Evaluate(ds.SMILES, norm, ds.Truth, !noSearch)
	if err != nil {
		return err
	}

	run := results.Run{
		Dataset:    name,
		Normalizer: evalCfg.Normalizer,
		Molecules:  len(ds.SMILES),
		Report:     report,
	}
	if run.Normalizer == "" {
		run.Normalizer = "minmax"
	}

	if !noRecord {
		store, err := results.NewStore(types.ResultsConfig{ResultsDir: resultsDir})
		if err != nil {
			return err
		}
		defer store.Close()

		run, err = store.Record(cmd.Context(), run)
		if err != nil {
			return fmt.Errorf("recording run: %w", err)
		}
		if err := store.ExportYAML(cmd.Context()); err != nil {
			fmt.Fprintf(os.Stderr, "warning: export.yaml write failed: %v\n", err)
		}
	}

	results.WriteRun(os.Stdout, run)
	return nil
}
