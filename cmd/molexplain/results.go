// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bbwen/molexplain/internal/results"
	"github.com/bbwen/molexplain/pkg/types"
)

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Browse recorded evaluation runs",
}

var resultsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs, newest first",
	RunE:  runResultsList,
}

var resultsShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show one run in detail",
	Args:  cobra.ExactArgs(1),
	RunE:  runResultsShow,
}

var resultsReportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write a Markdown report of all runs to stdout",
	RunE:  runResultsReport,
}

var resultsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every run to export.yaml in the results directory",
	RunE:  runResultsExport,
}

func init() {
	resultsCmd.PersistentFlags().String("results-dir", defaultResultsDir, "directory for the results store")
	resultsListCmd.Flags().String("dataset", "", "only list runs for this benchmark")
	resultsListCmd.Flags().Int("limit", 0, "maximum runs to list (default 20)")

	resultsCmd.AddCommand(resultsListCmd)
	resultsCmd.AddCommand(resultsShowCmd)
	resultsCmd.AddCommand(resultsReportCmd)
	resultsCmd.AddCommand(resultsExportCmd)
	rootCmd.AddCommand(resultsCmd)
}

func openStore(cmd *cobra.Command) (*results.Store, error) {
	resultsDir, _ := cmd.Flags().GetString("results-dir")
	return results.NewStore(types.ResultsConfig{ResultsDir: resultsDir})
}

func runResultsList(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	ds, _ := cmd.Flags().GetString("dataset")
	limit, _ := cmd.Flags().GetInt("limit")

	runs, err := store.List(cmd.Context(), ds, limit)
	if err != nil {
		return err
	}
	results.WriteTable(os.Stdout, runs)
	return nil
}

func runResultsShow(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return err
	}

	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := store.Get(cmd.Context(), id)
	if err != nil {
		return err
	}
	results.WriteRun(os.Stdout, run)
	return nil
}

func runResultsReport(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.All(cmd.Context())
	if err != nil {
		return err
	}
	results.WriteMarkdownReport(os.Stdout, runs)
	return nil
}

func runResultsExport(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	return store.ExportYAML(cmd.Context())
}
