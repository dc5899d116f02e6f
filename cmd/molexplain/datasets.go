// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bbwen/molexplain/internal/dataset"
	"github.com/bbwen/molexplain/pkg/types"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultDelay     = 1 * time.Second
	defaultUserAgent = "molexplain/0.1"
	defaultDataDir   = "data"
)

var datasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "Fetch and list attribution benchmarks",
}

var datasetsFetchCmd = &cobra.Command{
	Use:   "fetch [names...]",
	Short: "Download benchmarks from the mirror",
	Long: `Fetch downloads benchmark files (molecule list and ground-truth
attributions) from the configured mirror into the data directory. Files
already on disk are skipped.`,
	RunE: runDatasetsFetch,
}

var datasetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List benchmarks present in the data directory",
	RunE:  runDatasetsList,
}

func init() {
	datasetsFetchCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	datasetsFetchCmd.Flags().Duration("delay", 0, "delay between consecutive downloads (default 1s)")
	datasetsFetchCmd.Flags().String("base-url", "", "benchmark mirror base URL")
	datasetsCmd.PersistentFlags().String("data-dir", defaultDataDir, "base directory for benchmarks")

	datasetsCmd.AddCommand(datasetsFetchCmd)
	datasetsCmd.AddCommand(datasetsListCmd)
	rootCmd.AddCommand(datasetsCmd)
}

// datasetConfig assembles the fetch configuration from flags, the config
// file, and loaded secrets.
func datasetConfig(cmd *cobra.Command) (types.DatasetConfig, error) {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}
	delay, _ := cmd.Flags().GetDuration("delay")
	if delay == 0 {
		delay = defaultDelay
	}
	dataDir, _ := cmd.Flags().GetString("data-dir")

	baseURL, _ := cmd.Flags().GetString("base-url")
	if baseURL == "" {
		baseURL = viper.GetString("dataset.base_url")
	}
	if baseURL == "" {
		return types.DatasetConfig{}, fmt.Errorf("no benchmark mirror configured (set --base-url or dataset.base_url)")
	}

	return types.DatasetConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
		},
		BaseURL:    baseURL,
		DataDir:    dataDir,
		FetchDelay: delay,
		Token:      secretDefault("benchmark-mirror-token", viper.GetString("dataset.token")),
	}, nil
}

func runDatasetsFetch(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more benchmark names")
	}

	cfg, err := datasetConfig(cmd)
	if err != nil {
		return err
	}

	client := &http.Client{
		Timeout: cfg.Timeout,
	}

	failed := 0
	for _, name := range args {
		result := dataset.Fetch(cmd.Context(), client, name, cfg, os.Stdout)
		failed += result.Failed
	}
	if failed > 0 {
		return fmt.Errorf("%d file(s) failed to download", failed)
	}
	return nil
}

func runDatasetsList(cmd *cobra.Command, args []string) error {
	dataDir, _ := cmd.Flags().GetString("data-dir")

	names, err := dataset.List(dataDir)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Println("no benchmarks found")
		return nil
	}

	for _, name := range names {
		ds, err := dataset.Load(filepath.Join(dataDir, name))
		if err != nil {
			fmt.Printf("%-20s (unreadable: %v)\n", name, err)
			continue
		}
		shape := "no ground truth"
		if ds.Truth != nil {
			if ds.Truth.IsCliff() {
				shape = fmt.Sprintf("%d cliff pairs", len(ds.Truth.Pairs))
			} else {
				shape = fmt.Sprintf("%d labeled molecules", len(ds.Truth.Atoms))
			}
		}
		fmt.Printf("%-20s %d molecules, %s\n", name, len(ds.SMILES), shape)
	}
	return nil
}
