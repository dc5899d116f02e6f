// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the molexplain CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bbwen/molexplain/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds tokens loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns the secret value for key if it exists, or fallback otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the molexplain CLI.
var rootCmd = &cobra.Command{
	Use:   "molexplain",
	Short: "Evaluate molecular attribution quality of GNN explainers",
	Long: `molexplain orchestrates attribution-quality experiments for graph neural
network explainers. It fetches attribution benchmarks, drives model training
and explanation through a containerized framework, folds and normalizes the
resulting importances, scores them against ground truth, and renders
per-molecule highlight images.

Each experiment stage is a subcommand: datasets, train, explain, evaluate,
and visualize. Recorded runs are browsed with the results subcommand.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./molexplain.yaml or ~/.config/molexplain/config.yaml)")
}

func initConfig() {
	// A local .env feeds the environment before viper reads it.
	godotenv.Load()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("molexplain")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "molexplain"))
		}
	}

	viper.SetEnvPrefix("MOLEXPLAIN")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
