// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bbwen/molexplain/internal/container"
	"github.com/bbwen/molexplain/internal/dataset"
	"github.com/bbwen/molexplain/internal/explain"
	"github.com/bbwen/molexplain/internal/render"
	"github.com/bbwen/molexplain/pkg/types"
)

const defaultOutDir = "output/figures"

var visualizeCmd = &cobra.Command{
	Use:   "visualize [dataset]",
	Short: "Render per-molecule attribution highlights",
	Long: `Visualize folds and normalizes a benchmark's importances and writes one
highlight document per molecule. With --draw the documents are also piped
through the rdkit-draw container to produce PNG images.`,
	Args: cobra.ExactArgs(1),
	RunE: runVisualize,
}

func init() {
	visualizeCmd.Flags().String("data-dir", defaultDataDir, "base directory for benchmarks")
	visualizeCmd.Flags().String("importances", "", "importances path (default <data-dir>/<dataset>/importances.jsonl)")
	visualizeCmd.Flags().String("normalizer", "", "pooled rescaling strategy: minmax or quantile (default minmax)")
	visualizeCmd.Flags().Bool("positive-only", false, "fit the normalizer on positive pooled values only")
	visualizeCmd.Flags().String("out-dir", defaultOutDir, "directory for highlight documents and images")
	visualizeCmd.Flags().Float64("eps", 0.1, "absolute importance below which an atom stays uncolored")
	visualizeCmd.Flags().Float64("vis-factor", 1.0, "highlight radius scale factor")
	visualizeCmd.Flags().Int("width", 400, "image width in pixels")
	visualizeCmd.Flags().Int("height", 200, "image height in pixels")
	visualizeCmd.Flags().Bool("draw", false, "render PNG images through the drawing container")
	visualizeCmd.Flags().String("renderer-image", "", "drawing container image (default rdkit-draw:latest)")

	rootCmd.AddCommand(visualizeCmd)
}

func runVisualize(cmd *cobra.Command, args []string) error {
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
	outDir, _ := cmd.Flags().GetString("out-dir")
	eps, _ := cmd.Flags().GetFloat64("eps")
	visFactor, _ := cmd.Flags().GetFloat64("vis-factor")
	width, _ := cmd.Flags().GetInt("width")
	height, _ := cmd.Flags().GetInt("height")
	draw, _ := cmd.Flags().GetBool("draw")
	rendererImage, _ := cmd.Flags().GetString("renderer-image")
	if rendererImage == "" {
		rendererImage = viper.GetString("visualize.renderer_image")
	}

	ds, err := dataset.Load(filepath.Join(dataDir, name))
	if err != nil {
		return err
	}
	records, err := dataset.LoadImportances(impPath)
	if err != nil {
		return err
	}

	mols, vectors, err := explain.PrepareAttributions(ds.SMILES, records)
	if err != nil {
		return err
	}
	norm, err := explain.Normalize(vectors, types.EvaluateConfig{
		Normalizer:   normalizer,
		PositiveOnly: positiveOnly,
	})
	if err != nil {
		return err
	}

	visCfg := types.VisualizeConfig{
		Eps:       eps,
		VisFactor: visFactor,
		ImgWidth:  width,
		ImgHeight: height,
		OutDir:    outDir,
	}
	docs, err := explain.Highlights(mols, norm, visCfg)
	if err != nil {
		return err
	}

	var renderer *render.RDKitRenderer
	if draw {
		rt, err := container.DetectRuntime()
		if err != nil {
			return err
		}
		renderer, err = render.NewRDKitRenderer(rt, rendererImage)
		if err != nil {
			return err
		}
	}

	docDir := filepath.Join(outDir, name)
	for _, doc := range docs {
		base := fmt.Sprintf("mol-%04d", doc.Index)
		if err := render.WriteHighlight(doc, filepath.Join(docDir, base+".json")); err != nil {
			return err
		}
		if renderer != nil {
			if err := renderer.Draw(doc, filepath.Join(docDir, base+".png")); err != nil {
				return err
			}
		}
	}

	what := "highlight documents"
	if draw {
		what = "highlight documents and images"
	}
	fmt.Printf("wrote %d %s to %s\n", len(docs), what, docDir)
	return nil
}
