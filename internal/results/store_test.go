// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package results

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.yaml.in/yaml/v3"

	"github.com/bbwen/molexplain/internal/attribution"
	"github.com/bbwen/molexplain/pkg/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(types.ResultsConfig{ResultsDir: t.TempDir()})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRun(dataset string) Run {
	var report types.MetricReport
	report.Add(attribution.MetricAUROC, 0.91)
	report.Add(attribution.MetricF1, 0.84)
	report.Add(attribution.MetricACC, 0.88)
	report.Threshold = 0.35
	return Run{
		Dataset:    dataset,
		Normalizer: "minmax",
		Molecules:  120,
		Report:     report,
	}
}

func TestRecordAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	saved, err := s.Record(ctx, sampleRun("esol"))
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if saved.ID == 0 {
		t.Error("recorded run has no id")
	}
	if saved.CreatedAt.IsZero() {
		t.Error("recorded run has no timestamp")
	}

	got, err := s.Get(ctx, saved.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Dataset != "esol" || got.Normalizer != "minmax" || got.Molecules != 120 {
		t.Errorf("run = %+v", got)
	}
	if got.Report.Threshold != 0.35 {
		t.Errorf("threshold = %g, want 0.35", got.Report.Threshold)
	}

	// Metric order survives the round trip.
	wantOrder := []string{attribution.MetricAUROC, attribution.MetricF1, attribution.MetricACC}
	if len(got.Report.Metrics) != len(wantOrder) {
		t.Fatalf("metrics = %+v", got.Report.Metrics)
	}
	for i, name := range wantOrder {
		if got.Report.Metrics[i].Name != name {
			t.Errorf("metric %d = %q, want %q", i, got.Report.Metrics[i].Name, name)
		}
	}
}

func TestRecordNaNMetricRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// An all-undefined molecule set yields a NaN mean; the store must keep
	// it recoverable, not reject it.
	run := Run{Dataset: "esol", Normalizer: "minmax", Molecules: 1}
	run.Report.Add(attribution.MetricF1, math.NaN())
	run.Report.Add(attribution.MetricACC, 0.5)
	run.Report.Threshold = types.NoThreshold

	saved, err := s.Record(ctx, run)
	if err != nil {
		t.Fatalf("Record with NaN metric: %v", err)
	}

	got, err := s.Get(ctx, saved.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	f1, ok := got.Report.Get(attribution.MetricF1)
	if !ok || !math.IsNaN(f1) {
		t.Errorf("F1 = %g (%v), want NaN", f1, ok)
	}
	acc, ok := got.Report.Get(attribution.MetricACC)
	if !ok || acc != 0.5 {
		t.Errorf("ACC = %g (%v), want 0.5", acc, ok)
	}
}

func TestGetMissing(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Get(context.Background(), 999); err == nil {
		t.Error("Get succeeded for a missing run")
	}
}

func TestList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, ds := range []string{"esol", "herg", "esol"} {
		if _, err := s.Record(ctx, sampleRun(ds)); err != nil {
			t.Fatal(err)
		}
	}

	t.Run("newest first", func(t *testing.T) {
		runs, err := s.List(ctx, "", 0)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(runs) != 3 {
			t.Fatalf("runs = %d, want 3", len(runs))
		}
		if runs[0].ID < runs[1].ID || runs[1].ID < runs[2].ID {
			t.Errorf("runs not newest first: %d, %d, %d", runs[0].ID, runs[1].ID, runs[2].ID)
		}
	})

	t.Run("dataset filter", func(t *testing.T) {
		runs, err := s.List(ctx, "herg", 0)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(runs) != 1 || runs[0].Dataset != "herg" {
			t.Errorf("runs = %+v", runs)
		}
	})

	t.Run("limit", func(t *testing.T) {
		runs, err := s.List(ctx, "", 2)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(runs) != 2 {
			t.Errorf("runs = %d, want 2", len(runs))
		}
	})
}

func TestStoreReopens(t *testing.T) {
	dir := t.TempDir()
	cfg := types.ResultsConfig{ResultsDir: dir}

	s, err := NewStore(cfg)
	if err != nil {
		t.Fatal(err)
	}
	saved, err := s.Record(context.Background(), sampleRun("esol"))
	if err != nil {
		t.Fatal(err)
	}
	s.Close()

	s2, err := NewStore(cfg)
	if err != nil {
		t.Fatalf("reopening store: %v", err)
	}
	defer s2.Close()

	got, err := s2.Get(context.Background(), saved.ID)
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if got.Dataset != "esol" {
		t.Errorf("run = %+v", got)
	}
}

func TestExportYAML(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(types.ResultsConfig{ResultsDir: dir})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	ctx := context.Background()
	if _, err := s.Record(ctx, sampleRun("esol")); err != nil {
		t.Fatal(err)
	}
	if err := s.ExportYAML(ctx); err != nil {
		t.Fatalf("ExportYAML: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, exportFile))
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	var doc exportDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		t.Fatalf("parsing export: %v", err)
	}
	if doc.RunCount != 1 || len(doc.Runs) != 1 {
		t.Errorf("export = %+v", doc)
	}
	if doc.Runs[0].Dataset != "esol" {
		t.Errorf("exported run = %+v", doc.Runs[0])
	}
}

func TestWriteTable(t *testing.T) {
	var sb strings.Builder
	WriteTable(&sb, nil)
	if !strings.Contains(sb.String(), "no runs recorded") {
		t.Errorf("empty table = %q", sb.String())
	}

	run := sampleRun("esol")
	run.ID = 7
	sb.Reset()
	WriteTable(&sb, []Run{run})
	out := sb.String()
	for _, want := range []string{"esol", "minmax", "0.35", "0.9100"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteRunFormatsUndefinedScores(t *testing.T) {
	run := sampleRun("esol")
	run.Report = types.MetricReport{Threshold: types.NoThreshold}
	run.Report.Add(attribution.MetricF1, math.NaN())

	var sb strings.Builder
	WriteRun(&sb, run)
	out := sb.String()
	if !strings.Contains(out, "n/a") {
		t.Errorf("NaN score not rendered as n/a:\n%s", out)
	}
	if !strings.Contains(out, "threshold: -") {
		t.Errorf("sentinel threshold not rendered as dash:\n%s", out)
	}
}

func TestWriteMarkdownReport(t *testing.T) {
	runA := sampleRun("esol")
	runA.ID = 1
	runB := sampleRun("herg")
	runB.ID = 2
	runB.Normalizer = "quantile"

	var sb strings.Builder
	WriteMarkdownReport(&sb, []Run{runA, runB})
	out := sb.String()

	for _, want := range []string{"## esol", "## herg", "| Run | Normalizer | Threshold |", "quantile"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}
