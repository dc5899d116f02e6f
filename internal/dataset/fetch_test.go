// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bbwen/molexplain/pkg/types"
)

func TestFetch(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		switch r.URL.Path {
		case "/benzene/" + MoleculesFile:
			w.Write([]byte("smiles\nc1ccccc1\n"))
		case "/benzene/" + TruthFile:
			w.Write([]byte("atoms:\n  - smiles: c1ccccc1\n    labels: [0, 0, 0, 0, 0, 0]\n"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	cfg := types.DatasetConfig{
		BaseURL: srv.URL,
		DataDir: t.TempDir(),
		Token:   "tk_abc123",
	}

	var buf bytes.Buffer
	result := Fetch(context.Background(), srv.Client(), "benzene", cfg, &buf)

	if result.Downloaded != 2 || result.Skipped != 0 || result.Failed != 0 {
		t.Fatalf("result = %+v, want 2 downloaded", result)
	}
	if gotAuth != "Bearer tk_abc123" {
		t.Errorf("Authorization = %q, want bearer token", gotAuth)
	}

	ds, err := Load(filepath.Join(cfg.DataDir, "benzene"))
	if err != nil {
		t.Fatalf("Load after fetch: %v", err)
	}
	if len(ds.SMILES) != 1 || ds.Truth == nil {
		t.Errorf("fetched benchmark = %+v", ds)
	}
	if !strings.Contains(buf.String(), "Fetch summary: 2 downloaded") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestFetchSkipsExisting(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request for %s", r.URL.Path)
	}))
	defer srv.Close()

	cfg := types.DatasetConfig{BaseURL: srv.URL, DataDir: t.TempDir()}
	benchDir := filepath.Join(cfg.DataDir, "benzene")
	os.MkdirAll(benchDir, 0o755)
	os.WriteFile(filepath.Join(benchDir, MoleculesFile), []byte("smiles\nC\n"), 0o644)
	os.WriteFile(filepath.Join(benchDir, TruthFile), []byte("atoms: []\n"), 0o644)

	var buf bytes.Buffer
	result := Fetch(context.Background(), srv.Client(), "benzene", cfg, &buf)

	if result.Skipped != 2 || result.Downloaded != 0 {
		t.Errorf("result = %+v, want 2 skipped", result)
	}
	if !strings.Contains(buf.String(), "already exists") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestFetchToleratesMissingTruth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, MoleculesFile) {
			w.Write([]byte("smiles\nCCO\n"))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	cfg := types.DatasetConfig{BaseURL: srv.URL, DataDir: t.TempDir()}

	var buf bytes.Buffer
	result := Fetch(context.Background(), srv.Client(), "esol", cfg, &buf)

	if result.Downloaded != 1 || result.Skipped != 1 || result.Failed != 0 {
		t.Fatalf("result = %+v, want 1 downloaded and 1 skipped", result)
	}
	if !strings.Contains(buf.String(), "no ground truth") {
		t.Errorf("output = %q", buf.String())
	}
	if _, err := os.Stat(filepath.Join(cfg.DataDir, "esol", TruthFile)); !os.IsNotExist(err) {
		t.Error("missing truth should leave no file behind")
	}
}

func TestFetchContinuesAfterFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, MoleculesFile) {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("atoms: []\n"))
	}))
	defer srv.Close()

	cfg := types.DatasetConfig{BaseURL: srv.URL, DataDir: t.TempDir()}

	var buf bytes.Buffer
	result := Fetch(context.Background(), srv.Client(), "esol", cfg, &buf)

	if result.Failed != 1 || result.Downloaded != 1 {
		t.Fatalf("result = %+v, want 1 failed and 1 downloaded", result)
	}
	if !result.HasFailures() {
		t.Error("HasFailures = false")
	}
	if !strings.Contains(buf.String(), "HTTP 500") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestFetchLeavesNoPartialFiles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusBadGateway)
	}))
	defer srv.Close()

	cfg := types.DatasetConfig{BaseURL: srv.URL, DataDir: t.TempDir()}
	Fetch(context.Background(), srv.Client(), "esol", cfg, new(bytes.Buffer))

	entries, err := os.ReadDir(filepath.Join(cfg.DataDir, "esol"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("benchmark dir not empty after failed fetch: %v", entries)
	}
}
