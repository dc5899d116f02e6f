// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/bbwen/molexplain/internal/httputil"
	"github.com/bbwen/molexplain/pkg/types"
)

// benchmarkFiles are the files a mirror serves per benchmark. The ground
// truth is optional on the mirror side: not every benchmark has labels.
var benchmarkFiles = []string{MoleculesFile, TruthFile}

// FetchResult holds the outcome of a benchmark fetch.
type FetchResult struct {
	Downloaded int
	Skipped    int
	Failed     int
}

// Total returns the number of files processed.
func (r FetchResult) Total() int {
	return r.Downloaded + r.Skipped + r.Failed
}

// HasFailures reports whether any file failed to download.
func (r FetchResult) HasFailures() bool {
	return r.Failed > 0
}

// Fetch downloads one benchmark from the mirror into cfg.DataDir/name,
// printing per-file status to w. Files already on disk are skipped, a
// missing ground-truth file on the mirror is tolerated with a warning, and
// the fetch continues after individual failures. A delay applies between
// consecutive downloads.
func Fetch(ctx context.Context, client *http.Client, name string, cfg types.DatasetConfig, w io.Writer) FetchResult {
	var result FetchResult

	destDir := filepath.Join(cfg.DataDir, name)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", name, err)
		result.Failed = len(benchmarkFiles)
		return result
	}

	downloads := 0
	for _, file := range benchmarkFiles {
		destPath := filepath.Join(destDir, file)
		if _, err := os.Stat(destPath); err == nil {
			fmt.Fprintf(w, "skipped: %s/%s (already exists)\n", name, file)
			result.Skipped++
			continue
		}

		if downloads > 0 && cfg.FetchDelay > 0 {
			time.Sleep(cfg.FetchDelay)
		}
		downloads++

		fmt.Fprintf(w, "downloading: %s/%s\n", name, file)
		url := fmt.Sprintf("%s/%s/%s", cfg.BaseURL, name, file)
		status, err := downloadFile(ctx, client, url, destPath, cfg, w)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s/%s (%v)\n", name, file, err)
			result.Failed++
			continue
		}
		if status == http.StatusNotFound && file == TruthFile {
			fmt.Fprintf(w, "  warning: %s has no ground truth on the mirror\n", name)
			result.Skipped++
			continue
		}
		result.Downloaded++
	}

	fmt.Fprintf(w, "\nFetch summary: %d downloaded, %d skipped, %d failed (total: %d)\n",
		result.Downloaded, result.Skipped, result.Failed, result.Total())
	return result
}

// downloadFile fetches url to destPath using a temporary file, renamed on
// success so partial downloads never land under the destination name. A
// 404 returns the status without an error so the caller can decide whether
// the file was mandatory.
func downloadFile(ctx context.Context, client *http.Client, url, destPath string, cfg types.DatasetConfig, w io.Writer) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	if cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.Token)
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, 0, w)
	if err != nil {
		return 0, fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}
	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".fetch-*.tmp")
	if err != nil {
		return resp.StatusCode, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return resp.StatusCode, fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return resp.StatusCode, fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return resp.StatusCode, fmt.Errorf("renaming temp file: %w", err)
	}
	return resp.StatusCode, nil
}
