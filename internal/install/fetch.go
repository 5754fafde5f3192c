package install

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"pyvm/internal/config"
)

// ProgressFunc receives download progress. total is -1 when the server does
// not report a length.
type ProgressFunc func(written, total int64)

// HTTPFetcher downloads distribution archives using the URL templates from
// settings. Downloads are staged in a temp file and renamed into place so a
// failed transfer never leaves a partial file at the reported path.
type HTTPFetcher struct {
	Settings config.Settings
	Client   *http.Client
	Progress ProgressFunc
}

// Fetch implements Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, id, destDir string) (string, error) {
	downloadURL, err := f.Settings.DownloadURL(id)
	if err != nil {
		return "", err
	}

	dest, err := archivePath(destDir, downloadURL)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "pyvm/1.0")

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", downloadURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("download %s: unexpected status %s", downloadURL, resp.Status)
	}

	tmpFile, err := os.CreateTemp(destDir, "download-*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	body := io.Reader(resp.Body)
	if f.Progress != nil {
		body = &progressReader{r: resp.Body, total: resp.ContentLength, report: f.Progress}
	}

	if _, err := io.Copy(tmpFile, body); err != nil {
		tmpFile.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		return "", fmt.Errorf("finalize download: %w", err)
	}
	return dest, nil
}

// archivePath infers the archive filename from the download URL.
func archivePath(destDir, downloadURL string) (string, error) {
	parsed, err := url.Parse(downloadURL)
	if err != nil {
		return "", fmt.Errorf("parse download url: %w", err)
	}
	base := path.Base(parsed.Path)
	if base == "." || base == "" || base == "/" {
		return "", fmt.Errorf("infer archive name from url: %s", downloadURL)
	}
	return filepath.Join(destDir, base), nil
}

type progressReader struct {
	r       io.Reader
	total   int64
	written int64
	report  ProgressFunc
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	if n > 0 {
		p.written += int64(n)
		p.report(p.written, p.total)
	}
	return n, err
}
