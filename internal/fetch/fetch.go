package fetch

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
)

// DefaultCacheDir is where downloaded archives are kept between runs.
const DefaultCacheDir = "~/.cache/gesturetrain"

// Config configures archive downloading.
type Config struct {
	CacheDir      string
	ForceDownload bool
}

// Downloader fetches dataset archives over HTTP with local caching.
type Downloader struct {
	config Config
	client *http.Client
}

// New creates a Downloader. An empty cache dir falls back to DefaultCacheDir;
// a leading ~ is expanded to the user home directory.
func New(config Config) *Downloader {
	if config.CacheDir == "" {
		config.CacheDir = DefaultCacheDir
	}
	if strings.HasPrefix(config.CacheDir, "~") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			config.CacheDir = filepath.Join(homeDir, config.CacheDir[1:])
		}
	}
	return &Downloader{
		config: config,
		client: &http.Client{Timeout: 30 * time.Minute},
	}
}

// Fetch downloads rawURL into the cache directory and returns the cached
// path. If checksum is non-empty it must match the SHA-256 of the downloaded
// bytes, hex-encoded. A file already present in the cache is reused unless
// ForceDownload is set.
func (d *Downloader) Fetch(rawURL, checksum string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	filename := path.Base(parsed.Path)
	if filename == "" || filename == "/" || filename == "." {
		return "", fmt.Errorf("cannot derive file name from URL %q", rawURL)
	}

	if err := os.MkdirAll(d.config.CacheDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create cache directory: %w", err)
	}
	cachedPath := filepath.Join(d.config.CacheDir, filename)

	if !d.config.ForceDownload {
		if _, err := os.Stat(cachedPath); err == nil {
			slog.Info("Using cached archive", "path", cachedPath)
			return cachedPath, nil
		}
	}

	slog.Info("Downloading archive", "url", rawURL, "dest", cachedPath)
	if err := d.downloadFile(rawURL, cachedPath, checksum); err != nil {
		return "", fmt.Errorf("failed to download archive: %w", err)
	}

	slog.Info("Archive downloaded", "path", cachedPath)
	return cachedPath, nil
}

// downloadFile streams url into destPath via a temporary file, verifying the
// optional checksum before the atomic rename into place.
func (d *Downloader) downloadFile(url, destPath, checksum string) error {
	resp, err := d.client.Get(url)
	if err != nil {
		return fmt.Errorf("failed to download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed with status: %d", resp.StatusCode)
	}

	tempPath := destPath + ".tmp"
	out, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	bar := progressbar.DefaultBytes(resp.ContentLength, "downloading")
	hasher := sha256.New()
	_, err = io.Copy(io.MultiWriter(out, hasher, bar), resp.Body)
	closeErr := out.Close()
	if err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to save download: %w", err)
	}
	if closeErr != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close download: %w", closeErr)
	}

	if checksum != "" {
		got := hex.EncodeToString(hasher.Sum(nil))
		if !strings.EqualFold(got, checksum) {
			os.Remove(tempPath)
			return fmt.Errorf("checksum mismatch: got %s, want %s", got, checksum)
		}
	}

	if err := os.Rename(tempPath, destPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to move download into place: %w", err)
	}
	return nil
}
