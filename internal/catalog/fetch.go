package catalog

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

var ErrChecksum = errors.New("catalog checksum verification failed")

// maxCatalogBytes caps a downloaded catalog.
const maxCatalogBytes = 8 << 20

// Fetcher downloads catalogs published next to a checksums.txt file in
// sha256sum format.
type Fetcher struct {
	client *http.Client
}

// NewFetcher returns a Fetcher. A nil client gets a 30s timeout default.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Fetcher{client: client}
}

// Fetched is a downloaded, verified and parsed catalog.
type Fetched struct {
	Catalog *Catalog
	Data    []byte
	SHA256  string

	// Verified is false when the publisher has no checksums.txt.
	Verified bool
}

// Fetch downloads the catalog at url, checks it against the sibling
// checksums.txt when one is published, and parses it.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Fetched, error) {
	data, status, err := f.download(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("download catalog: %w", err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("download catalog: HTTP %d for %s", status, url)
	}

	sum := sha256.Sum256(data)
	out := &Fetched{Data: data, SHA256: hex.EncodeToString(sum[:])}

	sums, status, err := f.download(ctx, checksumsURL(url))
	switch {
	case err != nil:
		return nil, fmt.Errorf("download checksums: %w", err)
	case status == http.StatusNotFound:
	case status != http.StatusOK:
		return nil, fmt.Errorf("download checksums: HTTP %d", status)
	default:
		want, ok := parseChecksums(sums)[path.Base(url)]
		if !ok {
			return nil, fmt.Errorf("no checksum for %s in checksums.txt", path.Base(url))
		}
		if want != out.SHA256 {
			return nil, fmt.Errorf("%w: expected %s, got %s", ErrChecksum, want, out.SHA256)
		}
		out.Verified = true
	}

	c, err := Parse(data)
	if err != nil {
		return nil, err
	}
	out.Catalog = c
	return out, nil
}

func (f *Fetcher) download(ctx context.Context, url string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, nil
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxCatalogBytes+1))
	if err != nil {
		return nil, 0, err
	}
	if len(data) > maxCatalogBytes {
		return nil, 0, fmt.Errorf("%s is larger than %d bytes", url, maxCatalogBytes)
	}
	return data, resp.StatusCode, nil
}

func checksumsURL(url string) string {
	i := strings.LastIndex(url, "/")
	if i < 0 {
		return "checksums.txt"
	}
	return url[:i+1] + "checksums.txt"
}

func parseChecksums(data []byte) map[string]string {
	result := make(map[string]string)
	for _, line := range strings.Split(string(data), "\n") {
		parts := strings.Fields(line)
		if len(parts) != 2 {
			continue
		}
		result[parts[1]] = parts[0]
	}
	return result
}

// Install writes f to target through a temp file in the same directory
// and renames it into place.
func Install(f *Fetched, target string) error {
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create catalog dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".rxdrill-catalog-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(f.Data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	written, err := os.ReadFile(tmpName)
	if err != nil {
		return fmt.Errorf("re-read temp file: %w", err)
	}
	sum := sha256.Sum256(written)
	if !bytes.Equal(sum[:], mustDecodeHex(f.SHA256)) {
		return fmt.Errorf("%w: temp file changed after write", ErrChecksum)
	}

	if err := os.Rename(tmpName, target); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

func mustDecodeHex(s string) []byte {
	b, _ := hex.DecodeString(s)
	return b
}
