package catalog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sha(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

func catalogServer(t *testing.T, body []byte, checksums string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/catalog.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(body)
	})
	mux.HandleFunc("/v2/checksums.txt", func(w http.ResponseWriter, r *http.Request) {
		if checksums == "" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(checksums))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestParseChecksums(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  map[string]string
	}{
		{
			name:  "normal",
			input: "abc123  catalog.json\ndef456  other.json\n",
			want:  map[string]string{"catalog.json": "abc123", "other.json": "def456"},
		},
		{
			name:  "empty",
			input: "",
			want:  map[string]string{},
		},
		{
			name:  "malformed lines skipped",
			input: "abc123  a.json\nbadline\n  \nfoo  bar  baz\nghi789  b.json\n",
			want:  map[string]string{"a.json": "abc123", "b.json": "ghi789"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseChecksums([]byte(tt.input)))
		})
	}
}

func TestFetch_Verified(t *testing.T) {
	srv := catalogServer(t, sampleJSON, fmt.Sprintf("%s  catalog.json\n", sha(sampleJSON)))

	got, err := NewFetcher(srv.Client()).Fetch(context.Background(), srv.URL+"/v2/catalog.json")
	require.NoError(t, err)
	assert.True(t, got.Verified)
	assert.Equal(t, sha(sampleJSON), got.SHA256)
	assert.Len(t, got.Catalog.Items(), 24)
}

func TestFetch_NoChecksumsFile(t *testing.T) {
	srv := catalogServer(t, sampleJSON, "")

	got, err := NewFetcher(srv.Client()).Fetch(context.Background(), srv.URL+"/v2/catalog.json")
	require.NoError(t, err)
	assert.False(t, got.Verified)
}

func TestFetch_Errors(t *testing.T) {
	tests := []struct {
		name      string
		body      []byte
		checksums string
		wantErr   error
		wantText  string
	}{
		{"checksum mismatch", sampleJSON, "deadbeef  catalog.json\n", ErrChecksum, ""},
		{"missing entry", sampleJSON, "deadbeef  other.json\n", nil, "no checksum"},
		{"invalid catalog", []byte(`{"schema_version":"v9.0.0"}`), "", nil, "incompatible"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := catalogServer(t, tt.body, tt.checksums)
			_, err := NewFetcher(srv.Client()).Fetch(context.Background(), srv.URL+"/v2/catalog.json")
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantText != "" {
				assert.Contains(t, err.Error(), tt.wantText)
			}
		})
	}
}

func TestFetch_NotFound(t *testing.T) {
	srv := catalogServer(t, sampleJSON, "")
	_, err := NewFetcher(srv.Client()).Fetch(context.Background(), srv.URL+"/v2/missing.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")
}

func TestInstall(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nested", "catalog.json")
	f := &Fetched{Data: sampleJSON, SHA256: sha(sampleJSON)}

	require.NoError(t, Install(f, target))
	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, sampleJSON, got)

	c, err := Load(target)
	require.NoError(t, err)
	assert.Equal(t, "Core Pharmacology", c.Title())

	entries, err := os.ReadDir(filepath.Dir(target))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestInstall_ChecksumMismatch(t *testing.T) {
	target := filepath.Join(t.TempDir(), "catalog.json")
	f := &Fetched{Data: sampleJSON, SHA256: sha([]byte("something else"))}

	err := Install(f, target)
	assert.ErrorIs(t, err, ErrChecksum)
	_, statErr := os.Stat(target)
	assert.True(t, os.IsNotExist(statErr))
}
