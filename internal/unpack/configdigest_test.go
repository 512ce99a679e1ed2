package unpack

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	digest "github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

func writeBlob(t *testing.T, layoutDir string, data []byte) string {
	t.Helper()
	sum := sha256.Sum256(data)
	hexDigest := hex.EncodeToString(sum[:])
	dir := filepath.Join(layoutDir, "blobs", "sha256")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("creating blob dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, hexDigest), data, 0644); err != nil {
		t.Fatalf("writing blob: %v", err)
	}
	return "sha256:" + hexDigest
}

func TestImageConfigDigest(t *testing.T) {
	layoutDir := t.TempDir()

	configData, _ := json.Marshal(ocispec.Image{Config: ocispec.ImageConfig{
		Entrypoint: []string{"/entry"},
		WorkingDir: "/app",
		Env:        []string{"FOO=bar"},
	}})
	configDigest := writeBlob(t, layoutDir, configData)

	manifestData, _ := json.Marshal(ocispec.Manifest{
		Config: ocispec.Descriptor{Digest: digest.Digest(configDigest)},
	})
	manifestDigest := writeBlob(t, layoutDir, manifestData)

	index := ocispec.Index{
		Manifests: []ocispec.Descriptor{{
			Digest:      digest.Digest(manifestDigest),
			Annotations: map[string]string{refNameAnnotation: "latest"},
		}},
	}
	indexData, _ := json.Marshal(index)
	if err := os.WriteFile(filepath.Join(layoutDir, "index.json"), indexData, 0644); err != nil {
		t.Fatalf("writing index.json: %v", err)
	}

	dig, cfg, err := ImageConfigDigest(layoutDir, "latest")
	if err != nil {
		t.Fatalf("ImageConfigDigest returned error: %v", err)
	}
	if dig.String() != configDigest {
		t.Errorf("got digest %q, want %q", dig.String(), configDigest)
	}
	if cfg.WorkingDir != "/app" || len(cfg.Entrypoint) != 1 || cfg.Entrypoint[0] != "/entry" {
		t.Errorf("got config %+v", cfg)
	}
}
