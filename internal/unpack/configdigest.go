package unpack

import (
	"encoding/json"
	"os"
	"path/filepath"

	digest "github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/pkg/errors"
)

const refNameAnnotation = "org.opencontainers.image.ref.name"

// ImageConfigDigest reads an OCI-layout directory's index and the
// manifest tagged tag, returning the manifest's image-config digest
// (the StoredImage "id") and its declared Config for metadata
// extraction.
func ImageConfigDigest(layoutDir, tag string) (digest.Digest, ocispec.ImageConfig, error) {
	indexPath := filepath.Join(layoutDir, "index.json")
	data, err := os.ReadFile(indexPath)
	if err != nil {
		return "", ocispec.ImageConfig{}, errors.Wrapf(err, "reading OCI layout index %q", indexPath)
	}

	var index ocispec.Index
	if err := json.Unmarshal(data, &index); err != nil {
		return "", ocispec.ImageConfig{}, errors.Wrapf(err, "parsing OCI layout index %q", indexPath)
	}

	manifestDesc, err := findManifestDescriptor(index, tag)
	if err != nil {
		return "", ocispec.ImageConfig{}, err
	}

	manifest, err := readManifest(layoutDir, manifestDesc.Digest)
	if err != nil {
		return "", ocispec.ImageConfig{}, err
	}

	imageCfg, err := readImageConfig(layoutDir, manifest.Config.Digest)
	if err != nil {
		return "", ocispec.ImageConfig{}, err
	}

	return manifest.Config.Digest, imageCfg, nil
}

func findManifestDescriptor(index ocispec.Index, tag string) (ocispec.Descriptor, error) {
	if len(index.Manifests) == 1 {
		return index.Manifests[0], nil
	}
	for _, m := range index.Manifests {
		if m.Annotations[refNameAnnotation] == tag {
			return m, nil
		}
	}
	return ocispec.Descriptor{}, errors.Errorf("no manifest tagged %q in OCI layout index", tag)
}

func readManifest(layoutDir string, dig digest.Digest) (ocispec.Manifest, error) {
	path := blobPath(layoutDir, dig)
	data, err := os.ReadFile(path)
	if err != nil {
		return ocispec.Manifest{}, errors.Wrapf(err, "reading manifest blob %q", path)
	}
	var manifest ocispec.Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return ocispec.Manifest{}, errors.Wrapf(err, "parsing manifest blob %q", path)
	}
	return manifest, nil
}

func readImageConfig(layoutDir string, dig digest.Digest) (ocispec.ImageConfig, error) {
	path := blobPath(layoutDir, dig)
	data, err := os.ReadFile(path)
	if err != nil {
		return ocispec.ImageConfig{}, errors.Wrapf(err, "reading image config blob %q", path)
	}
	var cfg ocispec.Image
	if err := json.Unmarshal(data, &cfg); err != nil {
		return ocispec.ImageConfig{}, errors.Wrapf(err, "parsing image config blob %q", path)
	}
	return cfg.Config, nil
}

func blobPath(layoutDir string, dig digest.Digest) string {
	return filepath.Join(layoutDir, "blobs", dig.Algorithm().String(), dig.Encoded())
}
