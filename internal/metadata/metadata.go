package metadata

import (
	"encoding/json"
	"os"

	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/pkg/errors"
)

// EnvVar is one entry of an ordered, key-deduplicated environment list.
type EnvVar struct {
	Key   string
	Value string
}

// ImageMetadata is the subset of an OCI image configuration the
// bundle assembler and configs merger need, serialized as the JSON
// sidecar stored next to an image's squashfs file.
type ImageMetadata struct {
	Cmd     []string `json:"cmd,omitempty"`
	Entry   []string `json:"entry,omitempty"`
	Workdir string   `json:"workdir,omitempty"`
	Env     []EnvVar `json:"env,omitempty"`
}

// FromImageConfig extracts ImageMetadata from an OCI image
// configuration's Config block.
func FromImageConfig(cfg ocispec.ImageConfig) ImageMetadata {
	return ImageMetadata{
		Cmd:     append([]string(nil), cfg.Cmd...),
		Entry:   append([]string(nil), cfg.Entrypoint...),
		Workdir: cfg.WorkingDir,
		Env:     DedupeEnv(cfg.Env),
	}
}

// DedupeEnv parses a list of "KEY=VALUE" strings into an ordered,
// per-key-deduplicated list: each key keeps the position of its first
// occurrence but the value of its last.
func DedupeEnv(kv []string) []EnvVar {
	order := make([]string, 0, len(kv))
	values := make(map[string]string, len(kv))
	seen := make(map[string]bool, len(kv))

	for _, entry := range kv {
		key, value := splitKV(entry)
		if !seen[key] {
			seen[key] = true
			order = append(order, key)
		}
		values[key] = value
	}

	out := make([]EnvVar, 0, len(order))
	for _, k := range order {
		out = append(out, EnvVar{Key: k, Value: values[k]})
	}
	return out
}

func splitKV(entry string) (key, value string) {
	for i := 0; i < len(entry); i++ {
		if entry[i] == '=' {
			return entry[:i], entry[i+1:]
		}
	}
	return entry, ""
}

// Load reads and unmarshals an ImageMetadata JSON sidecar.
func Load(path string) (ImageMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ImageMetadata{}, errors.Wrapf(err, "reading metadata sidecar %q", path)
	}
	var m ImageMetadata
	if err := json.Unmarshal(data, &m); err != nil {
		return ImageMetadata{}, errors.Wrapf(err, "parsing metadata sidecar %q", path)
	}
	return m, nil
}

// Save marshals and writes an ImageMetadata JSON sidecar.
func Save(path string, m ImageMetadata) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshaling metadata sidecar")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "writing metadata sidecar %q", path)
	}
	return nil
}
