package repository

import (
	"time"

	units "github.com/docker/go-units"

	"github.com/cruciblehq/sarus/internal/imageref"
)

// StoredImage is the in-repository record for one pulled image. Two
// records are equal iff all fields are equal, which holds for free
// here since every field is a plain comparable value.
type StoredImage struct {
	Reference    imageref.Reference
	ID           string // sha256 hex of the OCI image config, 64 chars.
	DataSize     string // human-readable rendering, e.g. "128.4MB".
	Created      string // RFC3339 UTC registration timestamp.
	ImageFile    string
	MetadataFile string
}

// CreateSizeString renders a byte count the way StoredImage.DataSize
// is persisted.
func CreateSizeString(sizeBytes int64) string {
	return units.HumanSize(float64(sizeBytes))
}

// CreateTimeString renders a registration time the way
// StoredImage.Created is persisted.
func CreateTimeString(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
