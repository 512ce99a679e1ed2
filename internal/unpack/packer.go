package unpack

import (
	"context"
	"os"

	"github.com/pkg/errors"

	"github.com/cruciblehq/sarus/internal/exectool"
)

// DefaultCompressionOptions is the compression flag set a freshly
// loaded configuration defaults to when none is specified; the
// Packer itself applies no default and passes CompressionOptions
// through verbatim, including empty (no extra flags).
var DefaultCompressionOptions = []string{"-comp", "gzip", "-Xcompression-level", "6"}

// Packer invokes an external packer (mksquashfs) to produce a
// single-file read-only squashfs image from an unpacked rootfs.
type Packer struct {
	PackerPath string
}

// Pack packs rootfsDir into outputFile, passing compressionOptions
// through verbatim, and returns the resulting file's size in bytes.
func (p Packer) Pack(ctx context.Context, rootfsDir, outputFile string, compressionOptions []string) (int64, error) {
	args := append([]string{rootfsDir, outputFile, "-noappend"}, compressionOptions...)
	if _, err := exectool.Run(ctx, p.PackerPath, args...); err != nil {
		return 0, err
	}

	info, err := os.Stat(outputFile)
	if err != nil {
		return 0, errors.Wrapf(err, "statting packed squashfs file %q", outputFile)
	}
	return info.Size(), nil
}
