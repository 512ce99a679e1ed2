package unpack

import (
	"context"
	"fmt"

	"github.com/cruciblehq/sarus/internal/exectool"
)

// Unpacker invokes an external unpacker (umoci) against an OCI
// layout to materialize a rootfs directory.
type Unpacker struct {
	UnpackerPath string
}

// Unpack unpacks the image tagged tag in layoutDir into destRootfs.
func (u Unpacker) Unpack(ctx context.Context, layoutDir, tag, destRootfs string) error {
	image := fmt.Sprintf("%s:%s", layoutDir, tag)
	_, err := exectool.Run(ctx, u.UnpackerPath, "unpack", "--image", image, destRootfs)
	return err
}
