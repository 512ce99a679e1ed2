package cli

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/cruciblehq/sarus/internal/imageref"
	"github.com/cruciblehq/sarus/internal/logging"
	"github.com/cruciblehq/sarus/internal/metadata"
	"github.com/cruciblehq/sarus/internal/paths"
	"github.com/cruciblehq/sarus/internal/puller"
	"github.com/cruciblehq/sarus/internal/repository"
	"github.com/cruciblehq/sarus/internal/unpack"
)

// PullCmd is the "sarus pull" command: download, unpack, pack, and
// register an image in the selected repository.
type PullCmd struct {
	CentralizedRepository bool   `help:"Pull into the centralized repository instead of the per-user one."`
	Reference             string `arg:"" help:"Image reference, e.g. ubuntu:22.04."`
}

// Run executes the pull pipeline: Puller, Unpacker, Packer, Store.
func (c *PullCmd) Run(ctx context.Context, log logging.Logger) error {
	ref, err := imageref.Parse(c.Reference)
	if err != nil {
		return err
	}
	log = log.With("reference", ref.String())

	repo, err := selectRepository(c.CentralizedRepository)
	if err != nil {
		return err
	}

	scratchDir, err := repository.NewScratchDir(paths.ScratchBaseDir())
	if err != nil {
		return err
	}
	defer os.RemoveAll(scratchDir)

	cfg := buildConfig()

	log.Info("pulling image")
	p := puller.Puller{CopierPath: cfg.SkopeoPath, BlobCacheDir: repo.BlobCacheDir()}
	layoutPath, err := p.Pull(ctx, ref, scratchDir)
	if err != nil {
		return err
	}
	layoutTag := puller.LayoutTag(ref)

	configDigest, imageCfg, err := unpack.ImageConfigDigest(layoutPath, layoutTag)
	if err != nil {
		return err
	}

	rootfsDir := filepath.Join(scratchDir, "rootfs")
	log.Info("unpacking image")
	unpacker := unpack.Unpacker{UnpackerPath: cfg.UmociPath}
	if err := unpacker.Unpack(ctx, layoutPath, layoutTag, rootfsDir); err != nil {
		return err
	}

	squashfsOut := filepath.Join(scratchDir, "image.squashfs")
	log.Info("packing squashfs image")
	packer := unpack.Packer{PackerPath: cfg.MksquashfsPath}
	size, err := packer.Pack(ctx, rootfsDir, squashfsOut, cfg.CompressionOptions)
	if err != nil {
		return err
	}

	meta := metadata.FromImageConfig(imageCfg)
	if err := metadata.Save(repo.MetadataPath(ref), meta); err != nil {
		return err
	}

	img := repository.StoredImage{
		Reference: ref,
		ID:        configDigest.Encoded(),
		DataSize:  repository.CreateSizeString(size),
		Created:   repository.CreateTimeString(time.Now()),
	}
	if err := repo.Store(img, squashfsOut); err != nil {
		return err
	}

	log.Info("pulled image", "id", img.ID, "size", img.DataSize)
	return nil
}
