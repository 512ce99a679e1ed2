package cli

import (
	"context"

	"github.com/cruciblehq/sarus/internal/imageref"
	"github.com/cruciblehq/sarus/internal/logging"
)

// RmiCmd is the "sarus rmi" command: remove a pulled image from the
// selected repository.
type RmiCmd struct {
	CentralizedRepository bool   `help:"Remove from the centralized repository instead of the per-user one."`
	Reference             string `arg:"" help:"Image reference to remove."`
}

// Run deletes the image's artifacts and its index entry.
func (c *RmiCmd) Run(ctx context.Context, log logging.Logger) error {
	ref, err := imageref.Parse(c.Reference)
	if err != nil {
		return err
	}

	repo, err := selectRepository(c.CentralizedRepository)
	if err != nil {
		return err
	}

	if err := repo.Remove(ref); err != nil {
		return err
	}

	log.Info("removed image", "reference", ref.String())
	return nil
}
