package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/cruciblehq/sarus/internal/logging"
)

// ImagesCmd is the "sarus images" command: list every image in the
// selected repository.
type ImagesCmd struct {
	CentralizedRepository bool `help:"List the centralized repository instead of the per-user one."`
}

// Run prints the repository index as a table.
func (c *ImagesCmd) Run(ctx context.Context, log logging.Logger) error {
	repo, err := selectRepository(c.CentralizedRepository)
	if err != nil {
		return err
	}

	list, err := repo.List()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "REFERENCE\tID\tSIZE\tCREATED")
	for _, img := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", img.Reference.String(), shortID(img.ID), img.DataSize, img.Created)
	}
	return nil
}

func shortID(id string) string {
	const shortLen = 12
	if len(id) <= shortLen {
		return id
	}
	return id[:shortLen]
}
