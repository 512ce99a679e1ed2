package cli

import (
	"context"
	"fmt"

	"github.com/cruciblehq/sarus/internal"
)

// VersionCmd is the "sarus version" command.
type VersionCmd struct{}

// Run executes the version command.
func (c *VersionCmd) Run(ctx context.Context) error {
	fmt.Println(internal.VersionString())
	return nil
}
