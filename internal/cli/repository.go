package cli

import (
	"os"

	"github.com/cruciblehq/sarus/internal/paths"
	"github.com/cruciblehq/sarus/internal/repository"
)

// selectRepository resolves the local-vs-centralized repository for
// one invocation, defaulting the local root to "$HOME/.sarus" and
// ensuring its directory tree exists.
//
// Directory creation is chowned to the invoking user only for the
// local repository; the centralized repository is site-administered
// and populated by root, so sarus never chowns it on behalf of an
// unprivileged caller.
func selectRepository(useCentral bool) (repository.Repository, error) {
	local := RootCmd.LocalRepository
	if local == "" {
		var err error
		local, err = paths.DefaultLocalRepositoryDir()
		if err != nil {
			return repository.Repository{}, err
		}
	}

	repo := repository.Select(local, RootCmd.CentralizedRepositoryDir, useCentral)

	uid, gid := -1, -1
	if !useCentral {
		uid, gid = os.Getuid(), os.Getgid()
	}
	if err := repo.EnsureDirectories(uid, gid); err != nil {
		return repository.Repository{}, err
	}
	return repo, nil
}
