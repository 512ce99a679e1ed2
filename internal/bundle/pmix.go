package bundle

import "github.com/cruciblehq/sarus/internal/common"

// pmixExtraMounts computes the mounts the PMIx hook needs beyond the
// invocation's own custom and device mounts (e.g. the PMIx runtime
// directory and its Unix-domain rendezvous sockets).
//
// TODO: no PMIx-integration reference implementation was available to
// ground this against; until one is, PMIx support installs the
// SARUS_PMIX_HOOK environment toggle (see configsmerger) but requests
// no additional mounts here.
func pmixExtraMounts(common.CommandRun) []common.Mount {
	return nil
}
