package configsmerger

import (
	"sort"

	"github.com/cruciblehq/sarus/internal/common"
)

// Hook is one resolved OCI runtime-spec hook entry.
type Hook struct {
	Path string
	Args []string
	Env  []string
}

// BuildHooks resolves the hooks block: hook entries pass through
// unchanged except that any hook declaring an Env array (see
// common.HookConfig.Env) receives the hooksEnv map's entries appended
// to it, rendered as sorted "KEY=VALUE" strings for determinism.
func BuildHooks(configured []common.HookConfig, hooksEnv map[string]string) []Hook {
	extra := make([]string, 0, len(hooksEnv))
	for k, v := range hooksEnv {
		extra = append(extra, k+"="+v)
	}
	sort.Strings(extra)

	out := make([]Hook, len(configured))
	for i, h := range configured {
		hook := Hook{Path: h.Path, Args: h.Args}
		if h.Env != nil {
			hook.Env = append(append([]string(nil), h.Env...), extra...)
		}
		out[i] = hook
	}
	return out
}
