package bundle

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	specs "github.com/opencontainers/runtime-spec/specs-go"
	"github.com/pkg/errors"

	"github.com/cruciblehq/sarus/internal/common"
	"github.com/cruciblehq/sarus/internal/configsmerger"
)

// configJSONInputs collects everything the bundle assembler gathered
// while performing its steps that the generated config.json needs to
// reference.
type configJSONInputs struct {
	command     []string
	environment map[string]string
	cwd         string
	identity    common.UserIdentity
	hooks       []configsmerger.Hook
	mounts      []specs.Mount
	devices     []deviceCgroupEntry
	annotations map[string]string
}

type deviceCgroupEntry struct {
	deviceType string // "c" or "b"
	major      int64
	minor      int64
	access     string
}

// writeConfigJSON renders the OCI runtime-spec config for the
// assembled bundle and writes it to <bundleDir>/config.json.
func writeConfigJSON(bundleDir string, in configJSONInputs) (string, error) {
	spec := &specs.Spec{
		Version: "1.0.2-dev",
		Root: &specs.Root{
			Path:     "rootfs",
			Readonly: false,
		},
		Process: &specs.Process{
			Terminal: false,
			User: specs.User{
				UID:            uint32(in.identity.UID),
				GID:            uint32(in.identity.GID),
				AdditionalGids: toUint32s(in.identity.SupplementaryGIDs),
			},
			Args:            in.command,
			Env:             renderEnv(in.environment),
			Cwd:             in.cwd,
			NoNewPrivileges: true,
		},
		Mounts: in.mounts,
		Linux: &specs.Linux{
			Namespaces: []specs.LinuxNamespace{
				{Type: specs.MountNamespace},
			},
			Resources: &specs.LinuxResources{
				Devices: buildDeviceCgroupAllowList(in.devices),
			},
		},
		Hooks:       renderHooks(in.hooks),
		Annotations: in.annotations,
	}

	path := filepath.Join(bundleDir, "config.json")
	data, err := json.MarshalIndent(spec, "", "  ")
	if err != nil {
		return "", errors.Wrap(ErrBundle, "marshaling config.json: "+err.Error())
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.Wrapf(ErrBundle, "writing %q: %s", path, err)
	}
	return path, nil
}

func toUint32s(ids []int) []uint32 {
	out := make([]uint32, len(ids))
	for i, id := range ids {
		out[i] = uint32(id)
	}
	return out
}

// renderEnv turns the merged environment map into the sorted
// "KEY=VALUE" slice a process spec requires; sorting keeps
// config.json output deterministic across runs.
func renderEnv(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(env))
	for _, k := range keys {
		out = append(out, k+"="+env[k])
	}
	return out
}

func renderHooks(hooks []configsmerger.Hook) *specs.Hooks {
	if len(hooks) == 0 {
		return nil
	}
	prestart := make([]specs.Hook, 0, len(hooks))
	for _, h := range hooks {
		prestart = append(prestart, specs.Hook{
			Path: h.Path,
			Args: append([]string{h.Path}, h.Args...),
			Env:  h.Env,
		})
	}
	return &specs.Hooks{Prestart: prestart}
}

// buildDeviceCgroupAllowList renders one explicit allow entry per
// requested device plus the trailing deny-all-else entry.
func buildDeviceCgroupAllowList(devices []deviceCgroupEntry) []specs.LinuxDeviceCgroup {
	entries := make([]specs.LinuxDeviceCgroup, 0, len(devices)+1)
	for _, d := range devices {
		major, minor := d.major, d.minor
		entries = append(entries, specs.LinuxDeviceCgroup{
			Allow:  true,
			Type:   d.deviceType,
			Major:  &major,
			Minor:  &minor,
			Access: d.access,
		})
	}
	entries = append(entries, specs.LinuxDeviceCgroup{Allow: false, Access: "rwm"})
	return entries
}
