package configsmerger

import (
	"github.com/cruciblehq/sarus/internal/common"
	"github.com/cruciblehq/sarus/internal/metadata"
)

// Merger combines one StoredImage's metadata with one invocation's
// CommandRun into the four values the bundle assembler needs.
type Merger struct {
	Metadata   metadata.ImageMetadata
	Invocation common.CommandRun
	Hooks      []common.HookConfig
	HooksEnv   map[string]string
}

// Command resolves the command to execute in the container.
func (m Merger) Command() ([]string, error) {
	return ResolveCommand(m.Invocation.Entrypoint, m.Invocation.Cmd, m.Metadata.Entry, m.Metadata.Cmd)
}

// Environment resolves the container's full environment.
func (m Merger) Environment() map[string]string {
	imageEnv := make(map[string]string, len(m.Metadata.Env))
	for _, e := range m.Metadata.Env {
		imageEnv[e.Key] = e.Value
	}
	return ResolveEnvironment(EnvironmentInputs{
		HostEnv:    m.Invocation.HostEnvironment,
		ImageEnv:   imageEnv,
		UseMPI:     m.Invocation.UseMPI,
		EnableSSH:  m.Invocation.EnableSSH,
		EnablePMIx: m.Invocation.EnablePMIx,
		HasDevices: len(m.Invocation.DeviceMounts) > 0,
	})
}

// Cwd resolves the container's initial working directory.
func (m Merger) Cwd() string {
	return ResolveCwd(m.Invocation.Workdir, m.Metadata.Workdir)
}

// HooksBlock resolves the hooks to install into the bundle.
func (m Merger) HooksBlock() []Hook {
	return BuildHooks(m.Hooks, m.HooksEnv)
}
