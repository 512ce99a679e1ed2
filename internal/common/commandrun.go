package common

// UserIdentity is the uid/gid/supplementary-group set the bundle and
// the runtime process run as.
type UserIdentity struct {
	UID               int
	GID               int
	SupplementaryGIDs []int
}

// CommandRun is the invocation data parsed from the CLI plus config
// for a single "run". For Entrypoint and Cmd, a nil or empty slice
// means the CLI did not provide that value and a non-empty slice means
// it did; this distinction drives the Configs Merger's
// command-resolution table.
type CommandRun struct {
	HostEnvironment map[string]string
	Identity        UserIdentity
	HostPATH        string

	Entrypoint []string // CLI-provided entrypoint override; nil if unset.
	Cmd        []string // CLI-provided exec args; nil if unset.
	Workdir    string   // CLI-provided working directory override; "" if unset.

	CustomMounts []Mount
	DeviceMounts []*DeviceMount

	UseMPI         bool
	EnableSSH      bool
	AddInitProcess bool
	EnablePMIx     bool

	// PreserveFDs are additional fds the caller needs preserved beyond
	// the ones the fd handler always accounts for (PMI_FD, hook
	// stdout/stderr duplicates); nil unless a future CLI flag sets it.
	PreserveFDs []int
}
