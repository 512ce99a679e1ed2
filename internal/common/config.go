package common

// Config is the validated configuration tree handed to the core by the
// (out-of-scope) configuration loader: repository locations, squashfs
// compression options, the installation's init binary, and the hook
// entries to splice into every bundle.
type Config struct {
	LocalRepositoryDir       string
	CentralizedRepositoryDir string

	// External tool paths; resolved from PATH by the CLI when empty.
	SkopeoPath    string
	UmociPath     string
	MksquashfsPath string
	RuncPath      string

	// CompressionOptions are passed verbatim to the squashfs packer,
	// e.g. []string{"-comp", "gzip", "-Xcompression-level", "6"}. Empty
	// means no extra flags.
	CompressionOptions []string

	// InitProgramPath is the installation's static init binary, bound
	// onto rootfs/dev/init when a CommandRun requests AddInitProcess.
	InitProgramPath string

	// RamfsType is either "tmpfs" or "ramfs", used for the bundle
	// directory's isolating mount in step 3 of the bundle assembler.
	RamfsType string

	Hooks []HookConfig

	// HooksEnvironment supplies the key=value pairs appended to any
	// hook that declares an Env array (see HookConfig.Env).
	HooksEnvironment map[string]string
}

// HookConfig mirrors one OCI runtime-spec hook entry, plus the flag
// that marks it as a consumer of Config.HooksEnvironment.
type HookConfig struct {
	Path string
	Args []string

	// Env holds whatever fixed environment the hook entry already
	// carries. A non-nil (possibly empty) slice means the hook
	// declares an env array and should receive the HooksEnvironment
	// entries appended to it; nil means the hook's environment is
	// left untouched.
	Env []string
}
