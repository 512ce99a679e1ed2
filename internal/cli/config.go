package cli

import (
	"os/exec"

	"github.com/cruciblehq/sarus/internal/common"
)

// buildConfig assembles the configuration tree every component reads
// from: absolute paths to the external tools, resolved off PATH when
// not overridden, plus the handful of installation-wide constants
// sarus ships with. There is no on-disk config file to parse here;
// that schema and its loader live outside this repository's scope.
func buildConfig() common.Config {
	return common.Config{
		LocalRepositoryDir:       RootCmd.LocalRepository,
		CentralizedRepositoryDir: RootCmd.CentralizedRepositoryDir,

		SkopeoPath:     resolveTool(RootCmd.SkopeoPath, "skopeo"),
		UmociPath:      resolveTool(RootCmd.UmociPath, "umoci"),
		MksquashfsPath: resolveTool(RootCmd.MksquashfsPath, "mksquashfs"),
		RuncPath:       resolveTool(RootCmd.RuncPath, "runc"),

		CompressionOptions: []string{"-comp", "gzip", "-Xcompression-level", "6"},
		InitProgramPath:    RootCmd.PrefixDir + "/etc/init",
		RamfsType:          "tmpfs",
	}
}

// resolveTool returns override if set, else the first match for name
// on PATH, else name itself (surfacing the lookup failure when the
// tool is actually invoked).
func resolveTool(override, name string) string {
	if override != "" {
		return override
	}
	if found, err := exec.LookPath(name); err == nil {
		return found
	}
	return name
}
