package bundle

import (
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/cruciblehq/sarus/internal/common"
)

// statDeviceCgroupEntry inspects the host device node a DeviceMount
// refers to and derives the type/major/minor triple the devices
// cgroup allow-list needs.
func statDeviceCgroupEntry(dm *common.DeviceMount) (deviceCgroupEntry, error) {
	var st unix.Stat_t
	if err := unix.Stat(dm.SourcePath, &st); err != nil {
		return deviceCgroupEntry{}, errors.Wrapf(ErrSyscall, "stat %q: %s", dm.SourcePath, err)
	}

	var deviceType string
	switch st.Mode & unix.S_IFMT {
	case unix.S_IFCHR:
		deviceType = "c"
	case unix.S_IFBLK:
		deviceType = "b"
	default:
		return deviceCgroupEntry{}, errors.Wrapf(ErrBundle, "%q is not a device node", dm.SourcePath)
	}

	_, access := dm.CgroupAllowEntry()
	return deviceCgroupEntry{
		deviceType: deviceType,
		major:      int64(unix.Major(uint64(st.Rdev))),
		minor:      int64(unix.Minor(uint64(st.Rdev))),
		access:     access,
	}, nil
}

// createDeviceNode creates an empty regular file at destination to
// serve as the bind-mount target for a device; device nodes cannot be
// mknod'd from inside an unprivileged mount namespace, so sarus bind
// mounts the host node onto a placeholder like Docker and Singularity
// do.
func createDeviceNode(destination string) error {
	f, err := os.OpenFile(destination, os.O_CREATE|os.O_RDONLY, 0o644)
	if err != nil {
		return errors.Wrapf(ErrSyscall, "creating device placeholder %q: %s", destination, err)
	}
	return f.Close()
}
