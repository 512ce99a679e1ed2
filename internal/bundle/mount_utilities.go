package bundle

import (
	"fmt"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

func bindMount(source, destination string, flags uintptr) error {
	if err := unix.Mount(source, destination, "", unix.MS_BIND|flags, ""); err != nil {
		return errors.Wrapf(ErrSyscall, "bind-mounting %q onto %q: %s", source, destination, err)
	}
	return nil
}

func mountTmpfsOrRamfs(fsType, target, options string, flags uintptr) error {
	if err := unix.Mount("", target, fsType, flags, options); err != nil {
		return errors.Wrapf(ErrSyscall, "mounting %s on %q: %s", fsType, target, err)
	}
	return nil
}

func remountSlaveRecursive(target string) error {
	if err := unix.Mount("", target, "", unix.MS_SLAVE|unix.MS_REC, ""); err != nil {
		return errors.Wrapf(ErrSyscall, "remounting %q with MS_SLAVE: %s", target, err)
	}
	return nil
}

func mountOverlayfs(lowerDir, upperDir, workDir, target string) error {
	options := fmt.Sprintf("lowerdir=%s,upperdir=%s,workdir=%s", lowerDir, upperDir, workDir)
	if err := unix.Mount("overlay", target, "overlay", 0, options); err != nil {
		return errors.Wrapf(ErrSyscall, "mounting overlay at %q: %s", target, err)
	}
	return nil
}

func remountNoSuid(target, fsType string) error {
	if err := unix.Mount(target, target, fsType, unix.MS_REMOUNT|unix.MS_NOSUID, ""); err != nil {
		return errors.Wrapf(ErrSyscall, "remounting %q with MS_NOSUID: %s", target, err)
	}
	return nil
}

func unmount(target string) error {
	if err := unix.Unmount(target, 0); err != nil {
		return errors.Wrapf(ErrSyscall, "unmounting %q: %s", target, err)
	}
	return nil
}
