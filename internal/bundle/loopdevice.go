package bundle

import (
	"fmt"
	"os"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// AttachLoopDevice attaches imagePath (a squashfs file) to a free
// loop device, read-only and set to auto-clear on close, and returns
// the device path (e.g. "/dev/loop7").
func AttachLoopDevice(imagePath string) (devicePath string, err error) {
	ctrl, err := os.OpenFile("/dev/loop-control", os.O_RDWR, 0)
	if err != nil {
		return "", errors.Wrapf(ErrSyscall, "opening /dev/loop-control: %s", err)
	}
	defer ctrl.Close()

	idx, err := ioctlLoopCtlGetFree(ctrl.Fd())
	if err != nil {
		return "", errors.Wrapf(ErrSyscall, "LOOP_CTL_GET_FREE: %s", err)
	}
	devicePath = fmt.Sprintf("/dev/loop%d", idx)

	loopFile, err := os.OpenFile(devicePath, os.O_RDWR, 0)
	if err != nil {
		return "", errors.Wrapf(ErrSyscall, "opening %q: %s", devicePath, err)
	}
	defer loopFile.Close()

	backing, err := os.OpenFile(imagePath, os.O_RDONLY, 0)
	if err != nil {
		return "", errors.Wrapf(ErrSyscall, "opening backing file %q: %s", imagePath, err)
	}
	defer backing.Close()

	if err := unix.IoctlSetInt(int(loopFile.Fd()), unix.LOOP_SET_FD, int(backing.Fd())); err != nil {
		return "", errors.Wrapf(ErrSyscall, "LOOP_SET_FD on %q: %s", devicePath, err)
	}

	info := unix.LoopInfo64{
		Flags: unix.LO_FLAGS_AUTOCLEAR | unix.LO_FLAGS_READ_ONLY,
	}
	copy(info.File_name[:], imagePath)
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, loopFile.Fd(), unix.LOOP_SET_STATUS64, uintptr(unsafe.Pointer(&info))); errno != 0 {
		unix.IoctlSetInt(int(loopFile.Fd()), unix.LOOP_CLR_FD, 0)
		return "", errors.Wrapf(ErrSyscall, "LOOP_SET_STATUS64 on %q: %s", devicePath, errno)
	}

	return devicePath, nil
}

// ioctlLoopCtlGetFree returns the index of the first free loop
// device, per /dev/loop-control's non-standard ioctl ABI: the return
// value of the ioctl syscall itself is the index, not written through
// a pointer argument.
func ioctlLoopCtlGetFree(fd uintptr) (int, error) {
	ret, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, unix.LOOP_CTL_GET_FREE, 0)
	if errno != 0 {
		return 0, errno
	}
	return int(ret), nil
}

// DetachLoopDevice clears the backing file association for the loop
// device at devicePath.
func DetachLoopDevice(devicePath string) error {
	f, err := os.OpenFile(devicePath, os.O_RDWR, 0)
	if err != nil {
		return errors.Wrapf(ErrSyscall, "opening %q: %s", devicePath, err)
	}
	defer f.Close()

	if err := unix.IoctlSetInt(int(f.Fd()), unix.LOOP_CLR_FD, 0); err != nil {
		return errors.Wrapf(ErrSyscall, "LOOP_CLR_FD on %q: %s", devicePath, err)
	}
	return nil
}
