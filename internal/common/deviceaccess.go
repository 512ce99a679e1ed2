package common

import (
	"strings"

	"github.com/pkg/errors"
)

// DeviceAccess is the cgroup device-access subset {r,w,m} granted by a
// device mount, in canonical "rwm" ordering.
type DeviceAccess struct {
	Read  bool
	Write bool
	Mknod bool
}

// ParseDeviceAccess validates that s is a combination of the
// characters 'r', 'w', 'm' with no repetitions, in any order, and
// returns the corresponding DeviceAccess.
func ParseDeviceAccess(s string) (DeviceAccess, error) {
	var a DeviceAccess
	for _, c := range s {
		switch c {
		case 'r':
			if a.Read {
				return DeviceAccess{}, errors.Wrapf(ErrInvalidInput, "repeated 'r' in device access %q", s)
			}
			a.Read = true
		case 'w':
			if a.Write {
				return DeviceAccess{}, errors.Wrapf(ErrInvalidInput, "repeated 'w' in device access %q", s)
			}
			a.Write = true
		case 'm':
			if a.Mknod {
				return DeviceAccess{}, errors.Wrapf(ErrInvalidInput, "repeated 'm' in device access %q", s)
			}
			a.Mknod = true
		default:
			return DeviceAccess{}, errors.Wrapf(ErrInvalidInput,
				"device access must be entered as a combination of 'rwm' characters, with no repetitions (got %q)", s)
		}
	}
	if !a.Read && !a.Write && !a.Mknod {
		return DeviceAccess{}, errors.Wrapf(ErrInvalidInput, "empty device access string")
	}
	return a, nil
}

// String renders the access set in canonical "rwm" order, omitting
// absent permissions.
func (a DeviceAccess) String() string {
	var b strings.Builder
	if a.Read {
		b.WriteByte('r')
	}
	if a.Write {
		b.WriteByte('w')
	}
	if a.Mknod {
		b.WriteByte('m')
	}
	return b.String()
}
