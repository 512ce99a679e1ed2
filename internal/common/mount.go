package common

import (
	"path"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Mount is the tagged variant {BindMount, DeviceMount}: a single
// request the bundle assembler performs by bind-mounting Source onto
// Destination with Flags. DeviceMount additionally exposes a cgroup
// allow-list entry; that is not part of this interface because it is
// consumed only by the bundle config generator, not by the generic
// "perform this mount" step.
type Mount interface {
	Source() string
	Destination() string
	Flags() uintptr
}

// BindMount is a user- or site-supplied bind mount, validated but not
// yet checked for host existence (that happens at perform time).
type BindMount struct {
	SourcePath      string
	DestinationPath string
	MountFlags      uintptr
}

func (m *BindMount) Source() string      { return m.SourcePath }
func (m *BindMount) Destination() string { return m.DestinationPath }
func (m *BindMount) Flags() uintptr      { return m.MountFlags }

// DeviceMount is a request to bind a host device node into the
// container and allow it through the devices cgroup.
type DeviceMount struct {
	SourcePath      string
	DestinationPath string
	MountFlags      uintptr
	Access          DeviceAccess
}

func (m *DeviceMount) Source() string      { return m.SourcePath }
func (m *DeviceMount) Destination() string { return m.DestinationPath }
func (m *DeviceMount) Flags() uintptr      { return m.MountFlags }

// CgroupAllowEntry renders the linux.resources.devices allow entry
// for this device, consumed by the bundle config generator.
func (m *DeviceMount) CgroupAllowEntry() (path string, access string) {
	return m.DestinationPath, m.Access.String()
}

// ParseBindMount parses a "--mount" option value of the form
// "source,destination[,flag]...", where each optional flag is one of
// "ro", "rw", "recursive", "private". Every bind mount is recursive
// and private by default (MS_REC|MS_PRIVATE); "recursive"/"private"
// are accepted as explicit no-ops for symmetry with the device-mount
// grammar's flag vocabulary. "ro" adds MS_RDONLY.
func ParseBindMount(s string) (*BindMount, error) {
	if s == "" {
		return nil, errors.Wrap(ErrInvalidInput, "empty mount request")
	}

	tokens := strings.Split(s, ",")
	if len(tokens) < 2 {
		return nil, errors.Wrapf(ErrInvalidInput,
			"invalid mount request %q: format must be at least 'source,destination'", s)
	}

	source, destination := tokens[0], tokens[1]
	if err := validateMountPath(source, "host"); err != nil {
		return nil, err
	}
	if err := validateMountPath(destination, "container"); err != nil {
		return nil, err
	}

	flags := uintptr(unix.MS_REC | unix.MS_PRIVATE)
	for _, tok := range tokens[2:] {
		switch tok {
		case "ro":
			flags |= unix.MS_RDONLY
		case "rw", "recursive", "private":
			// already the default; accepted for grammar symmetry.
		default:
			return nil, errors.Wrapf(ErrInvalidInput, "invalid mount request %q: unknown flag %q", s, tok)
		}
	}

	return &BindMount{SourcePath: source, DestinationPath: destination, MountFlags: flags}, nil
}

// ParseDeviceRequest parses a "--device" option value of the form
// "host[:container[:access]]". When the container path is omitted it
// defaults to the host path; when the access string is omitted it
// defaults to "rwm". A two-token request disambiguates its second
// token as an access string if it is a relative path, otherwise as a
// destination path.
func ParseDeviceRequest(s string) (*DeviceMount, error) {
	if s == "" {
		return nil, errors.Wrap(ErrInvalidInput, "invalid device request: no values provided")
	}

	tokens := strings.Split(s, ":")
	if len(tokens) > 3 {
		return nil, errors.Wrapf(ErrInvalidInput,
			"invalid device request %q: too many tokens provided; the format must be at most 'host:container:access'", s)
	}

	source := tokens[0]
	destination := source
	accessString := "rwm"

	switch len(tokens) {
	case 3:
		destination = tokens[1]
		accessString = tokens[2]
	case 2:
		if isRelativePath(tokens[1]) {
			accessString = tokens[1]
		} else {
			destination = tokens[1]
		}
	}

	if err := validateMountPath(source, "host"); err != nil {
		return nil, errors.Wrapf(ErrInvalidInput, "invalid device request %q: %s", s, err)
	}
	if err := validateMountPath(destination, "container"); err != nil {
		return nil, errors.Wrapf(ErrInvalidInput, "invalid device request %q: %s", s, err)
	}
	access, err := ParseDeviceAccess(accessString)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidInput, "invalid device request %q: %s", s, err)
	}

	return &DeviceMount{
		SourcePath:      source,
		DestinationPath: destination,
		MountFlags:      uintptr(unix.MS_REC | unix.MS_PRIVATE),
		Access:          access,
	}, nil
}

func isRelativePath(p string) bool {
	return !path.IsAbs(p)
}

func validateMountPath(p string, context string) error {
	if p == "" {
		return errors.Errorf("detected empty %s device path", context)
	}
	if !path.IsAbs(p) {
		return errors.Errorf("%s path %q must be absolute", context, p)
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return errors.Errorf("%s path %q must not contain a '..' segment", context, p)
		}
	}
	return nil
}
