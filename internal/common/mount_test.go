package common

import (
	"testing"

	"golang.org/x/sys/unix"
)

func TestParseDeviceRequestDefaults(t *testing.T) {
	m, err := ParseDeviceRequest("/dev/fuse")
	if err != nil {
		t.Fatalf("ParseDeviceRequest returned error: %v", err)
	}
	if m.SourcePath != "/dev/fuse" || m.DestinationPath != "/dev/fuse" {
		t.Errorf("got source=%q destination=%q, want both /dev/fuse", m.SourcePath, m.DestinationPath)
	}
	if m.Access.String() != "rwm" {
		t.Errorf("got access=%q, want default rwm", m.Access.String())
	}
	if m.MountFlags != uintptr(unix.MS_REC|unix.MS_PRIVATE) {
		t.Errorf("got flags=%v, want MS_REC|MS_PRIVATE", m.MountFlags)
	}
}

func TestParseDeviceRequestTwoTokensDestination(t *testing.T) {
	m, err := ParseDeviceRequest("/dev/fuse:/dev/container-fuse")
	if err != nil {
		t.Fatalf("ParseDeviceRequest returned error: %v", err)
	}
	if m.DestinationPath != "/dev/container-fuse" {
		t.Errorf("got destination=%q, want /dev/container-fuse", m.DestinationPath)
	}
	if m.Access.String() != "rwm" {
		t.Errorf("got access=%q, want default rwm", m.Access.String())
	}
}

func TestParseDeviceRequestTwoTokensAccess(t *testing.T) {
	m, err := ParseDeviceRequest("/dev/fuse:rw")
	if err != nil {
		t.Fatalf("ParseDeviceRequest returned error: %v", err)
	}
	if m.DestinationPath != "/dev/fuse" {
		t.Errorf("got destination=%q, want /dev/fuse (source repeated)", m.DestinationPath)
	}
	if m.Access.String() != "rw" {
		t.Errorf("got access=%q, want rw", m.Access.String())
	}
}

func TestParseDeviceRequestThreeTokens(t *testing.T) {
	m, err := ParseDeviceRequest("/dev/fuse:/dev/container-fuse:rw")
	if err != nil {
		t.Fatalf("ParseDeviceRequest returned error: %v", err)
	}
	if m.SourcePath != "/dev/fuse" || m.DestinationPath != "/dev/container-fuse" || m.Access.String() != "rw" {
		t.Errorf("got %+v", m)
	}
}

func TestParseDeviceRequestTooManyTokens(t *testing.T) {
	if _, err := ParseDeviceRequest("/dev/fuse:/dev/container-fuse:rw:extra"); err == nil {
		t.Fatal("expected error for too many tokens, got nil")
	}
}

func TestParseDeviceRequestRejectsRelativePaths(t *testing.T) {
	if _, err := ParseDeviceRequest("relative/dev"); err == nil {
		t.Fatal("expected error for relative host device path, got nil")
	}
	if _, err := ParseDeviceRequest("/dev/fuse:relative/dest:rw"); err == nil {
		t.Fatal("expected error for relative container device path, got nil")
	}
}

func TestParseDeviceRequestRejectsInvalidAccess(t *testing.T) {
	if _, err := ParseDeviceRequest("/dev/fuse:/dev/fuse:rwx"); err == nil {
		t.Fatal("expected error for invalid access string, got nil")
	}
	if _, err := ParseDeviceRequest("/dev/fuse:/dev/fuse:rr"); err == nil {
		t.Fatal("expected error for repeated access character, got nil")
	}
}

func TestParseDeviceRequestRejectsEmpty(t *testing.T) {
	if _, err := ParseDeviceRequest(""); err == nil {
		t.Fatal("expected error for empty device request, got nil")
	}
}

func TestParseBindMountBasic(t *testing.T) {
	m, err := ParseBindMount("/home/user/data,/data")
	if err != nil {
		t.Fatalf("ParseBindMount returned error: %v", err)
	}
	if m.SourcePath != "/home/user/data" || m.DestinationPath != "/data" {
		t.Errorf("got %+v", m)
	}
	if m.MountFlags&unix.MS_RDONLY != 0 {
		t.Errorf("expected rw by default, got read-only flag set")
	}
}

func TestParseBindMountReadOnly(t *testing.T) {
	m, err := ParseBindMount("/home/user/data,/data,ro")
	if err != nil {
		t.Fatalf("ParseBindMount returned error: %v", err)
	}
	if m.MountFlags&unix.MS_RDONLY == 0 {
		t.Errorf("expected MS_RDONLY set, flags=%v", m.MountFlags)
	}
}

func TestParseBindMountRejectsRelativeDestination(t *testing.T) {
	if _, err := ParseBindMount("/home/user/data,data"); err == nil {
		t.Fatal("expected error for relative destination, got nil")
	}
}

func TestParseBindMountRejectsDotDot(t *testing.T) {
	if _, err := ParseBindMount("/home/user/../data,/data"); err == nil {
		t.Fatal("expected error for '..' segment in source, got nil")
	}
}

func TestParseBindMountRejectsTooFewTokens(t *testing.T) {
	if _, err := ParseBindMount("/data"); err == nil {
		t.Fatal("expected error for missing destination, got nil")
	}
}

func TestParseBindMountRejectsUnknownFlag(t *testing.T) {
	if _, err := ParseBindMount("/a,/b,bogus"); err == nil {
		t.Fatal("expected error for unrecognized flag, got nil")
	}
}
