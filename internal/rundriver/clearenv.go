package rundriver

import "os"

// DefaultPATH is installed in place of whatever PATH the host process
// had, so the runtime's exec of the container's init process never
// inherits sarus's own resolution path.
const DefaultPATH = "/bin:/sbin:/usr/bin:/usr/sbin"

// ClearHostEnvironment wipes the current process's environment and
// installs a minimal PATH. It must run before any fork so the change
// is observed by every subsequently started child; Execute calls it
// immediately before starting the runtime child.
func ClearHostEnvironment() {
	os.Clearenv()
	os.Setenv("PATH", DefaultPATH)
}
