package fdhandler

import (
	"strconv"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// PMIFDEnvVar is the environment variable MPI process managers use to
// hand a pre-opened descriptor to launched processes; its value must
// be rewritten to the fd's compacted number in the container.
const PMIFDEnvVar = "PMI_FD"

// firstPreservedFD is the lowest fd number a compacted set is
// remapped into; 0, 1, 2 remain stdio.
const firstPreservedFD = 3

// Handler holds the outcome of resolving which file descriptors must
// survive into the container, and where they land after compaction.
type Handler struct {
	// Requested are every fd to preserve, pre-compaction: the
	// caller-requested fds (from CommandRun.PreserveFDs), the detected
	// PMI_FD if any, and the two fresh descriptors duped from stdout
	// and stderr for hooks.
	Requested []int

	// Compacted maps each requested fd to its new, contiguous
	// position starting at firstPreservedFD.
	Compacted map[int]int

	// PMIFD is the original (pre-compaction) PMI_FD value, or -1 if
	// the host environment carried none. Needed to rewrite PMI_FD in
	// the container environment to its compacted value.
	PMIFD int

	// HookStdoutFD and HookStderrFD are the original (pre-compaction)
	// fds duped from stdout/stderr for hooks to read from.
	HookStdoutFD int
	HookStderrFD int
}

// DetectPMIFD looks for PMI_FD in the host environment (set by MPI
// process managers to hand a pre-opened descriptor to launched
// processes) and returns it if present and well-formed.
func DetectPMIFD(hostEnv map[string]string) (fd int, ok bool) {
	v, present := hostEnv[PMIFDEnvVar]
	if !present {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// NewHandler resolves the full set of fds to preserve: the explicitly
// requested ones, PMI_FD when present, and two fresh fds duped from
// stdout/stderr for hooks, deduplicated, with their compacted
// positions computed.
func NewHandler(requested []int, hostEnv map[string]string) (Handler, error) {
	seen := make(map[int]bool, len(requested))
	all := make([]int, 0, len(requested)+3)
	for _, fd := range requested {
		if !seen[fd] {
			seen[fd] = true
			all = append(all, fd)
		}
	}

	pmiFD := -1
	if fd, ok := DetectPMIFD(hostEnv); ok {
		pmiFD = fd
		if !seen[fd] {
			seen[fd] = true
			all = append(all, fd)
		}
	}

	stdoutFD, stderrFD, err := dupHookStdio()
	if err != nil {
		return Handler{}, err
	}
	all = append(all, stdoutFD, stderrFD)

	return Handler{
		Requested:    all,
		Compacted:    computeCompaction(all),
		PMIFD:        pmiFD,
		HookStdoutFD: stdoutFD,
		HookStderrFD: stderrFD,
	}, nil
}

// dupHookStdio duplicates the process's stdout and stderr onto two
// fresh descriptors so hooks can read the original terminal streams
// regardless of what their own stdio is connected to.
func dupHookStdio() (stdoutFD, stderrFD int, err error) {
	stdoutFD, err = unix.Dup(1)
	if err != nil {
		return 0, 0, errors.Wrap(err, "duplicating stdout for hooks")
	}
	stderrFD, err = unix.Dup(2)
	if err != nil {
		unix.Close(stdoutFD)
		return 0, 0, errors.Wrap(err, "duplicating stderr for hooks")
	}
	return stdoutFD, stderrFD, nil
}

// computeCompaction maps each fd in fds to a new, contiguous fd
// number starting at firstPreservedFD, preserving input order.
func computeCompaction(fds []int) map[int]int {
	mapping := make(map[int]int, len(fds))
	next := firstPreservedFD
	for _, fd := range fds {
		mapping[fd] = next
		next++
	}
	return mapping
}

// Count returns the number of fds preserved, i.e. the value passed
// to "runc run --preserve-fds".
func (h Handler) Count() int {
	return len(h.Compacted)
}

// tempFDBase is where Apply parks a source fd before moving it into
// its final slot, kept well above the compacted target range so a
// temporary descriptor can never alias a not-yet-relocated source.
const tempFDBase = 1024

// Apply performs the compaction in the current process. Relocating
// fds in place with dup2 can clobber a source fd that another entry
// hasn't been read from yet whenever one entry's target equals
// another's source (e.g. {5->3, 3->4}), so every source is first
// parked on a high temporary descriptor and only then dup2'd into its
// final slot, where FD_CLOEXEC is cleared so it survives exec into
// the OCI runtime.
func (h Handler) Apply() error {
	temps := make(map[int]int, len(h.Requested))
	for _, old := range h.Requested {
		tmp, err := unix.FcntlInt(uintptr(old), unix.F_DUPFD_CLOEXEC, tempFDBase)
		if err != nil {
			return errors.Wrapf(err, "parking fd %d on a temporary descriptor", old)
		}
		temps[old] = tmp
	}

	for _, old := range h.Requested {
		new := h.Compacted[old]
		tmp := temps[old]
		if tmp != new {
			if err := unix.Dup2(tmp, new); err != nil {
				return errors.Wrapf(err, "dup2(%d, %d)", tmp, new)
			}
			if err := unix.Close(tmp); err != nil {
				return errors.Wrapf(err, "closing temporary fd %d", tmp)
			}
		}
		if _, err := unix.FcntlInt(uintptr(new), unix.F_SETFD, 0); err != nil {
			return errors.Wrapf(err, "clearing FD_CLOEXEC on fd %d", new)
		}
	}
	return nil
}
