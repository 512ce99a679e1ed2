package fdhandler

import (
	"reflect"
	"testing"
)

func TestDetectPMIFDPresent(t *testing.T) {
	fd, ok := DetectPMIFD(map[string]string{"PMI_FD": "9"})
	if !ok || fd != 9 {
		t.Fatalf("got (%d, %v), want (9, true)", fd, ok)
	}
}

func TestDetectPMIFDAbsent(t *testing.T) {
	if _, ok := DetectPMIFD(map[string]string{}); ok {
		t.Fatalf("expected ok=false when PMI_FD unset")
	}
}

func TestDetectPMIFDMalformed(t *testing.T) {
	if _, ok := DetectPMIFD(map[string]string{"PMI_FD": "not-a-number"}); ok {
		t.Fatalf("expected ok=false for malformed PMI_FD")
	}
}

func TestComputeCompactionContiguousFromThree(t *testing.T) {
	got := computeCompaction([]int{11, 4, 99})
	want := map[int]int{11: 3, 4: 4, 99: 5}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestComputeCompactionEmpty(t *testing.T) {
	got := computeCompaction(nil)
	if len(got) != 0 {
		t.Fatalf("got %v, want empty map", got)
	}
}

// NewHandler always adds two hook-stdio fds on top of whatever the
// caller requested and PMI_FD contributes, so every expected count
// below is the pre-hook-stdio count plus 2.

func TestNewHandlerDedupesRequestedAndPMIFD(t *testing.T) {
	h, err := NewHandler([]int{10, 11}, map[string]string{"PMI_FD": "11"})
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}
	if len(h.Requested) != 4 {
		t.Fatalf("expected PMI_FD duplicate of an already-requested fd to be deduped, got %v", h.Requested)
	}
	if h.Count() != 4 {
		t.Fatalf("Count() = %d, want 4", h.Count())
	}
	if h.PMIFD != 11 {
		t.Fatalf("PMIFD = %d, want 11", h.PMIFD)
	}
}

func TestNewHandlerAppendsDistinctPMIFD(t *testing.T) {
	h, err := NewHandler([]int{10}, map[string]string{"PMI_FD": "20"})
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}
	if h.Count() != 4 {
		t.Fatalf("Count() = %d, want 4", h.Count())
	}
	if _, ok := h.Compacted[20]; !ok {
		t.Fatalf("expected PMI_FD 20 to be present in compaction map: %v", h.Compacted)
	}
	if h.PMIFD != 20 {
		t.Fatalf("PMIFD = %d, want 20", h.PMIFD)
	}
}

func TestNewHandlerNoPMIFD(t *testing.T) {
	h, err := NewHandler([]int{5, 6}, map[string]string{})
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}
	if h.Count() != 4 {
		t.Fatalf("Count() = %d, want 4", h.Count())
	}
	if h.PMIFD != -1 {
		t.Fatalf("PMIFD = %d, want -1", h.PMIFD)
	}
	for _, fd := range []int{5, 6} {
		new, ok := h.Compacted[fd]
		if !ok {
			t.Fatalf("expected requested fd %d in compaction map: %v", fd, h.Compacted)
		}
		if new < firstPreservedFD {
			t.Fatalf("compacted fd %d for %d below firstPreservedFD", new, fd)
		}
	}
}

func TestNewHandlerHookStdioAlwaysPresent(t *testing.T) {
	h, err := NewHandler(nil, map[string]string{})
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}
	if h.Count() != 2 {
		t.Fatalf("Count() = %d, want 2 (hook stdout+stderr only)", h.Count())
	}
	if h.HookStdoutFD == 0 || h.HookStderrFD == 0 {
		t.Fatalf("expected hook stdout/stderr fds to be duped, got stdout=%d stderr=%d", h.HookStdoutFD, h.HookStderrFD)
	}
	if h.HookStdoutFD == h.HookStderrFD {
		t.Fatalf("hook stdout and stderr fds must be distinct, both %d", h.HookStdoutFD)
	}
}
