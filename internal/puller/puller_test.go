package puller

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cruciblehq/sarus/internal/imageref"
)

func fakeCopier(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake-skopeo")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0755); err != nil {
		t.Fatalf("writing fake copier: %v", err)
	}
	return path
}

func TestPullSucceedsOnFirstAttempt(t *testing.T) {
	copier := fakeCopier(t, "exit 0")
	p := Puller{CopierPath: copier}
	ref, _ := imageref.Parse("alpine:3.19")

	layout, err := p.Pull(context.Background(), ref, t.TempDir())
	if err != nil {
		t.Fatalf("Pull returned error: %v", err)
	}
	if layout == "" {
		t.Error("expected non-empty layout path")
	}
}

func TestPullRetriesTransientFailure(t *testing.T) {
	dir := t.TempDir()
	counterFile := filepath.Join(dir, "attempts")
	script := `
count=0
if [ -f "` + counterFile + `" ]; then
  count=$(cat "` + counterFile + `")
fi
count=$((count + 1))
echo "$count" > "` + counterFile + `"
if [ "$count" -lt 2 ]; then
  echo "i/o timeout" >&2
  exit 1
fi
exit 0
`
	copier := fakeCopier(t, script)
	p := Puller{CopierPath: copier, RetryBaseDelay: 10 * time.Millisecond}
	ref, _ := imageref.Parse("alpine:3.19")

	start := time.Now()
	_, err := p.Pull(context.Background(), ref, t.TempDir())
	if err != nil {
		t.Fatalf("Pull returned error: %v", err)
	}
	if time.Since(start) < p.RetryBaseDelay {
		t.Errorf("expected at least one backoff delay, took %v", time.Since(start))
	}

	data, _ := os.ReadFile(counterFile)
	if string(data) != "2\n" {
		t.Errorf("got attempts=%q, want 2", string(data))
	}
}

func TestPullSurfacesAuthFailureImmediately(t *testing.T) {
	dir := t.TempDir()
	counterFile := filepath.Join(dir, "attempts")
	script := `
count=0
if [ -f "` + counterFile + `" ]; then
  count=$(cat "` + counterFile + `")
fi
count=$((count + 1))
echo "$count" > "` + counterFile + `"
echo "unauthorized: authentication required" >&2
exit 1
`
	copier := fakeCopier(t, script)
	p := Puller{CopierPath: copier, RetryBaseDelay: 10 * time.Millisecond}
	ref, _ := imageref.Parse("private/image:tag")

	start := time.Now()
	_, err := p.Pull(context.Background(), ref, t.TempDir())
	if err == nil {
		t.Fatal("expected error for auth failure, got nil")
	}
	if time.Since(start) > p.RetryBaseDelay {
		t.Errorf("expected no retry backoff on auth failure, took %v", time.Since(start))
	}

	data, _ := os.ReadFile(counterFile)
	if string(data) != "1\n" {
		t.Errorf("got attempts=%q, want a single attempt", string(data))
	}
}

func TestPullExhaustsRetries(t *testing.T) {
	copier := fakeCopier(t, `echo "connection reset" >&2; exit 1`)
	p := Puller{CopierPath: copier, RetryBaseDelay: time.Millisecond}
	ref, _ := imageref.Parse("alpine:3.19")

	_, err := p.Pull(context.Background(), ref, t.TempDir())
	if err == nil {
		t.Fatal("expected error after exhausting retries, got nil")
	}
}
