package repository

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cruciblehq/sarus/internal/imageref"
)

func newTestRepo(t *testing.T) Repository {
	t.Helper()
	root := t.TempDir()
	repo := Select(root, "", false)
	if err := repo.EnsureDirectories(-1, -1); err != nil {
		t.Fatalf("EnsureDirectories returned error: %v", err)
	}
	return repo
}

func TestReadIndexMissingIsEmpty(t *testing.T) {
	repo := newTestRepo(t)
	list, err := repo.ReadIndex()
	if err != nil {
		t.Fatalf("ReadIndex returned error: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("got %d entries, want 0", len(list))
	}
}

func TestStoreListLookupRemove(t *testing.T) {
	repo := newTestRepo(t)

	ref, err := imageref.Parse("alpine:3.19")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	scratchFile := filepath.Join(t.TempDir(), "image.squashfs")
	if err := os.WriteFile(scratchFile, []byte("squashfs-contents"), 0644); err != nil {
		t.Fatalf("writing scratch squashfs file: %v", err)
	}

	img := StoredImage{
		Reference: ref,
		ID:        "deadbeef",
		DataSize:  CreateSizeString(18),
		Created:   "2026-08-03T00:00:00Z",
	}
	if err := repo.Store(img, scratchFile); err != nil {
		t.Fatalf("Store returned error: %v", err)
	}

	list, err := repo.List()
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(list) != 1 || list[0].Reference.Key() != ref.Key() {
		t.Fatalf("got %+v, want one entry for %s", list, ref)
	}

	found, err := repo.Lookup(ref)
	if err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	if found.ID != "deadbeef" {
		t.Errorf("got ID=%q, want deadbeef", found.ID)
	}
	if _, err := os.Stat(found.ImageFile); err != nil {
		t.Errorf("expected squashfs file installed at %q: %v", found.ImageFile, err)
	}

	if err := repo.Remove(ref); err != nil {
		t.Fatalf("Remove returned error: %v", err)
	}
	if _, err := repo.Lookup(ref); err == nil {
		t.Fatal("expected lookup to fail after removal, got nil error")
	}
}

func TestStoreReplacesPriorRecordForSameKey(t *testing.T) {
	repo := newTestRepo(t)
	ref, _ := imageref.Parse("alpine:3.19")

	for _, id := range []string{"first", "second"} {
		scratchFile := filepath.Join(t.TempDir(), "image.squashfs")
		os.WriteFile(scratchFile, []byte(id), 0644)
		if err := repo.Store(StoredImage{Reference: ref, ID: id}, scratchFile); err != nil {
			t.Fatalf("Store(%s) returned error: %v", id, err)
		}
	}

	list, err := repo.List()
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("got %d entries, want 1 (replaced)", len(list))
	}
	if list[0].ID != "second" {
		t.Errorf("got ID=%q, want second", list[0].ID)
	}
}

func TestLookupIgnoresDigestWhenAbsent(t *testing.T) {
	repo := newTestRepo(t)
	stored, _ := imageref.Parse("alpine:3.19@sha256:" + strings.Repeat("a", 64))

	scratchFile := filepath.Join(t.TempDir(), "image.squashfs")
	os.WriteFile(scratchFile, []byte("x"), 0644)
	if err := repo.Store(StoredImage{Reference: stored, ID: "x"}, scratchFile); err != nil {
		t.Fatalf("Store returned error: %v", err)
	}

	query, _ := imageref.Parse("alpine:3.19")
	query.Digest = ""
	found, err := repo.Lookup(query)
	if err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	if found.ID != "x" {
		t.Errorf("got %+v", found)
	}
}

func TestRemoveMissingReturnsNotFound(t *testing.T) {
	repo := newTestRepo(t)
	ref, _ := imageref.Parse("nonexistent")
	if err := repo.Remove(ref); err == nil {
		t.Fatal("expected error removing nonexistent image, got nil")
	}
}
