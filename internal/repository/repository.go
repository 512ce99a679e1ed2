package repository

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/cruciblehq/sarus/internal/imageref"
)

const (
	imagesDirName   = "images"
	ociCacheDirName = "cache/ociImages"
	blobCacheDirName = "cache/blobs"
	indexFileName   = "index.json"

	dirMode  os.FileMode = 0755
	fileMode os.FileMode = 0644
)

// Repository is a rooted image repository: either a per-user local
// repo or a centralized, site-administered one. Selection between the
// two happens once, per invocation, via Select.
type Repository struct {
	root string
}

// Select returns the Repository rooted at local, or at central when
// useCentral is true. It does not touch the filesystem.
func Select(local, central string, useCentral bool) Repository {
	if useCentral {
		return Repository{root: central}
	}
	return Repository{root: local}
}

// Root returns the repository's root directory.
func (r Repository) Root() string { return r.root }

func (r Repository) imagesDir() string  { return filepath.Join(r.root, imagesDirName) }
func (r Repository) ociCacheDir() string { return filepath.Join(r.root, ociCacheDirName) }
func (r Repository) blobCacheDir() string { return filepath.Join(r.root, blobCacheDirName) }
func (r Repository) indexPath() string  { return filepath.Join(r.imagesDir(), indexFileName) }
func (r Repository) lockPath() string   { return r.indexPath() + ".lock" }

func (r Repository) squashfsPath(key string) string {
	return filepath.Join(r.imagesDir(), key+".squashfs")
}

func (r Repository) metadataPath(key string) string {
	return filepath.Join(r.imagesDir(), key+".meta")
}

// MetadataPath returns the path the metadata sidecar for ref is, or
// will be, stored at. Callers write the sidecar here before calling
// Store, which installs the squashfs file alongside it and indexes
// both under the same key.
func (r Repository) MetadataPath(ref imageref.Reference) string {
	return r.metadataPath(ref.Key())
}

// OCICacheDir returns the directory skopeo targets for OCI-layout
// pulls.
func (r Repository) OCICacheDir() string { return r.ociCacheDir() }

// BlobCacheDir returns the shared blob cache directory handed to the
// external copier so unchanged layers are not re-downloaded.
func (r Repository) BlobCacheDir() string { return r.blobCacheDir() }

// EnsureDirectories idempotently creates the repository's directory
// tree, chowning to uid/gid when both are non-negative (only meaningful for a local
// per-user repository being (re)created on behalf of that user).
func (r Repository) EnsureDirectories(uid, gid int) error {
	dirs := []string{r.imagesDir(), r.ociCacheDir(), r.blobCacheDir()}
	for _, d := range dirs {
		if err := os.MkdirAll(d, dirMode); err != nil {
			return errors.Wrapf(ErrRepository, "creating directory %q: %s", d, err)
		}
		if uid >= 0 && gid >= 0 {
			if err := os.Chown(d, uid, gid); err != nil {
				return errors.Wrapf(ErrRepository, "chowning directory %q: %s", d, err)
			}
		}
	}
	return nil
}

// NewScratchDir creates and returns a fresh random scratch directory
// under base, for the duration of one pull or one run's bundle.
func NewScratchDir(base string) (string, error) {
	dir := filepath.Join(base, uuid.NewString())
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return "", errors.Wrapf(ErrRepository, "creating scratch directory %q: %s", dir, err)
	}
	return dir, nil
}

// ReadIndex reads and parses index.json, tolerating a missing file as
// an empty index.
func (r Repository) ReadIndex() ([]StoredImage, error) {
	data, err := os.ReadFile(r.indexPath())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(ErrRepository, "reading index %q: %s", r.indexPath(), err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	var list []StoredImage
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, errors.Wrapf(ErrRepository, "parsing index %q: %s", r.indexPath(), err)
	}
	return list, nil
}

// writeIndexAtomic writes list to index.json via a sibling temp file,
// fsync, and rename, so readers never observe a partially written
// index.
func (r Repository) writeIndexAtomic(list []StoredImage) error {
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return errors.Wrap(ErrRepository, "marshaling index")
	}

	tmp, err := os.CreateTemp(r.imagesDir(), indexFileName+".tmp-*")
	if err != nil {
		return errors.Wrapf(ErrRepository, "creating temp index file: %s", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once the rename below succeeds.

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrapf(ErrRepository, "writing temp index file: %s", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrapf(ErrRepository, "fsyncing temp index file: %s", err)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(ErrRepository, "closing temp index file: %s", err)
	}
	if err := os.Chmod(tmpPath, fileMode); err != nil {
		return errors.Wrapf(ErrRepository, "chmoding temp index file: %s", err)
	}
	if err := os.Rename(tmpPath, r.indexPath()); err != nil {
		return errors.Wrapf(ErrRepository, "renaming index into place: %s", err)
	}
	return nil
}

// withIndexLock takes an exclusive advisory lock on a sibling lock
// file around fn, which reads and/or rewrites the index.
func (r Repository) withIndexLock(fn func() error) error {
	fl := flock.New(r.lockPath())
	if err := fl.Lock(); err != nil {
		return errors.Wrapf(ErrRepository, "locking index: %s", err)
	}
	defer fl.Unlock()
	return fn()
}

// List returns every record currently in the index.
func (r Repository) List() ([]StoredImage, error) {
	var list []StoredImage
	err := r.withIndexLock(func() error {
		var err error
		list, err = r.ReadIndex()
		return err
	})
	return list, err
}

// Store moves squashfsPath into the repository, records the metadata
// sidecar path next to it (the caller writes the sidecar beforehand, at
// MetadataPath), and replaces any prior index entry for the same key.
func (r Repository) Store(img StoredImage, squashfsPath string) error {
	key := img.Reference.Key()
	img.ImageFile = r.squashfsPath(key)
	img.MetadataFile = r.metadataPath(key)

	return r.withIndexLock(func() error {
		if err := os.Rename(squashfsPath, img.ImageFile); err != nil {
			return errors.Wrapf(ErrRepository, "installing squashfs file for %q: %s", img.Reference, err)
		}

		list, err := r.ReadIndex()
		if err != nil {
			return err
		}
		out := list[:0]
		for _, existing := range list {
			if existing.Reference.Key() != key {
				out = append(out, existing)
			}
		}
		out = append(out, img)
		return r.writeIndexAtomic(out)
	})
}

// Remove deletes the squashfs file, metadata sidecar, and index entry
// for ref. Missing artifact files are tolerated.
func (r Repository) Remove(ref imageref.Reference) error {
	key := ref.Key()
	return r.withIndexLock(func() error {
		list, err := r.ReadIndex()
		if err != nil {
			return err
		}

		var removed bool
		out := list[:0]
		for _, existing := range list {
			if existing.Reference.Key() == key {
				removed = true
				continue
			}
			out = append(out, existing)
		}
		if !removed {
			return errors.Wrapf(ErrNotFound, "%s", ref)
		}

		for _, p := range []string{r.squashfsPath(key), r.metadataPath(key)} {
			if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
				return errors.Wrapf(ErrRepository, "removing %q: %s", p, err)
			}
		}
		return r.writeIndexAtomic(out)
	})
}

// Lookup resolves ref against the index: first by exact key, then by
// (server, namespace, name, tag) with a missing digest on either side
// ignored.
func (r Repository) Lookup(ref imageref.Reference) (StoredImage, error) {
	list, err := r.List()
	if err != nil {
		return StoredImage{}, err
	}

	key := ref.Key()
	for _, img := range list {
		if img.Reference.Key() == key {
			return img, nil
		}
	}

	for _, img := range list {
		if img.Reference.Server == ref.Server &&
			img.Reference.Namespace == ref.Namespace &&
			img.Reference.Name == ref.Name &&
			img.Reference.Tag == ref.Tag &&
			(ref.Digest == "" || img.Reference.Digest == "") {
			return img, nil
		}
	}

	return StoredImage{}, errors.Wrapf(ErrNotFound, "%s", ref)
}
