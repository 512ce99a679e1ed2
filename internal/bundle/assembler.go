package bundle

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strconv"

	specs "github.com/opencontainers/runtime-spec/specs-go"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/cruciblehq/sarus/internal/common"
	"github.com/cruciblehq/sarus/internal/configsmerger"
	"github.com/cruciblehq/sarus/internal/fdhandler"
	"github.com/cruciblehq/sarus/internal/logging"
)

// Options carries everything the assembler needs to build one bundle
// for one "run" invocation.
type Options struct {
	// BundleDir is the exclusive, per-invocation directory the bundle
	// is assembled under; the caller creates it and owns its removal
	// once the Bundle is Close()d.
	BundleDir string

	// SquashfsPath is the image's packed rootfs.
	SquashfsPath string

	// PrefixDir is the sarus installation prefix, holding the stock
	// nsswitch.conf/passwd/group files copied into every container.
	PrefixDir string

	Config     common.Config
	Invocation common.CommandRun
	Merger     configsmerger.Merger
	Logger     logging.Logger
}

// Bundle is the assembled, mounted OCI bundle. Close unwinds every
// mount and loop attachment performed while assembling it, in reverse
// order; it must be called exactly once, after the runtime driver's
// child has exited.
type Bundle struct {
	Dir                  string
	RootfsDir            string
	ConfigPath           string
	ExtraFileDescriptors int

	release *releaseStack
}

// Close tears down the bundle's mounts and loop device. It is safe to
// call after a partially-failed Assemble only if the caller already
// received a non-nil Bundle (Assemble itself unwinds on failure and
// returns a nil Bundle).
func (b *Bundle) Close() error {
	b.release.unwind()
	return nil
}

// Assemble performs the ordered bundle-assembly sequence: mount
// namespace isolation, the rootfs overlay, /dev and /etc population,
// custom/device/PMIx mounts, fd preservation, and config.json
// generation. Any step failure unwinds everything done so far, in
// reverse, before returning.
func Assemble(ctx context.Context, opts Options) (*Bundle, error) {
	log := opts.Logger.With("bundleDir", opts.BundleDir)
	release := &releaseStack{}

	fail := func(step string, err error) (*Bundle, error) {
		log.Error("bundle assembly step failed", "step", step, "error", err)
		release.unwind()
		return nil, err
	}

	// 1. Detach the mount namespace from the host.
	log.Info("detaching mount namespace")
	if err := unix.Unshare(unix.CLONE_NEWNS); err != nil {
		return fail("detach-namespace", errors.Wrap(ErrSyscall, "unshare(CLONE_NEWNS): "+err.Error()))
	}

	// 2. Remount / as slave-recursive so later mounts stay private.
	log.Info("remounting / as slave-recursive")
	if err := remountSlaveRecursive("/"); err != nil {
		return fail("remount-root-slave", err)
	}

	// 3. Mount a tmpfs/ramfs at the bundle dir, remount slave-recursive, chmod 0755.
	ramfsType := opts.Config.RamfsType
	if ramfsType == "" {
		ramfsType = "tmpfs"
	}
	log.Info("mounting bundle isolation filesystem", "type", ramfsType)
	if err := mountTmpfsOrRamfs(ramfsType, opts.BundleDir, "", unix.MS_NOSUID|unix.MS_NODEV); err != nil {
		return fail("mount-bundle-fs", err)
	}
	release.push(func() { unmount(opts.BundleDir) })
	if err := remountSlaveRecursive(opts.BundleDir); err != nil {
		return fail("remount-bundle-fs-slave", err)
	}
	if err := os.Chmod(opts.BundleDir, 0o755); err != nil {
		return fail("chmod-bundle-dir", errors.Wrapf(ErrSyscall, "chmod %q: %s", opts.BundleDir, err))
	}

	// 4. Create overlay/{rootfs-lower,rootfs-upper,rootfs-work} and rootfs/.
	lowerDir := filepath.Join(opts.BundleDir, "overlay", "rootfs-lower")
	upperDir := filepath.Join(opts.BundleDir, "overlay", "rootfs-upper")
	workDir := filepath.Join(opts.BundleDir, "overlay", "rootfs-work")
	rootfsDir := filepath.Join(opts.BundleDir, "rootfs")
	log.Info("creating overlay directories")
	for _, dir := range []string{lowerDir, upperDir, workDir, rootfsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fail("mkdir-overlay-dirs", errors.Wrapf(ErrSyscall, "mkdir %q: %s", dir, err))
		}
	}
	uid, gid := opts.Invocation.Identity.UID, opts.Invocation.Identity.GID
	if err := os.Chown(upperDir, uid, gid); err != nil {
		return fail("chown-upperdir", errors.Wrapf(ErrSyscall, "chown %q: %s", upperDir, err))
	}

	// 5. Loop-mount the image squashfs read-only at rootfs-lower.
	log.Info("attaching loop device", "image", opts.SquashfsPath)
	loopDevice, err := AttachLoopDevice(opts.SquashfsPath)
	if err != nil {
		return fail("attach-loop-device", err)
	}
	release.push(func() { DetachLoopDevice(loopDevice) })
	if err := unix.Mount(loopDevice, lowerDir, "squashfs", unix.MS_RDONLY, ""); err != nil {
		return fail("mount-squashfs", errors.Wrapf(ErrSyscall, "mounting %q at %q: %s", loopDevice, lowerDir, err))
	}
	release.push(func() { unmount(lowerDir) })

	// 6. Overlay-mount lower/upper/work onto rootfs/.
	log.Info("mounting overlay rootfs")
	if err := mountOverlayfs(lowerDir, upperDir, workDir, rootfsDir); err != nil {
		return fail("mount-overlay", err)
	}
	release.push(func() { unmount(rootfsDir) })

	// 7. Create rootfs/dev and mount tmpfs there.
	devDir := filepath.Join(rootfsDir, "dev")
	log.Info("mounting /dev")
	if err := os.MkdirAll(devDir, 0o755); err != nil {
		return fail("mkdir-dev", errors.Wrapf(ErrSyscall, "mkdir %q: %s", devDir, err))
	}
	if err := mountTmpfsOrRamfs("tmpfs", devDir, "mode=755,size=65536k", unix.MS_NOSUID|unix.MS_STRICTATIME); err != nil {
		return fail("mount-dev", err)
	}
	release.push(func() { unmount(devDir) })

	// 8. Copy /etc/hosts, /etc/resolv.conf, and the installation's stock
	// nsswitch.conf/passwd/group into rootfs/etc.
	log.Info("populating /etc")
	if err := populateEtc(opts.PrefixDir, rootfsDir, uid, gid); err != nil {
		return fail("populate-etc", err)
	}

	// 9. Optionally bind the static init binary onto rootfs/dev/init.
	if opts.Invocation.AddInitProcess {
		log.Info("installing init binary")
		initTarget := filepath.Join(rootfsDir, "dev", "init")
		if err := createDeviceNode(initTarget); err != nil {
			return fail("create-init-placeholder", err)
		}
		if err := bindMount(opts.Config.InitProgramPath, initTarget, 0); err != nil {
			return fail("mount-init", err)
		}
		release.push(func() { unmount(initTarget) })
	}

	// 10. Perform custom mounts (user + site), in order.
	log.Info("performing custom mounts", "count", len(opts.Invocation.CustomMounts))
	if err := performMounts(rootfsDir, opts.Invocation.CustomMounts, release, log); err != nil {
		return fail("custom-mounts", err)
	}

	// 11. PMIx feature-specific mounts, when requested.
	if opts.Invocation.EnablePMIx {
		extra := pmixExtraMounts(opts.Invocation)
		log.Info("performing PMIx mounts", "count", len(extra))
		if err := performMounts(rootfsDir, extra, release, log); err != nil {
			return fail("pmix-mounts", err)
		}
	}

	// 12. Device mounts, plus cgroup allow entries.
	log.Info("performing device mounts", "count", len(opts.Invocation.DeviceMounts))
	var cgroupDevices []deviceCgroupEntry
	for _, dm := range opts.Invocation.DeviceMounts {
		entry, err := statDeviceCgroupEntry(dm)
		if err != nil {
			return fail("stat-device", err)
		}
		cgroupDevices = append(cgroupDevices, entry)

		target := filepath.Join(rootfsDir, dm.Destination())
		if err := createDeviceNode(target); err != nil {
			return fail("create-device-placeholder", err)
		}
		if err := bindMount(dm.Source(), target, dm.Flags()); err != nil {
			return fail("mount-device", err)
		}
		release.push(func() { unmount(target) })
	}

	// 13. Remount rootfs/ with MS_REMOUNT|MS_NOSUID.
	log.Info("remounting rootfs nosuid")
	if err := remountNoSuid(rootfsDir, ""); err != nil {
		return fail("remount-rootfs-nosuid", err)
	}

	// 14. Preserve requested file descriptors: the PMI fd (if any) and
	// host stdout/stderr duped for hooks, compacted into a contiguous
	// range, with any environment variable referring to an old fd
	// number rewritten to its compacted value.
	log.Info("resolving preserved file descriptors")
	fds, err := fdhandler.NewHandler(opts.Invocation.PreserveFDs, opts.Invocation.HostEnvironment)
	if err != nil {
		return fail("resolve-fd-handler", errors.Wrap(ErrSyscall, err.Error()))
	}
	if err := fds.Apply(); err != nil {
		return fail("apply-fd-preservation", errors.Wrap(ErrSyscall, err.Error()))
	}

	command, err := opts.Merger.Command()
	if err != nil {
		return fail("resolve-command", err)
	}

	environment := opts.Merger.Environment()
	rewriteFDEnvironment(environment, fds)

	// 15. Generate config.json.
	log.Info("writing config.json")
	configPath, err := writeConfigJSON(opts.BundleDir, configJSONInputs{
		command:     command,
		environment: environment,
		cwd:         opts.Merger.Cwd(),
		identity:    opts.Invocation.Identity,
		hooks:       opts.Merger.HooksBlock(),
		mounts:      renderMountSpecs(opts.Invocation.CustomMounts, opts.Invocation.DeviceMounts),
		devices:     cgroupDevices,
		annotations: fdAnnotations(fds),
	})
	if err != nil {
		return fail("write-config-json", err)
	}

	return &Bundle{
		Dir:                  opts.BundleDir,
		RootfsDir:            rootfsDir,
		ConfigPath:           configPath,
		ExtraFileDescriptors: fds.Count(),
		release:              release,
	}, nil
}

// performMounts bind-mounts each requested mount beneath rootfsDir,
// pushing an unmount onto release for every mount that succeeds.
func performMounts(rootfsDir string, mounts []common.Mount, release *releaseStack, log logging.Logger) error {
	for _, m := range mounts {
		target := filepath.Join(rootfsDir, m.Destination())
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return errors.Wrapf(ErrSyscall, "mkdir %q: %s", filepath.Dir(target), err)
		}
		info, err := os.Stat(m.Source())
		if err != nil {
			return errors.Wrapf(ErrSyscall, "stat %q: %s", m.Source(), err)
		}
		if info.IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return errors.Wrapf(ErrSyscall, "mkdir %q: %s", target, err)
			}
		} else if err := createDeviceNode(target); err != nil {
			return err
		}
		log.Info("bind-mounting", "source", m.Source(), "destination", target)
		if err := bindMount(m.Source(), target, m.Flags()); err != nil {
			return err
		}
		release.push(func() { unmount(target) })
	}
	return nil
}

func populateEtc(prefixDir, rootfsDir string, uid, gid int) error {
	etcDir := filepath.Join(rootfsDir, "etc")
	if err := os.MkdirAll(etcDir, 0o755); err != nil {
		return errors.Wrapf(ErrSyscall, "mkdir %q: %s", etcDir, err)
	}

	copies := []struct{ src, dst string }{
		{"/etc/hosts", filepath.Join(etcDir, "hosts")},
		{"/etc/resolv.conf", filepath.Join(etcDir, "resolv.conf")},
		{filepath.Join(prefixDir, "etc", "container", "nsswitch.conf"), filepath.Join(etcDir, "nsswitch.conf")},
		{filepath.Join(prefixDir, "etc", "passwd"), filepath.Join(etcDir, "passwd")},
		{filepath.Join(prefixDir, "etc", "group"), filepath.Join(etcDir, "group")},
	}
	for _, c := range copies {
		if err := copyFileChowned(c.src, c.dst, uid, gid); err != nil {
			return err
		}
	}
	return nil
}

func copyFileChowned(src, dst string, uid, gid int) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(ErrSyscall, "opening %q: %s", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return errors.Wrapf(ErrSyscall, "creating %q: %s", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return errors.Wrapf(ErrSyscall, "copying %q to %q: %s", src, dst, err)
	}
	if err := out.Chown(uid, gid); err != nil {
		return errors.Wrapf(ErrSyscall, "chowning %q: %s", dst, err)
	}
	return nil
}

func renderMountSpecs(custom []common.Mount, devices []*common.DeviceMount) []specs.Mount {
	out := make([]specs.Mount, 0, len(custom)+len(devices))
	for _, m := range custom {
		out = append(out, specs.Mount{
			Destination: m.Destination(),
			Type:        "bind",
			Source:      m.Source(),
			Options:     []string{"bind"},
		})
	}
	for _, d := range devices {
		out = append(out, specs.Mount{
			Destination: d.Destination(),
			Type:        "bind",
			Source:      d.Source(),
			Options:     []string{"bind"},
		})
	}
	return out
}

// rewriteFDEnvironment rewrites environment variables that reference
// a preserved fd by its pre-compaction number to its compacted value,
// in place. PMI_FD is the only such variable; the two hook-stdio fds
// have no corresponding environment variable (hooks learn about them
// through the annotations fdAnnotations records).
func rewriteFDEnvironment(environment map[string]string, fds fdhandler.Handler) {
	if fds.PMIFD < 0 {
		return
	}
	if _, present := environment[fdhandler.PMIFDEnvVar]; !present {
		return
	}
	environment[fdhandler.PMIFDEnvVar] = strconv.Itoa(fds.Compacted[fds.PMIFD])
}

func fdAnnotations(fds fdhandler.Handler) map[string]string {
	if fds.Count() == 0 {
		return nil
	}
	annotations := make(map[string]string, len(fds.Compacted)+2)
	for old, new := range fds.Compacted {
		annotations["com.cruciblehq.sarus.preserved-fd."+strconv.Itoa(old)] = strconv.Itoa(new)
	}
	annotations["com.cruciblehq.sarus.hook-stdout-fd"] = strconv.Itoa(fds.Compacted[fds.HookStdoutFD])
	annotations["com.cruciblehq.sarus.hook-stderr-fd"] = strconv.Itoa(fds.Compacted[fds.HookStderrFD])
	return annotations
}
