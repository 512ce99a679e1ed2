package cli

import (
	"context"
	"os"

	"github.com/cruciblehq/sarus/internal/bundle"
	"github.com/cruciblehq/sarus/internal/common"
	"github.com/cruciblehq/sarus/internal/configsmerger"
	"github.com/cruciblehq/sarus/internal/imageref"
	"github.com/cruciblehq/sarus/internal/logging"
	"github.com/cruciblehq/sarus/internal/metadata"
	"github.com/cruciblehq/sarus/internal/paths"
	"github.com/cruciblehq/sarus/internal/repository"
	"github.com/cruciblehq/sarus/internal/rundriver"
)

// RunCmd is the "sarus run" command: assemble a bundle from a pulled
// image and execute it under the OCI runtime.
type RunCmd struct {
	CentralizedRepository bool     `help:"Run against the centralized repository instead of the per-user one."`
	Mount                  []string `help:"Bind mount \"source,destination[,ro|rw,recursive|private]\". Repeatable." placeholder:"SPEC"`
	Device                 []string `help:"Device mount \"host[:container[:access]]\". Repeatable." placeholder:"SPEC"`
	Entrypoint             string   `help:"Override the image's entrypoint."`
	Workdir                string   `help:"Override the container's initial working directory." placeholder:"DIR"`
	Env                    []string `help:"Set an environment variable \"KEY=VALUE\". Repeatable." placeholder:"KEY=VALUE"`
	MPI                    bool     `name:"mpi" help:"Enable the MPI support hook."`
	SSH                    bool     `name:"ssh" help:"Enable the SSH support hook."`
	PMIx                   bool     `name:"pmix" help:"Enable the PMIx support hook."`
	Init                   bool     `name:"init" help:"Add an init process as PID 1."`

	Reference string   `arg:"" help:"Image reference to run."`
	Cmd       []string `arg:"" optional:"" help:"Command to execute; overrides the image's CMD."`
}

// Run resolves the image, merges its metadata with this invocation,
// assembles the OCI bundle, and executes the runtime. The process's
// own exit code mirrors the runtime's exit status exactly, per
// sarus's error-handling contract, so a non-zero runtime exit calls
// os.Exit directly instead of returning an error.
func (c *RunCmd) Run(ctx context.Context, log logging.Logger) error {
	ref, err := imageref.Parse(c.Reference)
	if err != nil {
		return err
	}
	log = log.With("reference", ref.String())

	repo, err := selectRepository(c.CentralizedRepository)
	if err != nil {
		return err
	}

	stored, err := repo.Lookup(ref)
	if err != nil {
		return err
	}

	meta, err := metadata.Load(stored.MetadataFile)
	if err != nil {
		return err
	}

	invocation, err := c.buildInvocation()
	if err != nil {
		return err
	}

	cfg := buildConfig()
	merger := configsmerger.Merger{
		Metadata:   meta,
		Invocation: invocation,
		Hooks:      cfg.Hooks,
		HooksEnv:   cfg.HooksEnvironment,
	}

	bundleDir, err := repository.NewScratchDir(paths.ScratchBaseDir())
	if err != nil {
		return err
	}
	defer os.RemoveAll(bundleDir)

	log.Info("assembling bundle", "bundleDir", bundleDir)
	b, err := bundle.Assemble(ctx, bundle.Options{
		BundleDir:    bundleDir,
		SquashfsPath: stored.ImageFile,
		PrefixDir:    RootCmd.PrefixDir,
		Config:       cfg,
		Invocation:   invocation,
		Merger:       merger,
		Logger:       log,
	})
	if err != nil {
		return err
	}
	defer b.Close()

	exitCode, err := rundriver.Execute(ctx, log, cfg.RuncPath, b.Dir, b.ExtraFileDescriptors)
	if err != nil {
		return err
	}
	if exitCode != 0 {
		b.Close()
		os.RemoveAll(bundleDir)
		os.Exit(exitCode)
	}
	return nil
}

func (c *RunCmd) buildInvocation() (common.CommandRun, error) {
	customMounts := make([]common.Mount, 0, len(c.Mount))
	for _, spec := range c.Mount {
		m, err := common.ParseBindMount(spec)
		if err != nil {
			return common.CommandRun{}, err
		}
		customMounts = append(customMounts, m)
	}

	deviceMounts := make([]*common.DeviceMount, 0, len(c.Device))
	for _, spec := range c.Device {
		d, err := common.ParseDeviceRequest(spec)
		if err != nil {
			return common.CommandRun{}, err
		}
		deviceMounts = append(deviceMounts, d)
	}

	var entrypoint []string
	if c.Entrypoint != "" {
		entrypoint = []string{c.Entrypoint}
	}

	var cmd []string
	if len(c.Cmd) > 0 {
		cmd = c.Cmd
	}

	groups, err := os.Getgroups()
	if err != nil {
		return common.CommandRun{}, err
	}

	return common.CommandRun{
		HostEnvironment: hostEnvironment(c.Env),
		Identity: common.UserIdentity{
			UID:               os.Getuid(),
			GID:               os.Getgid(),
			SupplementaryGIDs: groups,
		},
		HostPATH:       os.Getenv("PATH"),
		Entrypoint:     entrypoint,
		Cmd:            cmd,
		Workdir:        c.Workdir,
		CustomMounts:   customMounts,
		DeviceMounts:   deviceMounts,
		UseMPI:         c.MPI,
		EnableSSH:      c.SSH,
		EnablePMIx:     c.PMIx,
		AddInitProcess: c.Init,
	}, nil
}
