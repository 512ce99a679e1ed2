package configsmerger

import (
	"sort"
	"strconv"
	"strings"
)

const (
	envMPIHook        = "SARUS_MPI_HOOK"
	envSSHHook        = "SARUS_SSH_HOOK"
	envSlurmSyncHook  = "SARUS_SLURM_GLOBAL_SYNC_HOOK"
	envPMIxHook       = "SARUS_PMIX_HOOK"
	envDevicesHook    = "SARUS_DEVICES_HOOK"

	envNvidiaVisible   = "NVIDIA_VISIBLE_DEVICES"
	envCudaVisible     = "CUDA_VISIBLE_DEVICES"
	envNvidiaCapability = "NVIDIA_DRIVER_CAPABILITIES"

	cudaNoDevFiles = "NoDevFiles"
)

// EnvironmentInputs bundles what ResolveEnvironment needs: the host's
// own environment snapshot, the image's declared environment, and the
// invocation's hook-enable flags.
type EnvironmentInputs struct {
	HostEnv      map[string]string
	ImageEnv     map[string]string
	UseMPI       bool
	EnableSSH    bool
	EnablePMIx   bool
	HasDevices   bool
}

// ResolveEnvironment builds the container environment: host env,
// overlaid with the image's env (image wins on collision), plus hook
// toggles, plus the Nvidia/CUDA device remap.
func ResolveEnvironment(in EnvironmentInputs) map[string]string {
	merged := make(map[string]string, len(in.HostEnv)+len(in.ImageEnv))
	for k, v := range in.HostEnv {
		merged[k] = v
	}
	for k, v := range in.ImageEnv {
		merged[k] = v
	}

	if in.UseMPI {
		merged[envMPIHook] = "1"
	}
	if in.EnableSSH {
		merged[envSSHHook] = "1"
		merged[envSlurmSyncHook] = "1"
	}
	if in.EnablePMIx {
		merged[envPMIxHook] = "1"
	}
	if in.HasDevices {
		merged[envDevicesHook] = "1"
	}

	applyNvidiaRemap(merged, in.HostEnv, in.ImageEnv)

	return merged
}

// applyNvidiaRemap implements the Nvidia/CUDA visibility remap. It
// consults the host's *original* CUDA_VISIBLE_DEVICES (not whatever
// the image env overlay may have left in merged), since the image
// cannot be allowed to pick which host devices the container sees.
func applyNvidiaRemap(merged, hostEnv, imageEnv map[string]string) {
	if _, advertised := imageEnv[envNvidiaVisible]; !advertised {
		return
	}

	hostCuda := hostEnv[envCudaVisible]
	if hostCuda == "" || hostCuda == cudaNoDevFiles {
		delete(merged, envNvidiaVisible)
		delete(merged, envCudaVisible)
		delete(merged, envNvidiaCapability)
		return
	}

	ids := toInts(strings.Split(hostCuda, ","))
	sorted := append([]int(nil), ids...)
	sort.Ints(sorted)
	rank := make(map[int]int, len(sorted))
	for i, id := range sorted {
		rank[id] = i
	}

	indices := make([]string, len(ids))
	for i, id := range ids {
		indices[i] = strconv.Itoa(rank[id])
	}

	merged[envNvidiaVisible] = hostCuda
	merged[envCudaVisible] = strings.Join(indices, ",")
	if _, hasCapabilities := imageEnv[envNvidiaCapability]; !hasCapabilities {
		merged[envNvidiaCapability] = "all"
	}
}

// toInts parses device ids for ranking; a non-numeric id sorts as 0
// rather than failing the whole remap.
func toInts(ids []string) []int {
	out := make([]int, len(ids))
	for i, id := range ids {
		n, _ := strconv.Atoi(id)
		out[i] = n
	}
	return out
}
