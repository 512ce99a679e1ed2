package cli

import (
	"os"
	"strings"
)

// hostEnvironment snapshots the process environment as a map and
// overlays any "--env K=V" overrides from the CLI on top of it.
func hostEnvironment(overrides []string) map[string]string {
	env := make(map[string]string, len(os.Environ())+len(overrides))
	for _, kv := range os.Environ() {
		k, v := splitEnv(kv)
		env[k] = v
	}
	for _, kv := range overrides {
		k, v := splitEnv(kv)
		env[k] = v
	}
	return env
}

func splitEnv(kv string) (key, value string) {
	if i := strings.IndexByte(kv, '='); i >= 0 {
		return kv[:i], kv[i+1:]
	}
	return kv, ""
}
