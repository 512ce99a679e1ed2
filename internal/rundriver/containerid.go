package rundriver

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// newContainerID returns a fresh "container-<16 hex chars>" identifier
// for one runc invocation.
func newContainerID() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return fmt.Sprintf("container-%s", hex.EncodeToString(buf)), nil
}
