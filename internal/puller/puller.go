package puller

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/cruciblehq/sarus/internal/exectool"
	"github.com/cruciblehq/sarus/internal/imageref"
)

// MaxRetries bounds the number of retry attempts for transient
// failures, per the copier's retry contract (N=3 additional attempts
// after the first).
const MaxRetries = 3

// DefaultRetryBaseDelay is the backoff base used when
// Puller.RetryBaseDelay is left zero.
const DefaultRetryBaseDelay = 2 * time.Second

var authFailurePatterns = []string{
	"unauthorized",
	"authentication required",
	"access denied",
	"denied: requested access",
	"401 unauthorized",
	"403 forbidden",
}

// LayoutTag returns the tag an image reference is stored under inside
// the OCI-layout directory Pull produces: ref's own tag, or "pulled"
// for a reference identified only by digest.
func LayoutTag(ref imageref.Reference) string {
	if ref.Tag == "" {
		return "pulled"
	}
	return ref.Tag
}

// Puller invokes an external copier to pull images as OCI layouts.
type Puller struct {
	CopierPath     string
	BlobCacheDir   string
	RetryBaseDelay time.Duration
}

func (p Puller) retryBaseDelay() time.Duration {
	if p.RetryBaseDelay > 0 {
		return p.RetryBaseDelay
	}
	return DefaultRetryBaseDelay
}

// Pull downloads ref into an OCI-layout directory at
// "<scratchDir>/oci", tagged with LayoutTag(ref): ref's tag, or
// "pulled" when ref carries no tag. It retries transient failures up to
// MaxRetries times with exponential backoff; authentication failures
// are surfaced immediately.
func (p Puller) Pull(ctx context.Context, ref imageref.Reference, scratchDir string) (layoutPath string, err error) {
	layoutTag := LayoutTag(ref)
	layoutPath = scratchDir + "/oci"
	dest := fmt.Sprintf("oci:%s:%s", layoutPath, layoutTag)
	src := "docker://" + ref.String()

	args := []string{"copy", src, dest}
	if p.BlobCacheDir != "" {
		args = append(args, "--dest-shared-blob-dir", p.BlobCacheDir, "--src-shared-blob-dir", p.BlobCacheDir)
	}

	var lastErr error
	for attempt := 0; attempt <= MaxRetries; attempt++ {
		_, runErr := exectool.Run(ctx, p.CopierPath, args...)
		if runErr == nil {
			return layoutPath, nil
		}

		if isAuthFailure(runErr.Error()) {
			return "", errors.Wrapf(ErrAuthentication, "pulling %s: %s", ref, runErr)
		}

		lastErr = runErr
		if attempt == MaxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(p.retryBaseDelay() * (1 << attempt)):
		}
	}

	return "", errors.Wrapf(lastErr, "pulling %s: exhausted %d retries", ref, MaxRetries)
}

func isAuthFailure(message string) bool {
	lower := strings.ToLower(message)
	for _, pattern := range authFailurePatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}
