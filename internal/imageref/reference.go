package imageref

import (
	"strings"

	digest "github.com/opencontainers/go-digest"
	"github.com/pkg/errors"
)

const (
	// DefaultServer is used when no server segment is present.
	DefaultServer = "docker.io"

	// DefaultNamespace is used when no namespace segment is present.
	DefaultNamespace = "library"

	// DefaultTag is used when neither tag nor digest is present.
	DefaultTag = "latest"
)

// Reference identifies a container image by server, namespace, name, tag,
// and optional digest.
type Reference struct {
	Server    string
	Namespace string
	Name      string
	Tag       string
	Digest    string // "sha256:<64hex>" or empty.
}

// Parse parses a reference string of the form
// "[server/][namespace/...]name[:tag][@digest]".
//
// The left-most slash-separated token is treated as the server iff it
// contains '.' or ':', or equals "localhost"; everything between the
// server (or the start, if absent) and the final path segment becomes
// the namespace, joined back with '/'. The final path segment is the
// name. A trailing ":tag" and/or "@digest" may follow; both may be
// present at once. Defaults are applied for server, namespace, and
// (only when no digest is given) tag. Any empty or ".." path segment is
// rejected.
func Parse(s string) (Reference, error) {
	if s == "" {
		return Reference{}, errors.Wrap(ErrInvalidReference, "empty reference")
	}

	if err := rejectDotDotSegments(s); err != nil {
		return Reference{}, err
	}

	refPart, dig, err := splitDigest(s)
	if err != nil {
		return Reference{}, err
	}

	pathPart, tag := splitTag(refPart)

	segments := strings.Split(pathPart, "/")
	for _, seg := range segments {
		if seg == "" {
			return Reference{}, errors.Wrapf(ErrInvalidReference, "empty path segment in %q", s)
		}
	}

	server := ""
	rest := segments
	if len(segments) > 1 && isServerToken(segments[0]) {
		server = segments[0]
		rest = segments[1:]
	}

	if len(rest) == 0 {
		return Reference{}, errors.Wrapf(ErrInvalidReference, "missing image name in %q", s)
	}

	name := rest[len(rest)-1]
	namespace := strings.Join(rest[:len(rest)-1], "/")

	if server == "" {
		server = DefaultServer
	}
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if tag == "" && dig == "" {
		tag = DefaultTag
	}

	return Reference{
		Server:    server,
		Namespace: namespace,
		Name:      name,
		Tag:       tag,
		Digest:    dig,
	}, nil
}

// String renders the reference as "server/namespace/name[:tag][@digest]",
// with defaults already resolved by Parse.
func (r Reference) String() string {
	parts := make([]string, 0, 3)
	if r.Server != "" {
		parts = append(parts, r.Server)
	}
	if r.Namespace != "" {
		parts = append(parts, r.Namespace)
	}
	parts = append(parts, r.Name)

	s := strings.Join(parts, "/")
	if r.Tag != "" {
		s += ":" + r.Tag
	}
	if r.Digest != "" {
		s += "@" + r.Digest
	}
	return s
}

// Key returns the canonical, filesystem-safe key for this reference.
//
// The key is the join of the five fields with '~', a character the OCI
// reference grammar never allows in any of name, tag, server, or digest
// and which namespace can only contain after '/' is substituted for it
// here. Because only the (substituted) namespace field can contain '~',
// the split point between namespace and the fixed-position name/tag/
// digest fields that follow it is always recoverable, which makes the
// join injective: two references yield the same key iff they are equal
// field-wise.
func (r Reference) Key() string {
	ns := strings.ReplaceAll(r.Namespace, "/", "~")
	return strings.Join([]string{r.Server, ns, r.Name, r.Tag, r.Digest}, "~")
}

// Equal reports whether two references are equal field-wise.
func (r Reference) Equal(other Reference) bool {
	return r == other
}

func isServerToken(tok string) bool {
	return tok == "localhost" || strings.ContainsAny(tok, ".:")
}

func splitDigest(s string) (refPart, dig string, err error) {
	i := strings.LastIndex(s, "@")
	if i < 0 {
		return s, "", nil
	}
	dig = s[i+1:]
	if _, err := digest.Parse(dig); err != nil {
		return "", "", errors.Wrapf(ErrInvalidReference, "invalid digest %q: %s", dig, err)
	}
	return s[:i], dig, nil
}

// splitTag splits off a trailing ":tag", taking care not to confuse it
// with a ':' that is part of a server's port number by only considering
// a colon after the final '/'.
func splitTag(refPart string) (pathPart, tag string) {
	lastSlash := strings.LastIndex(refPart, "/")
	colon := strings.LastIndex(refPart, ":")
	if colon <= lastSlash {
		return refPart, ""
	}
	return refPart[:colon], refPart[colon+1:]
}

func rejectDotDotSegments(s string) error {
	for _, seg := range strings.Split(s, "/") {
		seg = strings.SplitN(seg, "@", 2)[0]
		seg = strings.SplitN(seg, ":", 2)[0]
		if seg == ".." {
			return errors.Wrapf(ErrInvalidReference, "%q contains a '..' path segment", s)
		}
	}
	return nil
}
