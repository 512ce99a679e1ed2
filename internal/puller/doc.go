// Package puller acquires an OCI image from a remote registry into a
// local OCI-layout directory by delegating to an external copier
// (skopeo), retrying transient network failures.
package puller
