// Package fdhandler computes and applies the file-descriptor
// preservation the bundle assembler records as annotations and the
// runtime driver passes to the OCI runtime via "--preserve-fds": the
// PMI_FD detection used by MPI launchers, and the fd-compaction that
// gives preserved descriptors a contiguous range starting at 3.
package fdhandler
