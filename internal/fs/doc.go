// Package fs provides filesystem abstractions for testability and fault injection.
//
//   - [FileSystem]: open, remove, rename, stat, mkdir and readdir
//   - [LocalFS]: production implementation using the os package
//   - [FaultyFS]: test wrapper that injects write, sync, close and rename errors
//
// [WriteFileAtomic] is the single write path for table files and local blobs:
//
//	err := fs.WriteFileAtomic(fs.Default, path, 0o644, func(w io.Writer) error {
//	    _, err := t.WriteTo(w)
//	    return err
//	})
//
// The package does not take context.Context; local filesystem calls are not
// interruptible at the syscall level.
package fs
