// Package fs provides filesystem abstractions for testability and fault injection.
//
// The package defines two key interfaces:
//
//   - [File]: an open file with read/write/sync capabilities
//   - [FileSystem]: filesystem operations (open, remove, rename, stat)
//
// # Implementations
//
//   - [LocalFS]: production implementation using the standard os package
//   - [FaultyFS]: test utility that injects open, write, read, sync and close failures
//
// Production code uses fs.Default. Tests swap in a [FaultyFS]:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule("store.bin", fs.Fault{FailAfterBytes: 8, FailAfterReads: -1})
//
// Operations take no context.Context: local file system calls are not
// interruptible at the syscall level.
package fs
