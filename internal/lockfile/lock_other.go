//go:build !unix

package lockfile

import "os"

// Non-unix platforms fall back to no-op locking. The collection is still
// protected by atomic rename on write; concurrent writers on these
// platforms must serialize externally.

func flockExclusiveBlocking(f *os.File) error { return nil }

func flockExclusiveNonBlock(f *os.File) error { return nil }

func flockUnlock(f *os.File) error { return nil }
