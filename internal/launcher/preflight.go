package launcher

import (
	"fmt"

	"golang.org/x/sys/unix"
)

var statfs = unix.Statfs

// checkFreeSpace verifies the volume holding dir has at least minGiB free.
// All six invocations write into the same output directory, so running out
// of space mid-run corrupts every shard at once.
func checkFreeSpace(dir string, minGiB int) error {
	if minGiB <= 0 {
		return nil
	}
	var stat unix.Statfs_t
	if err := statfs(dir, &stat); err != nil {
		return fmt.Errorf("statfs %s: %w", dir, err)
	}
	freeBytes := stat.Bavail * uint64(stat.Bsize)
	required := uint64(minGiB) << 30
	if freeBytes < required {
		return fmt.Errorf("insufficient free space on %s: %d GiB available, %d GiB required",
			dir, freeBytes>>30, minGiB)
	}
	return nil
}
