package disk

import (
	"fmt"

	psdisk "github.com/shirou/gopsutil/v3/disk"
)

// Usage is a snapshot of the filesystem holding a path
type Usage struct {
	UsedPercent float64
	FreeBytes   int64
	TotalBytes  int64
}

// GetDiskUsage returns the percentage of disk space used for a given path.
// Free space counts only blocks available to unprivileged users.
func GetDiskUsage(path string) (usedPercent float64, freeBytes int64, totalBytes int64, err error) {
	stat, err := psdisk.Usage(path)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("disk usage of %s: %w", path, err)
	}
	return stat.UsedPercent, clampInt64(stat.Free), clampInt64(stat.Total), nil
}

// Probe returns the usage of the filesystem holding path
func Probe(path string) (Usage, error) {
	used, free, total, err := GetDiskUsage(path)
	if err != nil {
		return Usage{}, err
	}
	return Usage{UsedPercent: used, FreeBytes: free, TotalBytes: total}, nil
}

func clampInt64(v uint64) int64 {
	if v > 1<<63-1 {
		return 1<<63 - 1
	}
	return int64(v)
}
