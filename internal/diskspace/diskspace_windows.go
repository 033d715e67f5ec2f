//go:build windows

package diskspace

import "golang.org/x/sys/windows"

// availableBytes returns the bytes available to the calling user on the
// volume holding dir, honoring quotas.
func availableBytes(dir string) (int64, bool) {
	path, err := windows.UTF16PtrFromString(dir)
	if err != nil {
		return 0, false
	}
	var freeAvailable, total, totalFree uint64
	if err := windows.GetDiskFreeSpaceEx(path, &freeAvailable, &total, &totalFree); err != nil {
		return 0, false
	}
	return int64(freeAvailable), true
}
