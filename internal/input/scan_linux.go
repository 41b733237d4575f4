package input

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const byIDDir = "/dev/input/by-id"

// ScanDevices lists pointing devices currently exposed under
// /dev/input/by-id, resolved to their event node paths.
func ScanDevices() ([]DeviceInfo, error) {
	entries, err := os.ReadDir(byIDDir)
	if err != nil {
		return nil, err
	}
	var devices []DeviceInfo
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, "-event-mouse") {
			continue
		}
		target, err := os.Readlink(filepath.Join(byIDDir, name))
		if err != nil {
			continue
		}
		path := target
		if !filepath.IsAbs(path) {
			path = filepath.Join("/dev/input", filepath.Base(target))
		}
		devices = append(devices, DeviceInfo{Name: name, Path: path})
	}
	sort.Slice(devices, func(i, j int) bool { return devices[i].Name < devices[j].Name })
	return devices, nil
}

// DefaultDevice picks the first detected mouse, or an error message-worthy
// empty result when none are present.
func DefaultDevice() (DeviceInfo, bool) {
	devices, err := ScanDevices()
	if err != nil || len(devices) == 0 {
		return DeviceInfo{}, false
	}
	return devices[0], true
}
