// Package input acquires raw relative-motion samples from the OS input
// backend. The Linux backend reads evdev event devices; other platforms
// are not supported.
package input

import "errors"

// ErrDeviceClosed is returned by Next after Close has been called. It
// marks a deliberate shutdown, as opposed to a mid-stream device failure.
var ErrDeviceClosed = errors.New("input device closed")

// DeviceInfo identifies a detected pointing device.
type DeviceInfo struct {
	Name string
	Path string
}
