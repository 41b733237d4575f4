package input

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"

	"mousemeter/internal/model"
)

// evdev event framing (input.h).
const (
	evSyn = 0x00
	evRel = 0x02

	relX = 0x00
	relY = 0x01

	synReport = 0x00

	// EVIOCGNAME(256)
	eviocgname = 0x81004506

	eventSize = 24 // struct input_event on 64-bit
)

// Device reads motion samples from a single evdev character device. One
// sample is emitted per SYN_REPORT frame that carried relative motion.
// Next blocks until a sample arrives; Close unblocks it.
type Device struct {
	file   *os.File
	name   string
	path   string
	closed atomic.Bool

	buf     []byte
	bufLen  int
	queue   []model.RawSample
	dx, dy  int32
	inFrame bool
}

// Open opens the evdev device at path for reading. Initialization
// failures (missing device, permissions) are reported here, before any
// samples are produced.
func Open(path string) (*Device, error) {
	// Non-blocking so reads go through the runtime poller and Close can
	// interrupt a pending Next.
	f, err := os.OpenFile(path, os.O_RDONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open input device: %w", err)
	}
	d := &Device{
		file: f,
		path: path,
		buf:  make([]byte, eventSize*64),
	}
	d.name = deviceName(f)
	return d, nil
}

// Name returns the kernel-reported device name, or the path if the name
// could not be read.
func (d *Device) Name() string {
	if d.name == "" {
		return d.path
	}
	return d.name
}

// Path returns the device node path.
func (d *Device) Path() string {
	return d.path
}

// Next blocks until the device reports a motion frame and returns it as a
// RawSample. After Close it returns ErrDeviceClosed; any other error is a
// fatal stream error and the device is unusable afterwards.
func (d *Device) Next() (model.RawSample, error) {
	for {
		if len(d.queue) > 0 {
			sample := d.queue[0]
			d.queue = d.queue[1:]
			return sample, nil
		}
		if d.closed.Load() {
			return model.RawSample{}, ErrDeviceClosed
		}

		n, err := d.file.Read(d.buf[d.bufLen:])
		if err != nil {
			if d.closed.Load() || errors.Is(err, os.ErrClosed) {
				return model.RawSample{}, ErrDeviceClosed
			}
			return model.RawSample{}, fmt.Errorf("input stream failed: %w", err)
		}
		d.bufLen += n
		d.parseBuffer()
	}
}

// Close releases the device and unblocks a pending Next.
func (d *Device) Close() error {
	if d.closed.Swap(true) {
		return nil
	}
	return d.file.Close()
}

// parseBuffer consumes whole events from the read buffer, folding
// relative motion into the current frame and emitting a sample on each
// SYN_REPORT. Partial trailing events are kept for the next read.
func (d *Device) parseBuffer() {
	consumed := 0
	for d.bufLen-consumed >= eventSize {
		d.handleEvent(parseEvent(d.buf[consumed : consumed+eventSize]))
		consumed += eventSize
	}
	if consumed > 0 {
		copy(d.buf, d.buf[consumed:d.bufLen])
		d.bufLen -= consumed
	}
}

func (d *Device) handleEvent(ev event) {
	switch ev.kind {
	case evRel:
		switch ev.code {
		case relX:
			d.dx += ev.value
			d.inFrame = true
		case relY:
			d.dy += ev.value
			d.inFrame = true
		}
	case evSyn:
		if ev.code == synReport && d.inFrame {
			d.queue = append(d.queue, model.RawSample{Time: ev.time, DX: d.dx, DY: d.dy})
		}
		d.dx, d.dy = 0, 0
		d.inFrame = false
	}
}

type event struct {
	time  time.Time
	kind  uint16
	code  uint16
	value int32
}

// parseEvent decodes one struct input_event (64-bit layout). The kernel
// stamps events with the realtime clock; regressions from clock steps are
// handled downstream as discarded samples.
func parseEvent(b []byte) event {
	sec := int64(binary.LittleEndian.Uint64(b[0:8]))
	usec := int64(binary.LittleEndian.Uint64(b[8:16]))
	return event{
		time:  time.Unix(sec, usec*1000),
		kind:  binary.LittleEndian.Uint16(b[16:18]),
		code:  binary.LittleEndian.Uint16(b[18:20]),
		value: int32(binary.LittleEndian.Uint32(b[20:24])),
	}
}

func deviceName(f *os.File) string {
	name := make([]byte, 256)
	_, _, errno := unix.Syscall(
		unix.SYS_IOCTL,
		f.Fd(),
		uintptr(eviocgname),
		uintptr(unsafe.Pointer(&name[0])),
	)
	if errno != 0 {
		return ""
	}
	for i, b := range name {
		if b == 0 {
			return string(name[:i])
		}
	}
	return string(name)
}
