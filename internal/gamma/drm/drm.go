// Package drm drives display gamma directly through the kernel's DRM
// mode-setting ioctls, with no libdrm dependency. It opens a card
// device node and talks the wire ioctl protocol directly.
package drm

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/wllclngn/ABRAXAS/internal/gamma/colorramp"
	"github.com/wllclngn/ABRAXAS/internal/ioctl"
)

const drmIoctlType = 'd'

const (
	cmdGetResources = 0xA0
	cmdGetCrtc      = 0xA1
	cmdGetGamma     = 0xA4
	cmdSetGamma     = 0xA5
)

type modeCardRes struct {
	FBIDPtr        uint64
	CrtcIDPtr      uint64
	ConnectorIDPtr uint64
	EncoderIDPtr   uint64
	CountFBs       uint32
	CountCrtcs     uint32
	CountConns     uint32
	CountEncoders  uint32
	MinWidth       uint32
	MaxWidth       uint32
	MinHeight      uint32
	MaxHeight      uint32
}

type modeCrtc struct {
	SetConnectorsPtr uint64
	CountConnectors  uint32
	CrtcID           uint32
	FBID             uint32
	X                uint32
	Y                uint32
	GammaSize        uint32
	ModeValid        uint32
	Mode             [68]byte
}

type modeCrtcLut struct {
	CrtcID    uint32
	GammaSize uint32
	Red       uint64
	Green     uint64
	Blue      uint64
}

func doIoctl(fd int, nr uint32, data unsafe.Pointer, size uintptr) error {
	req := ioctl.ReadWrite(drmIoctlType, nr, size)
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), uintptr(req), uintptr(data))
	if errno != 0 {
		return errno
	}
	return nil
}

// crtc holds one head's saved and working gamma state.
type crtc struct {
	id        uint32
	gammaSize uint32
	savedR    []uint16
	savedG    []uint16
	savedB    []uint16
	workR     []uint16
	workG     []uint16
	workB     []uint16
}

func (c *crtc) usable() bool { return c.gammaSize > 1 }

// State is the DRM gamma backend: one open card fd plus its CRTCs.
type State struct {
	file  *os.File
	crtcs []crtc
}

// Init opens /dev/dri/card<n> and enumerates its CRTCs, saving each
// usable head's original gamma ramp.
func Init(card int) (*State, error) {
	path := fmt.Sprintf("/dev/dri/card%d", card)
	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		if os.IsPermission(err) {
			return nil, fmt.Errorf("drm: open %s: permission denied", path)
		}
		return nil, fmt.Errorf("drm: open %s: %w", path, err)
	}

	fd := int(file.Fd())

	var res modeCardRes
	if err := doIoctl(fd, cmdGetResources, unsafe.Pointer(&res), unsafe.Sizeof(res)); err != nil {
		file.Close()
		return nil, fmt.Errorf("drm: get resources: %w", err)
	}
	if res.CountCrtcs == 0 {
		file.Close()
		return nil, fmt.Errorf("drm: no crtcs")
	}

	crtcIDs := make([]uint32, res.CountCrtcs)
	res.CrtcIDPtr = uint64(uintptr(unsafe.Pointer(&crtcIDs[0])))
	if err := doIoctl(fd, cmdGetResources, unsafe.Pointer(&res), unsafe.Sizeof(res)); err != nil {
		file.Close()
		return nil, fmt.Errorf("drm: get crtc ids: %w", err)
	}

	crtcs := make([]crtc, 0, len(crtcIDs))
	for _, id := range crtcIDs {
		info := modeCrtc{CrtcID: id}
		if err := doIoctl(fd, cmdGetCrtc, unsafe.Pointer(&info), unsafe.Sizeof(info)); err != nil {
			crtcs = append(crtcs, crtc{id: id})
			continue
		}
		if info.GammaSize <= 1 {
			crtcs = append(crtcs, crtc{id: id})
			continue
		}

		size := info.GammaSize
		savedR := make([]uint16, size)
		savedG := make([]uint16, size)
		savedB := make([]uint16, size)
		lut := modeCrtcLut{
			CrtcID:    id,
			GammaSize: size,
			Red:       uint64(uintptr(unsafe.Pointer(&savedR[0]))),
			Green:     uint64(uintptr(unsafe.Pointer(&savedG[0]))),
			Blue:      uint64(uintptr(unsafe.Pointer(&savedB[0]))),
		}
		if err := doIoctl(fd, cmdGetGamma, unsafe.Pointer(&lut), unsafe.Sizeof(lut)); err != nil {
			crtcs = append(crtcs, crtc{id: id})
			continue
		}

		crtcs = append(crtcs, crtc{
			id:        id,
			gammaSize: size,
			savedR:    savedR,
			savedG:    savedG,
			savedB:    savedB,
			workR:     make([]uint16, size),
			workG:     make([]uint16, size),
			workB:     make([]uint16, size),
		})
	}

	return &State{file: file, crtcs: crtcs}, nil
}

// UsableHeads returns the number of CRTCs with a gamma ramp size > 1.
func (s *State) UsableHeads() int {
	n := 0
	for i := range s.crtcs {
		if s.crtcs[i].usable() {
			n++
		}
	}
	return n
}

func (s *State) setCrtc(c *crtc, kelvin int, brightness float64) error {
	size := int(c.gammaSize)
	if err := colorramp.Fill(kelvin, size, c.workR, c.workG, c.workB, brightness); err != nil {
		return err
	}
	lut := modeCrtcLut{
		CrtcID:    c.id,
		GammaSize: c.gammaSize,
		Red:       uint64(uintptr(unsafe.Pointer(&c.workR[0]))),
		Green:     uint64(uintptr(unsafe.Pointer(&c.workG[0]))),
		Blue:      uint64(uintptr(unsafe.Pointer(&c.workB[0]))),
	}
	return doIoctl(int(s.file.Fd()), cmdSetGamma, unsafe.Pointer(&lut), unsafe.Sizeof(lut))
}

// SetTemperature installs a gamma ramp for kelvin on every usable CRTC.
func (s *State) SetTemperature(kelvin int, brightness float64) error {
	var lastErr error
	successCount := 0
	for i := range s.crtcs {
		c := &s.crtcs[i]
		if !c.usable() {
			continue
		}
		if err := s.setCrtc(c, kelvin, brightness); err != nil {
			lastErr = err
			continue
		}
		successCount++
	}
	if successCount > 0 {
		return nil
	}
	if lastErr != nil {
		return lastErr
	}
	return fmt.Errorf("drm: no usable crtc")
}

func (s *State) restoreCrtc(c *crtc) error {
	lut := modeCrtcLut{
		CrtcID:    c.id,
		GammaSize: c.gammaSize,
		Red:       uint64(uintptr(unsafe.Pointer(&c.savedR[0]))),
		Green:     uint64(uintptr(unsafe.Pointer(&c.savedG[0]))),
		Blue:      uint64(uintptr(unsafe.Pointer(&c.savedB[0]))),
	}
	return doIoctl(int(s.file.Fd()), cmdSetGamma, unsafe.Pointer(&lut), unsafe.Sizeof(lut))
}

// Restore reinstalls each CRTC's original gamma ramp captured at init.
func (s *State) Restore() error {
	var lastErr error
	for i := range s.crtcs {
		c := &s.crtcs[i]
		if !c.usable() || len(c.savedR) == 0 {
			continue
		}
		if err := s.restoreCrtc(c); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// Close releases the underlying card file descriptor.
func (s *State) Close() error {
	return s.file.Close()
}
