package wlr

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/sys/unix"
)

// sealedRampFD creates an anonymous, sealable memfd sized to hold three
// contiguous uint16 ramps (red, green, blue) of length size.
func sealedRampFD(size int) (int, error) {
	fd, err := unix.MemfdCreate("abraxas-gamma-ramp", unix.MFD_CLOEXEC|unix.MFD_ALLOW_SEALING)
	if err != nil {
		return -1, fmt.Errorf("wlr: memfd_create: %w", err)
	}
	total := int64(size) * 2 * 3
	if err := unix.Ftruncate(fd, total); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("wlr: ftruncate: %w", err)
	}
	return fd, nil
}

// writeRampToFD maps the memfd and fills it with the three ramps laid
// out contiguously, matching the layout zwlr_gamma_control_v1 expects:
// red[size], green[size], blue[size], each little-endian uint16.
func writeRampToFD(fd int, r, g, b []uint16) error {
	size := len(r)
	total := size * 2 * 3
	data, err := unix.Mmap(fd, 0, total, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return fmt.Errorf("wlr: mmap: %w", err)
	}
	defer unix.Munmap(data)

	putRamp(data[0:size*2], r)
	putRamp(data[size*2:size*4], g)
	putRamp(data[size*4:size*6], b)
	return nil
}

func putRamp(dst []byte, ramp []uint16) {
	for i, v := range ramp {
		binary.LittleEndian.PutUint16(dst[i*2:i*2+2], v)
	}
}

// sealFD applies the immutability seals the protocol requires before
// handing the fd to the compositor.
func sealFD(fd int) error {
	seals := unix.F_SEAL_SHRINK | unix.F_SEAL_GROW | unix.F_SEAL_WRITE
	if _, err := unix.FcntlInt(uintptr(fd), unix.F_ADD_SEALS, seals); err != nil {
		return fmt.Errorf("wlr: fcntl F_ADD_SEALS: %w", err)
	}
	return nil
}
