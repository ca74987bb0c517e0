package reactor

import (
	"path/filepath"

	"golang.org/x/sys/unix"

	"github.com/wllclngn/ABRAXAS/internal/config"
)

const inotifyBufSize = 4096

// setupInotify watches the configuration directory for close-after-write
// events. Both config.ini and override.json live in the same directory,
// so one watch covers both; the event's trailing filename tells them
// apart.
func setupInotify(paths config.Paths) (int, error) {
	fd, err := unix.InotifyInit1(unix.IN_NONBLOCK | unix.IN_CLOEXEC)
	if err != nil {
		return -1, err
	}
	dir := filepath.Dir(paths.OverrideFile)
	if _, err := unix.InotifyAddWatch(fd, dir, unix.IN_CLOSE_WRITE); err != nil {
		unix.Close(fd)
		return -1, err
	}
	return fd, nil
}

// parseInotifyEvents walks a packed inotify_event buffer (wd int32, mask
// uint32, cookie uint32, len uint32, name[len]) and sets the per-file
// flags for any name matching the override or config filename. Truncated
// trailing records and non-UTF8 names are ignored.
func parseInotifyEvents(buf []byte, paths config.Paths, flags *eventFlags) {
	const headerSize = 16
	overrideName := filepath.Base(paths.OverrideFile)
	configName := filepath.Base(paths.ConfigFile)

	offset := 0
	for offset+headerSize <= len(buf) {
		nameLen := int(le32(buf[offset+12 : offset+16]))
		eventSize := headerSize + nameLen
		if offset+eventSize > len(buf) {
			break
		}

		if nameLen > 0 {
			nameBytes := buf[offset+headerSize : offset+eventSize]
			end := 0
			for end < len(nameBytes) && nameBytes[end] != 0 {
				end++
			}
			name := string(nameBytes[:end])
			if name == overrideName {
				flags.override = true
			}
			if name == configName {
				flags.config = true
			}
		}

		offset += eventSize
	}
}

func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
