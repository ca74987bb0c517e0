// Package gamma selects and drives a display gamma backend. It is a
// closed tagged union over four concrete backends rather than an
// interface value, so the hot path (one set_temperature call per tick)
// never goes through an interface dispatch or heap-allocates a boxed
// implementation.
package gamma

import (
	"os"

	"github.com/wllclngn/ABRAXAS/internal/gamma/dbus"
	"github.com/wllclngn/ABRAXAS/internal/gamma/drm"
	"github.com/wllclngn/ABRAXAS/internal/gamma/wlr"
	"github.com/wllclngn/ABRAXAS/internal/gamma/x11"
	"github.com/wllclngn/ABRAXAS/internal/logging"
)

// kind discriminates the backend union.
type kind int

const (
	kindWlr kind = iota
	kindDBus
	kindDRM
	kindX11
)

// State is the unified gamma handle the reactor holds. Exactly one of
// the backend fields is non-nil, matching kind.
type State struct {
	k    kind
	wlr  *wlr.State
	dbus *dbus.State
	drm  *drm.State
	x11  *x11.State
}

// Name returns the short tag of the active backend.
func (s *State) Name() string {
	switch s.k {
	case kindWlr:
		return "wlr"
	case kindDBus:
		return "dbus"
	case kindDRM:
		return "drm"
	case kindX11:
		return "x11"
	default:
		return "unknown"
	}
}

// SetTemperature installs the gamma ramp for kelvin at the given
// brightness on every usable head of the active backend.
func (s *State) SetTemperature(kelvin int, brightness float64) error {
	switch s.k {
	case kindWlr:
		return s.wlr.SetTemperature(kelvin, brightness)
	case kindDBus:
		return s.dbus.SetTemperature(kelvin, brightness)
	case kindDRM:
		return s.drm.SetTemperature(kelvin, brightness)
	case kindX11:
		return s.x11.SetTemperature(kelvin, brightness)
	default:
		panic("gamma: uninitialized state")
	}
}

// Restore returns the display to its original gamma: drm and x11
// reinstall the ramps captured at backend init, wlr destroys and
// re-acquires its gamma controls so the compositor restores them, and
// dbus installs an identity ramp.
func (s *State) Restore() error {
	switch s.k {
	case kindWlr:
		return s.wlr.Restore()
	case kindDBus:
		return s.dbus.Restore()
	case kindDRM:
		return s.drm.Restore()
	case kindX11:
		return s.x11.Restore()
	default:
		panic("gamma: uninitialized state")
	}
}

// Close releases the active backend's underlying connection/descriptors.
func (s *State) Close() error {
	switch s.k {
	case kindWlr:
		s.wlr.Close()
		return nil
	case kindDBus:
		return s.dbus.Close()
	case kindDRM:
		return s.drm.Close()
	case kindX11:
		return s.x11.Close()
	default:
		return nil
	}
}

// Init selects a backend in fixed order — compositor-protocol (wlr),
// compositor-DBus (GNOME/Mutter), direct kernel ioctl (DRM), legacy
// display-server extension (X11 RandR) — trying each in turn and
// keeping the first that exposes at least one usable head.
func Init(card int) (*State, error) {
	if sessionVar := os.Getenv("WAYLAND_DISPLAY"); sessionVar != "" {
		if st, err := wlr.Init(); err == nil {
			if st.UsableHeads() > 0 {
				return &State{k: kindWlr, wlr: st}, nil
			}
			logging.Default().Warn("gamma backend skipped", "backend", "wlr", "reason", "0 usable heads")
		} else {
			logging.Default().Warn("gamma backend failed", "backend", "wlr", "error", err)
		}
	} else {
		logging.Default().Debug("gamma backend skipped", "backend", "wlr", "reason", "WAYLAND_DISPLAY unset")
	}

	if st, err := dbus.Init(); err == nil {
		if st.UsableHeads() > 0 {
			return &State{k: kindDBus, dbus: st}, nil
		}
		logging.Default().Warn("gamma backend skipped", "backend", "dbus", "reason", "0 usable heads")
	} else {
		logging.Default().Warn("gamma backend failed", "backend", "dbus", "error", err)
	}

	if st, err := drm.Init(card); err == nil {
		if st.UsableHeads() > 0 {
			return &State{k: kindDRM, drm: st}, nil
		}
		logging.Default().Warn("gamma backend skipped", "backend", "drm", "reason", "0 usable heads")
	} else {
		logging.Default().Warn("gamma backend failed", "backend", "drm", "error", err)
	}

	if st, err := x11.Init(); err == nil {
		if st.UsableHeads() > 0 {
			return &State{k: kindX11, x11: st}, nil
		}
		logging.Default().Warn("gamma backend skipped", "backend", "x11", "reason", "0 usable heads")
	} else {
		logging.Default().Warn("gamma backend failed", "backend", "x11", "error", err)
	}

	return nil, errNoUsableBackend
}
