// Package dbus drives display gamma through GNOME/Mutter's
// org.gnome.Mutter.DisplayConfig session-bus interface, covering GNOME
// Shell sessions where neither wlr-gamma-control nor a raw DRM device
// open is available to an unprivileged process.
package dbus

import (
	"fmt"

	godbus "github.com/godbus/dbus/v5"

	"github.com/wllclngn/ABRAXAS/internal/gamma/colorramp"
)

const (
	busName    = "org.gnome.Mutter.DisplayConfig"
	objectPath = "/org/gnome/Mutter/DisplayConfig"

	methodGetResources  = busName + ".GetResources"
	methodSetCrtcGamma  = busName + ".SetCrtcGamma"

	gammaSize = 256
)

// crtcInfo mirrors the (uxiiiiiuaua{sv}) struct entry returned by
// GetResources for each CRTC; only ID is needed here.
type crtcInfo struct {
	ID         uint32
	WinsysID   int64
	X, Y       int32
	Width      int32
	Height     int32
	Mode       int32
	Rotation   uint32
	Possible   []uint32
	Properties map[string]godbus.Variant
}

type crtc struct {
	id    uint32
	workR []uint16
	workG []uint16
	workB []uint16
}

// State holds one Mutter DisplayConfig session-bus connection and the
// serial/crtc set captured at init.
type State struct {
	conn   *godbus.Conn
	obj    godbus.BusObject
	serial uint32
	crtcs  []crtc
}

// Init connects to the user's session bus and enumerates CRTCs known
// to Mutter's DisplayConfig interface. Mutter always reports a fixed
// 256-entry gamma ramp regardless of actual hardware LUT size.
func Init() (*State, error) {
	conn, err := godbus.SessionBusPrivate()
	if err != nil {
		return nil, fmt.Errorf("dbus: session bus connect: %w", err)
	}
	if err := conn.Auth(nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("dbus: auth: %w", err)
	}
	if err := conn.Hello(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("dbus: hello: %w", err)
	}

	obj := conn.Object(busName, godbus.ObjectPath(objectPath))

	var serial uint32
	var crtcInfos []crtcInfo
	var outputs []interface{}
	var modes []interface{}
	var maxW, maxH int32

	call := obj.Call(methodGetResources, 0)
	if call.Err != nil {
		conn.Close()
		return nil, fmt.Errorf("dbus: GetResources: %w", call.Err)
	}
	if err := call.Store(&serial, &crtcInfos, &outputs, &modes, &maxW, &maxH); err != nil {
		conn.Close()
		return nil, fmt.Errorf("dbus: decode GetResources: %w", err)
	}
	if len(crtcInfos) == 0 {
		conn.Close()
		return nil, fmt.Errorf("dbus: no crtcs reported")
	}

	crtcs := make([]crtc, len(crtcInfos))
	for i, info := range crtcInfos {
		crtcs[i] = crtc{
			id:    info.ID,
			workR: make([]uint16, gammaSize),
			workG: make([]uint16, gammaSize),
			workB: make([]uint16, gammaSize),
		}
	}

	return &State{conn: conn, obj: obj, serial: serial, crtcs: crtcs}, nil
}

// UsableHeads returns the number of CRTCs Mutter reported.
func (s *State) UsableHeads() int {
	return len(s.crtcs)
}

func (s *State) setCrtcGamma(c *crtc) error {
	call := s.obj.Call(methodSetCrtcGamma, 0, s.serial, c.id, c.workR, c.workG, c.workB)
	return call.Err
}

// SetTemperature installs the gamma ramp for kelvin on every CRTC.
func (s *State) SetTemperature(kelvin int, brightness float64) error {
	var lastErr error
	successCount := 0
	for i := range s.crtcs {
		c := &s.crtcs[i]
		if err := colorramp.Fill(kelvin, gammaSize, c.workR, c.workG, c.workB, brightness); err != nil {
			lastErr = err
			continue
		}
		if err := s.setCrtcGamma(c); err != nil {
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
	return fmt.Errorf("dbus: no usable crtc")
}

// Restore reinstalls an identity gamma ramp on every CRTC; Mutter does
// not expose a way to read back the CRTC's original ramp, so recovery
// here is "linear", matching GNOME's own reset-to-default behavior.
func (s *State) Restore() error {
	var lastErr error
	for i := range s.crtcs {
		c := &s.crtcs[i]
		colorramp.Identity(gammaSize, c.workR, c.workG, c.workB)
		if err := s.setCrtcGamma(c); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// Close releases the session-bus connection.
func (s *State) Close() error {
	return s.conn.Close()
}
