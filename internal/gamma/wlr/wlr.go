// Package wlr drives display gamma through the wlr-gamma-control-unstable-v1
// Wayland protocol, covering wlroots-based compositors (Sway, Hyprland,
// river, labwc, wayfire, niri). Ramps are transferred via a sealed memfd;
// the protocol restores original gamma automatically when the control
// object is destroyed, so no ramp needs to be saved at init.
package wlr

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/wllclngn/ABRAXAS/internal/gamma/colorramp"
)

const (
	displayObjectID  = 1
	displayGetReg    = 1
	registryGlobal   = 0
	registryBind     = 0
	outputBindVer    = 1
	managerBindVer   = 1
	managerGetGamma  = 0
	gammaEventSize   = 0
	gammaEventFailed = 1
	gammaReqSetGamma = 0
	gammaReqDestroy  = 1
)

type output struct {
	id         uint32
	gammaCtrl  uint32
	gammaSize  uint32
	failed     bool
	acquired   bool
}

// State holds one Wayland connection and its bound gamma controls.
type State struct {
	c         *conn
	managerID uint32
	outputs   []output
}

// Init connects to the Wayland compositor named by WAYLAND_DISPLAY,
// binds the gamma-control manager and every output, and acquires a
// gamma control per output.
func Init() (*State, error) {
	c, err := dial()
	if err != nil {
		return nil, fmt.Errorf("wlr: connect: %w", err)
	}

	registryID := c.allocID()
	body := putUint32(nil, registryID)
	if err := c.sendMessage(displayObjectID, displayGetReg, body); err != nil {
		c.close()
		return nil, fmt.Errorf("wlr: get_registry: %w", err)
	}

	s := &State{c: c}

	if err := s.roundtripRegistry(registryID); err != nil {
		c.close()
		return nil, err
	}
	if s.managerID == 0 {
		c.close()
		return nil, fmt.Errorf("wlr: compositor lacks zwlr_gamma_control_manager_v1")
	}
	if len(s.outputs) == 0 {
		c.close()
		return nil, fmt.Errorf("wlr: no outputs")
	}

	for i := range s.outputs {
		ctrlID := c.allocID()
		body := append(putUint32(nil, ctrlID), putUint32(nil, s.outputs[i].id)...)
		if err := c.sendMessage(s.managerID, managerGetGamma, body); err != nil {
			c.close()
			return nil, fmt.Errorf("wlr: get_gamma_control: %w", err)
		}
		s.outputs[i].gammaCtrl = ctrlID
		s.outputs[i].acquired = true
	}

	if err := s.drainGammaEvents(); err != nil {
		c.close()
		return nil, err
	}

	return s, nil
}

// roundtripRegistry performs one socket read of registry global events
// and binds zwlr_gamma_control_manager_v1 and every wl_output global
// found in it.
func (s *State) roundtripRegistry(registryID uint32) error {
	events, err := s.c.readEvents()
	if err != nil {
		return fmt.Errorf("wlr: registry roundtrip: %w", err)
	}
	for _, ev := range events {
		if ev.object != registryID || ev.opcode != registryGlobal {
			continue
		}
		name, off := readUint32(ev.args, 0)
		iface, off := readString(ev.args, off)
		_, _ = readUint32(ev.args, off) // version, unused

		switch iface {
		case "zwlr_gamma_control_manager_v1":
			id := s.c.allocID()
			body := putUint32(nil, name)
			body = putString(body, iface)
			body = putUint32(body, managerBindVer)
			body = putUint32(body, id)
			if err := s.c.sendMessage(registryID, registryBind, body); err != nil {
				return fmt.Errorf("wlr: bind manager: %w", err)
			}
			s.managerID = id
		case "wl_output":
			id := s.c.allocID()
			body := putUint32(nil, name)
			body = putString(body, iface)
			body = putUint32(body, outputBindVer)
			body = putUint32(body, id)
			if err := s.c.sendMessage(registryID, registryBind, body); err != nil {
				return fmt.Errorf("wlr: bind output: %w", err)
			}
			s.outputs = append(s.outputs, output{id: id})
		}
	}
	return nil
}

// drainGammaEvents reads gamma_size/failed events for every acquired
// gamma control object.
func (s *State) drainGammaEvents() error {
	events, err := s.c.readEvents()
	if err != nil {
		return fmt.Errorf("wlr: gamma event read: %w", err)
	}
	for _, ev := range events {
		idx := s.outputIndexByCtrl(ev.object)
		if idx < 0 {
			continue
		}
		switch ev.opcode {
		case gammaEventSize:
			size, _ := readUint32(ev.args, 0)
			s.outputs[idx].gammaSize = size
		case gammaEventFailed:
			s.outputs[idx].failed = true
		}
	}
	return nil
}

func (s *State) outputIndexByCtrl(ctrlID uint32) int {
	for i := range s.outputs {
		if s.outputs[i].gammaCtrl == ctrlID {
			return i
		}
	}
	return -1
}

// UsableHeads returns the number of outputs with a live gamma control
// and a nonzero gamma ramp size.
func (s *State) UsableHeads() int {
	n := 0
	for _, o := range s.outputs {
		if !o.failed && o.acquired && o.gammaSize > 0 {
			n++
		}
	}
	return n
}

func (s *State) setOutput(o *output, kelvin int, brightness float64) error {
	if o.failed || !o.acquired || o.gammaSize == 0 {
		return fmt.Errorf("wlr: output unavailable")
	}
	size := int(o.gammaSize)

	fd, err := sealedRampFD(size)
	if err != nil {
		return err
	}
	defer unix.Close(fd)

	r := make([]uint16, size)
	g := make([]uint16, size)
	b := make([]uint16, size)
	if err := colorramp.Fill(kelvin, size, r, g, b, brightness); err != nil {
		return err
	}
	if err := writeRampToFD(fd, r, g, b); err != nil {
		return err
	}
	if err := sealFD(fd); err != nil {
		return err
	}

	return s.c.sendMessageFD(o.gammaCtrl, gammaReqSetGamma, fd)
}

// SetTemperature installs the gamma ramp for kelvin on every usable
// output.
func (s *State) SetTemperature(kelvin int, brightness float64) error {
	var lastErr error
	successCount := 0
	for i := range s.outputs {
		o := &s.outputs[i]
		if o.failed || !o.acquired || o.gammaSize == 0 {
			continue
		}
		if err := s.setOutput(o, kelvin, brightness); err != nil {
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
	return fmt.Errorf("wlr: no usable output")
}

// Restore destroys and re-acquires every gamma control; the protocol
// restores the compositor's original gamma when a control is destroyed.
func (s *State) Restore() error {
	for i := range s.outputs {
		o := &s.outputs[i]
		if o.acquired {
			s.c.sendMessage(o.gammaCtrl, gammaReqDestroy, nil)
			o.acquired = false
			o.failed = false
			o.gammaSize = 0
		}
	}

	for i := range s.outputs {
		ctrlID := s.c.allocID()
		body := append(putUint32(nil, ctrlID), putUint32(nil, s.outputs[i].id)...)
		if err := s.c.sendMessage(s.managerID, managerGetGamma, body); err != nil {
			return fmt.Errorf("wlr: re-acquire gamma control: %w", err)
		}
		s.outputs[i].gammaCtrl = ctrlID
		s.outputs[i].acquired = true
	}

	return s.drainGammaEvents()
}

// Close destroys all gamma controls, which restores original gamma,
// and closes the Wayland connection.
func (s *State) Close() {
	for i := range s.outputs {
		if s.outputs[i].acquired {
			s.c.sendMessage(s.outputs[i].gammaCtrl, gammaReqDestroy, nil)
		}
	}
	s.c.close()
}
