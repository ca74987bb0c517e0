// Package x11 drives display gamma through the X11 RandR extension,
// the legacy fallback for X sessions and XWayland-only setups where
// no wlr-gamma-control or Mutter DisplayConfig interface exists.
package x11

import (
	"fmt"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/randr"
	"github.com/jezek/xgb/xproto"

	"github.com/wllclngn/ABRAXAS/internal/gamma/colorramp"
)

type crtc struct {
	id        randr.Crtc
	gammaSize int
	savedR    []uint16
	savedG    []uint16
	savedB    []uint16
	workR     []uint16
	workG     []uint16
	workB     []uint16
}

func (c *crtc) usable() bool { return c.gammaSize > 0 }

// State is the X11 RandR gamma backend: one connection plus the
// screen's CRTCs and their saved ramps.
type State struct {
	conn  *xgb.Conn
	crtcs []crtc
}

// Init connects to the X server named by $DISPLAY, enumerates the
// default screen's CRTCs via RandR, and saves each usable CRTC's
// current gamma ramp for later restore.
func Init() (*State, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("x11: connect: %w", err)
	}

	if err := randr.Init(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("x11: randr extension unavailable: %w", err)
	}

	setup := xproto.Setup(conn)
	screen := setup.DefaultScreen(conn)

	res, err := randr.GetScreenResourcesCurrent(conn, screen.Root).Reply()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("x11: get screen resources: %w", err)
	}
	if len(res.Crtcs) == 0 {
		conn.Close()
		return nil, fmt.Errorf("x11: no crtcs")
	}

	crtcs := make([]crtc, 0, len(res.Crtcs))
	for _, id := range res.Crtcs {
		sizeReply, err := randr.GetCrtcGammaSize(conn, id).Reply()
		if err != nil || sizeReply.Size == 0 {
			crtcs = append(crtcs, crtc{id: id})
			continue
		}
		size := int(sizeReply.Size)

		gammaReply, err := randr.GetCrtcGamma(conn, id).Reply()
		if err != nil {
			crtcs = append(crtcs, crtc{id: id})
			continue
		}

		crtcs = append(crtcs, crtc{
			id:        id,
			gammaSize: size,
			savedR:    append([]uint16(nil), gammaReply.Red...),
			savedG:    append([]uint16(nil), gammaReply.Green...),
			savedB:    append([]uint16(nil), gammaReply.Blue...),
			workR:     make([]uint16, size),
			workG:     make([]uint16, size),
			workB:     make([]uint16, size),
		})
	}

	return &State{conn: conn, crtcs: crtcs}, nil
}

// UsableHeads returns the number of CRTCs with a nonzero gamma ramp size.
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
	if err := colorramp.Fill(kelvin, c.gammaSize, c.workR, c.workG, c.workB, brightness); err != nil {
		return err
	}
	return randr.SetCrtcGammaChecked(s.conn, c.id, uint16(c.gammaSize), c.workR, c.workG, c.workB).Check()
}

// SetTemperature installs the gamma ramp for kelvin on every usable CRTC.
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
	return fmt.Errorf("x11: no usable crtc")
}

// Restore reinstalls each CRTC's gamma ramp as captured at init.
func (s *State) Restore() error {
	var lastErr error
	for i := range s.crtcs {
		c := &s.crtcs[i]
		if !c.usable() || len(c.savedR) == 0 {
			continue
		}
		size := uint16(c.gammaSize)
		if err := randr.SetCrtcGammaChecked(s.conn, c.id, size, c.savedR, c.savedG, c.savedB).Check(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// Close releases the X11 connection.
func (s *State) Close() error {
	s.conn.Close()
	return nil
}
