package x11

import (
	"os"
	"testing"
)

// skipIfNoX11 skips unless a real X server with the RandR extension
// is reachable.
func skipIfNoX11(t *testing.T) *State {
	t.Helper()
	if os.Getenv("DISPLAY") == "" {
		t.Skip("DISPLAY not set, skipping X11 gamma integration test")
	}
	s, err := Init()
	if err != nil {
		t.Skipf("no usable X11/RandR display reachable: %v", err)
	}
	return s
}

func TestInitAndUsableHeads(t *testing.T) {
	s := skipIfNoX11(t)
	defer s.Close()

	if s.UsableHeads() < 1 {
		t.Fatal("expected at least one usable crtc")
	}
}

func TestSetTemperatureAndRestore(t *testing.T) {
	s := skipIfNoX11(t)
	defer s.Close()

	if err := s.SetTemperature(4500, 1.0); err != nil {
		t.Fatalf("SetTemperature: %v", err)
	}
	if err := s.Restore(); err != nil {
		t.Fatalf("Restore: %v", err)
	}
}
