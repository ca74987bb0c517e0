package dbus

import (
	"os"
	"testing"
)

// skipIfNoSessionBus skips unless a real GNOME session bus with
// Mutter's DisplayConfig interface is reachable.
func skipIfNoSessionBus(t *testing.T) *State {
	t.Helper()
	if os.Getenv("DBUS_SESSION_BUS_ADDRESS") == "" {
		t.Skip("no session bus, skipping GNOME gamma integration test")
	}
	s, err := Init()
	if err != nil {
		t.Skipf("no usable Mutter DisplayConfig session reachable: %v", err)
	}
	return s
}

func TestInitAndUsableHeads(t *testing.T) {
	s := skipIfNoSessionBus(t)
	defer s.Close()

	if s.UsableHeads() < 1 {
		t.Fatal("expected at least one crtc")
	}
}

func TestSetTemperatureAndRestore(t *testing.T) {
	s := skipIfNoSessionBus(t)
	defer s.Close()

	if err := s.SetTemperature(4500, 1.0); err != nil {
		t.Fatalf("SetTemperature: %v", err)
	}
	if err := s.Restore(); err != nil {
		t.Fatalf("Restore: %v", err)
	}
}
