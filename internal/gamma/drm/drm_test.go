package drm

import "testing"

func TestInitMissingCardFails(t *testing.T) {
	// Card 99 will not exist on any real or CI machine; Init should
	// fail cleanly rather than panic.
	if _, err := Init(99); err == nil {
		t.Error("expected error opening a nonexistent card device")
	}
}

func TestUsableHeadsCountsGammaAboveOne(t *testing.T) {
	s := &State{crtcs: []crtc{
		{id: 1, gammaSize: 0},
		{id: 2, gammaSize: 1},
		{id: 3, gammaSize: 256},
	}}
	if got := s.UsableHeads(); got != 1 {
		t.Errorf("UsableHeads() = %d, want 1", got)
	}
}
