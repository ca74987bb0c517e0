package reactor

import (
	"testing"

	"github.com/wllclngn/ABRAXAS/internal/config"
)

func TestConfigDirOf(t *testing.T) {
	p := config.Paths{ConfigFile: "/home/user/.config/abraxas/config.ini"}
	if got := configDirOf(p); got != "/home/user/.config/abraxas" {
		t.Errorf("configDirOf = %q, want /home/user/.config/abraxas", got)
	}
}

func TestConfigDirOfNoSlash(t *testing.T) {
	p := config.Paths{ConfigFile: "config.ini"}
	if got := configDirOf(p); got != "." {
		t.Errorf("configDirOf = %q, want .", got)
	}
}

func TestNewStateStartsUnconfigured(t *testing.T) {
	s := New(config.Location{Lat: 40, Lon: -74}, config.Paths{})
	if s.manualMode {
		t.Error("expected manual mode off on a fresh reactor")
	}
	if s.lastTempValid {
		t.Error("expected lastTempValid false on a fresh reactor")
	}
	if s.inotifyFD != -1 || s.signalFD != -1 {
		t.Error("expected descriptors unset before Run")
	}
}
