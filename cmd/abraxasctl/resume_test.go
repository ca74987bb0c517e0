package main

import (
	"testing"

	"github.com/wllclngn/ABRAXAS/internal/config"
)

func TestRunResumeWritesInactiveOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	paths, err := config.InitPaths()
	if err != nil {
		t.Fatalf("InitPaths: %v", err)
	}
	if err := config.SaveOverride(paths, config.OverrideState{Active: true, TargetTemp: 3000}); err != nil {
		t.Fatalf("seed SaveOverride: %v", err)
	}

	if err := runResume(); err != nil {
		t.Fatalf("runResume: %v", err)
	}

	ovr, ok := config.LoadOverride(paths)
	if !ok {
		t.Fatal("expected override file to still exist after resume")
	}
	if ovr.Active {
		t.Error("expected override to be inactive after resume")
	}
}
