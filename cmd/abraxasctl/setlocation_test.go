package main

import "testing"

func TestRunSetLocationRejectsMissingComma(t *testing.T) {
	if err := runSetLocation("41.88"); err == nil {
		t.Error("expected error for a location string with no comma")
	}
}

func TestRunSetLocationRejectsNonNumeric(t *testing.T) {
	if err := runSetLocation("north,west"); err == nil {
		t.Error("expected error for non-numeric coordinates")
	}
}

func TestRunSetLocationRejectsExtraFields(t *testing.T) {
	if err := runSetLocation("41.88,-87.63,0"); err == nil {
		t.Error("expected error for more than two comma-separated fields")
	}
}

func TestRunSetLocationAcceptsValidCoordinates(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	if err := runSetLocation("41.88,-87.63"); err != nil {
		t.Errorf("runSetLocation returned unexpected error: %v", err)
	}
}
