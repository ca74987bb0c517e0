package reactor

import (
	"encoding/binary"
	"testing"

	"github.com/wllclngn/ABRAXAS/internal/config"
)

func packInotifyEvent(name string) []byte {
	nameBytes := []byte(name)
	padded := make([]byte, (len(nameBytes)+4)&^3) // pad to a 4-byte boundary, at least one NUL
	copy(padded, nameBytes)

	buf := make([]byte, 16+len(padded))
	binary.LittleEndian.PutUint32(buf[0:4], 1)             // wd
	binary.LittleEndian.PutUint32(buf[4:8], 0x00000008)    // IN_CLOSE_WRITE
	binary.LittleEndian.PutUint32(buf[8:12], 0)            // cookie
	binary.LittleEndian.PutUint32(buf[12:16], uint32(len(padded)))
	copy(buf[16:], padded)
	return buf
}

func testReactorPaths() config.Paths {
	return config.Paths{
		ConfigFile:   "/tmp/abraxas-test/config.ini",
		OverrideFile: "/tmp/abraxas-test/override.json",
	}
}

func TestParseInotifyEventsMatchesOverrideName(t *testing.T) {
	buf := packInotifyEvent("override.json")
	var flags eventFlags
	parseInotifyEvents(buf, testReactorPaths(), &flags)
	if !flags.override {
		t.Error("expected override flag set for override.json event")
	}
	if flags.config {
		t.Error("did not expect config flag set")
	}
}

func TestParseInotifyEventsMatchesConfigName(t *testing.T) {
	buf := packInotifyEvent("config.ini")
	var flags eventFlags
	parseInotifyEvents(buf, testReactorPaths(), &flags)
	if !flags.config {
		t.Error("expected config flag set for config.ini event")
	}
}

func TestParseInotifyEventsIgnoresUnknownName(t *testing.T) {
	buf := packInotifyEvent("weather_cache.json")
	var flags eventFlags
	parseInotifyEvents(buf, testReactorPaths(), &flags)
	if flags.override || flags.config {
		t.Error("expected no flags set for an unrelated filename")
	}
}

func TestParseInotifyEventsHandlesMultipleRecords(t *testing.T) {
	buf := append(packInotifyEvent("config.ini"), packInotifyEvent("override.json")...)
	var flags eventFlags
	parseInotifyEvents(buf, testReactorPaths(), &flags)
	if !flags.config || !flags.override {
		t.Error("expected both flags set when both files appear in one buffer")
	}
}

func TestParseInotifyEventsIgnoresTruncatedTrailingRecord(t *testing.T) {
	buf := packInotifyEvent("override.json")
	truncated := buf[:len(buf)-2]
	var flags eventFlags
	// Should not panic on a truncated trailing record.
	parseInotifyEvents(truncated, testReactorPaths(), &flags)
}
