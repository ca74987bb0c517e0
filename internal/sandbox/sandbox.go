// Package sandbox's entry point, called once during reactor startup
// after the inotify, signalfd and gamma backend descriptors have been
// opened. The ring is set up afterwards; io_uring_setup is on the
// syscall whitelist.
package sandbox

import (
	"syscall"

	"github.com/wllclngn/ABRAXAS/internal/logging"
)

const (
	prSetTimerslackNS = 29
	prSetDumpable     = 4
)

// Harden sets the process-wide knobs that cost nothing and narrow the
// attack surface before any path/syscall restriction is installed:
// minimum timer slack (so the 60s tick isn't coalesced into a wider
// window by the scheduler) and non-dumpable (no ptrace-attach, no core
// dump carrying gamma-ramp or weather-fetch memory).
func Harden() {
	if _, _, errno := syscall.Syscall(syscall.SYS_PRCTL, prSetTimerslackNS, 1, 0); errno != 0 {
		logging.Default().Warn("prctl(PR_SET_TIMERSLACK) failed", "errno", errno)
	}
	if _, _, errno := syscall.Syscall(syscall.SYS_PRCTL, prSetDumpable, 0, 0); errno != 0 {
		logging.Default().Warn("prctl(PR_SET_DUMPABLE) failed", "errno", errno)
	}
}

// Install applies landlock path restriction (best-effort, logged but
// non-fatal on older kernels) followed by the seccomp syscall
// whitelist (fatal: a failure here means the daemon is not running
// with the isolation its threat model assumes).
func Install(configDir string) error {
	if ok := InstallLandlock(configDir); !ok {
		logging.Default().Warn("landlock unavailable, continuing without path restriction")
	}
	return InstallSeccomp()
}
