package reactor

import (
	"fmt"
	"syscall"
	"unsafe"

	"golang.org/x/sys/unix"
)

var sizeofSignalfdSiginfo = int(unsafe.Sizeof(unix.SignalfdSiginfo{}))

// setupSignalfd blocks SIGTERM/SIGINT process-wide (so neither can ever
// be delivered as an async signal and lost) and returns a descriptor
// that becomes readable, once per pending signal, instead.
//
// This must run before any slow startup step — gamma backend detection
// can take up to ~30s, and a signal arriving during that window must
// still be observable once the ring is polling.
func setupSignalfd() (int, error) {
	var set unix.Sigset_t
	sigsetAdd(&set, int(syscall.SIGTERM))
	sigsetAdd(&set, int(syscall.SIGINT))

	if err := unix.PthreadSigmask(unix.SIG_BLOCK, &set, nil); err != nil {
		return -1, fmt.Errorf("reactor: sigprocmask: %w", err)
	}

	fd, err := unix.Signalfd(-1, &set, unix.SFD_NONBLOCK|unix.SFD_CLOEXEC)
	if err != nil {
		return -1, fmt.Errorf("reactor: signalfd: %w", err)
	}
	return fd, nil
}

func sigsetAdd(set *unix.Sigset_t, sig int) {
	set.Val[(sig-1)/64] |= 1 << uint((sig-1)%64)
}

// drainSignalfd consumes every pending signalfd_siginfo record so the
// descriptor's readability edge clears; the daemon only ever cares that
// a shutdown signal arrived, not which one or how many are queued.
func drainSignalfd(fd int) {
	b := make([]byte, sizeofSignalfdSiginfo)
	for {
		n, err := unix.Read(fd, b)
		if n <= 0 || err != nil {
			return
		}
	}
}
