// Command abraxasd is the long-running daemon: it resolves its
// on-disk paths, requires a configured location, and then hands off
// to the reactor for the rest of the process lifetime.
//
// Unlike a typical Go service, abraxasd does not install an
// os/signal.Notify-based shutdown path here — the reactor blocks
// SIGTERM/SIGINT into a signalfd during its own startup sequence
// before any slow initialization runs, and owns the entire shutdown
// sequence itself. Installing a second signal handler at this layer
// would race the reactor's own.
package main

import (
	"fmt"
	"os"

	"github.com/wllclngn/ABRAXAS/internal/config"
	"github.com/wllclngn/ABRAXAS/internal/logging"
	"github.com/wllclngn/ABRAXAS/internal/reactor"
)

func main() {
	if err := run(); err != nil {
		logging.Default().Errorf("%v", err)
		os.Exit(1)
	}
}

func run() error {
	paths, err := config.InitPaths()
	if err != nil {
		return fmt.Errorf("abraxasd: %w", err)
	}

	if config.CheckDaemonAlive(paths) {
		return fmt.Errorf("abraxasd: daemon already running (see %s)", paths.PIDFile)
	}

	loc, ok := config.LoadLocation(paths)
	if !ok {
		fmt.Fprintln(os.Stderr, "No location configured. Use abraxasctl set-location first.")
		fmt.Fprintln(os.Stderr, "  Example: abraxasctl set-location 41.88,-87.63")
		os.Exit(1)
	}

	r := reactor.New(loc, paths)
	return r.Run()
}
