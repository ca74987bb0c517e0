// Command abraxasctl is the control surface for the abraxasd daemon:
// it reads and writes the same on-disk location/override/weather-cache
// files the daemon watches, and never talks to the running daemon
// process directly — every change takes effect on the daemon's next
// inotify-triggered reconciliation or tick.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "abraxasctl",
		Short: "Control surface for the abraxasd color-temperature daemon",
	}

	root.AddCommand(
		statusCmd(),
		setLocationCmd(),
		refreshCmd(),
		setCmd(),
		resumeCmd(),
		resetCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
