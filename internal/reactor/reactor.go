// Package reactor is the daemon's single-threaded event engine: it
// owns the ring, the inotify and signal descriptors, the gamma
// backend, and the weather fetch state machine, and interleaves them
// through one tick function that computes a target Kelvin value and
// drives the active gamma backend. It is the sole owner of what ring
// completion tags mean — the ring itself never interprets them.
package reactor

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"

	abraxas "github.com/wllclngn/ABRAXAS"
	"github.com/wllclngn/ABRAXAS/internal/config"
	"github.com/wllclngn/ABRAXAS/internal/gamma"
	"github.com/wllclngn/ABRAXAS/internal/logging"
	"github.com/wllclngn/ABRAXAS/internal/ring"
	"github.com/wllclngn/ABRAXAS/internal/sandbox"
	"github.com/wllclngn/ABRAXAS/internal/weather"
)

// ringEntries is the submission-queue depth. The reactor never has
// more than a handful of operations in flight at once (inotify,
// signal, weather, timeout, plus an occasional cancel), so a small
// ring is enough.
const ringEntries = 16

// State is the reactor's complete runtime state, owned entirely by the
// event-loop goroutine — nothing here is touched concurrently.
type State struct {
	location config.Location
	paths    config.Paths

	weather    config.WeatherData
	hasWeather bool
	fetch      *weather.State

	gammaState *gamma.State
	metrics    *abraxas.Metrics

	ringFD    *ring.Ring
	inotifyFD int
	signalFD  int

	// Single-shot POLL_ADD only completes once (fd ready, or
	// cancelled); these track which descriptors currently have an
	// outstanding poll entry so armPollInterests never stacks a second
	// one on top of it.
	inotifyPollPending bool
	signalPollPending  bool
	weatherPollPending bool
	weatherPollFD      int

	// Manual override tracking.
	manualMode        bool
	manualStartTemp   int
	manualTargetTemp  int
	manualStartTime   time.Time
	manualDurationMin int
	manualIssuedAt    time.Time
	manualResumeTime  time.Time

	lastTemp      int
	lastTempValid bool
}

// New constructs a reactor for the given location and resolved paths.
func New(loc config.Location, paths config.Paths) *State {
	return &State{
		location:      loc,
		paths:         paths,
		fetch:         weather.New(),
		metrics:       abraxas.NewMetrics(),
		inotifyFD:     -1,
		signalFD:      -1,
		weatherPollFD: -1,
	}
}

// Metrics exposes the reactor's live counters, e.g. for a status command.
func (s *State) Metrics() *abraxas.Metrics { return s.metrics }

// Run executes the full startup sequence and then the event loop until
// a shutdown signal is observed or a fatal initialization error occurs.
// The sequence's order is load-bearing: see spec §4.2.1 for why.
func (s *State) Run() error {
	signalFD, err := setupSignalfd()
	if err != nil {
		return fmt.Errorf("reactor: signalfd setup: %w", err)
	}
	s.signalFD = signalFD

	if err := s.initGammaWithRetry(); err != nil {
		s.shutdownDescriptors()
		return err
	}
	logging.Default().Info("gamma backend selected", "backend", s.gammaState.Name())

	if wd, ok := config.LoadWeatherCache(s.paths); ok {
		s.weather = wd
		s.hasWeather = true
	}

	inoFD, err := setupInotify(s.paths)
	if err != nil {
		logging.Default().Warn("inotify unavailable, config/override reload requires daemon restart", "error", err)
		inoFD = -1
	}
	s.inotifyFD = inoFD

	if err := config.WritePID(s.paths); err != nil {
		logging.Default().Warn("failed to write PID file", "error", err)
	}

	sandbox.Harden()

	if err := sandbox.Install(configDirOf(s.paths)); err != nil {
		s.shutdownDescriptors()
		return fmt.Errorf("reactor: sandbox install: %w", err)
	}

	s.recoverOverride()

	// Force one initial tick to apply gamma immediately at startup.
	s.tick(eventFlags{override: true})

	r, err := ring.Init(ringEntries)
	if err != nil {
		s.shutdown()
		return fmt.Errorf("reactor: ring init: %w", err)
	}
	s.ringFD = r

	logging.Default().Info("daemon started",
		"backend", s.gammaState.Name(),
		"inotify", s.inotifyFD >= 0,
		"signalfd", s.signalFD >= 0)

	err = s.eventLoop()
	s.shutdown()
	return err
}

// configDirOf derives the configuration directory from the config file
// path, since Paths doesn't carry the directory separately.
func configDirOf(p config.Paths) string {
	dir := p.ConfigFile
	for i := len(dir) - 1; i >= 0; i-- {
		if dir[i] == '/' {
			return dir[:i]
		}
	}
	return "."
}

// initGammaWithRetry attempts backend detection up to
// abraxas.GammaInitRetries times, polling the signal descriptor
// between attempts so an early shutdown request is never stuck behind
// a ~30s retry loop.
func (s *State) initGammaWithRetry() error {
	for attempt := 0; attempt < abraxas.GammaInitRetries; attempt++ {
		st, err := gamma.Init(0)
		if err == nil {
			s.gammaState = st
			return nil
		}

		if attempt == abraxas.GammaInitRetries-1 {
			return fmt.Errorf("reactor: no gamma backend available after retries: %w", err)
		}

		if s.signalDuringRetryWait(abraxas.GammaInitInterval) {
			return fmt.Errorf("reactor: shutdown requested during gamma backend init")
		}
	}
	return fmt.Errorf("reactor: no gamma backend available")
}

// signalDuringRetryWait sleeps up to d, polling the signal descriptor
// for early wake, and reports whether a shutdown signal arrived.
func (s *State) signalDuringRetryWait(d time.Duration) bool {
	pfd := []unix.PollFd{{Fd: int32(s.signalFD), Events: unix.POLLIN}}
	n, err := unix.Poll(pfd, int(d.Milliseconds()))
	if err != nil || n <= 0 {
		return false
	}
	if pfd[0].Revents&unix.POLLIN != 0 {
		drainSignalfd(s.signalFD)
		return true
	}
	return false
}

// eventLoop runs until a shutdown signal is observed.
func (s *State) eventLoop() error {
	for {
		s.armPollInterests()

		if err := s.ringFD.PrepTimeout(abraxas.TickInterval, evTimeout); err != nil {
			return fmt.Errorf("reactor: prep timeout: %w", err)
		}
		if _, err := s.ringFD.SubmitAndWait(); err != nil {
			return fmt.Errorf("reactor: submit and wait: %w", err)
		}

		flags := s.drainCompletions()

		if !flags.timer {
			s.cancelPendingTimeout()
		}

		if flags.signal {
			drainSignalfd(s.signalFD)
			s.fetch.Abort()
			logging.Default().Info("shutdown signal received")
			return nil
		}

		start := time.Now()
		s.tick(flags)
		s.metrics.RecordTick(uint64(time.Since(start).Nanoseconds()))

		s.pumpWeather(flags)
	}
}

// armPollInterests submits a fresh poll entry for each long-lived
// descriptor that doesn't already have one outstanding. Single-shot
// POLL_ADD completes exactly once (fd ready, or explicitly cancelled);
// re-arming a descriptor whose prior poll hasn't completed yet would
// stack a second in-flight registration on the same fd with no bound,
// eventually overflowing the completion queue. Completion of each tag
// is what clears the corresponding pending flag, in drainCompletions.
func (s *State) armPollInterests() {
	if s.inotifyFD >= 0 && !s.inotifyPollPending {
		s.ringFD.PrepPoll(s.inotifyFD, evInotify)
		s.inotifyPollPending = true
	}
	if !s.signalPollPending {
		s.ringFD.PrepPoll(s.signalFD, evSignal)
		s.signalPollPending = true
	}

	fd := s.fetch.PipeFD()
	if fd < 0 {
		s.weatherPollPending = false
		s.weatherPollFD = -1
		return
	}
	// The fetch pipe fd only ever changes right after its prior poll
	// completed (Pump() advancing ReadingPoints -> ReadingForecast) or
	// while no poll was pending at all (a fresh Start from Idle), so
	// there is never a second outstanding poll left behind on the old fd.
	if !s.weatherPollPending || fd != s.weatherPollFD {
		s.ringFD.PrepPoll(fd, evWeather)
		s.weatherPollPending = true
		s.weatherPollFD = fd
	}
}

// drainCompletions pulls every available completion off the ring,
// decodes it by tag, and folds the inotify buffer into per-file flags.
// EV_CANCEL completions are inert regardless of which iteration they
// arrive in.
func (s *State) drainCompletions() eventFlags {
	var flags eventFlags

	for {
		c, ok := s.ringFD.PeekCQE()
		if !ok {
			break
		}
		s.ringFD.CQESeen()

		switch c.Tag {
		case evTimeout:
			flags.timer = true
		case evSignal:
			flags.signal = true
			s.signalPollPending = false
		case evInotify:
			s.decodeInotify(&flags)
			s.inotifyPollPending = false
		case evWeather:
			flags.weather = true
			s.weatherPollPending = false
		case evCancel:
			logging.Default().Debug("cancellation completion drained")
			s.metrics.RecordRingCompletion(true)
			continue
		}
		s.metrics.RecordRingCompletion(false)
	}

	return flags
}

func (s *State) decodeInotify(flags *eventFlags) {
	buf := make([]byte, inotifyBufSize)
	n, err := unix.Read(s.inotifyFD, buf)
	if err != nil || n <= 0 {
		return
	}
	parseInotifyEvents(buf[:n], s.paths, flags)
}

// cancelPendingTimeout submits an async cancel for the timeout armed
// this iteration when some other event woke the loop early, then
// drains the resulting completions (its own + the cancelled timeout's)
// through the same decoder so neither leaks a stale tag into the next
// iteration.
func (s *State) cancelPendingTimeout() {
	if err := s.ringFD.PrepCancel(evTimeout, evCancel); err != nil {
		return
	}
	if _, err := s.ringFD.SubmitAndWait(); err != nil {
		return
	}
	s.drainCompletions()
}

// pumpWeather starts a fetch if one is due and idle, or advances the
// in-flight state machine when its pipe became readable. A changing
// pipe descriptor (ReadingPoints -> ReadingForecast) is never carried
// forward as a stale poll interest: armPollInterests re-reads
// s.fetch.PipeFD() fresh every iteration.
func (s *State) pumpWeather(flags eventFlags) {
	if s.fetch.Phase() == weather.Idle {
		if !s.hasWeather || config.WeatherNeedsRefresh(s.weather) {
			if _, err := s.fetch.Start(s.location.Lat, s.location.Lon); err != nil {
				logging.Default().Warn("weather fetch failed to start", "error", err)
			}
		}
		return
	}

	if !flags.weather {
		return
	}

	_, snapshot, done, err := s.fetch.Pump()
	if err != nil {
		logging.Default().Warn("weather pump error", "error", err)
		return
	}
	if !done {
		return
	}

	s.hasWeather = true
	s.weather = snapshot
	s.metrics.RecordWeatherFetch(!snapshot.HasError)
	if !snapshot.HasError {
		if err := config.SaveWeatherCache(s.paths, snapshot); err != nil {
			logging.Default().Warn("failed to persist weather cache", "error", err)
		}
	}
}

// shutdown performs the full teardown: weather abort, gamma restore,
// PID removal, descriptor close. Called exactly once, whether Run
// exits cleanly or a startup step after the ring is live fails.
func (s *State) shutdown() {
	logging.Default().Info("shutting down")
	s.metrics.Stop()

	s.fetch.Abort()

	if s.gammaState != nil {
		if err := s.gammaState.Restore(); err != nil {
			logging.Default().Warn("gamma restore failed", "error", err)
		}
		s.gammaState.Close()
	}

	config.RemovePID(s.paths)

	if s.ringFD != nil {
		s.ringFD.Close()
	}
	s.shutdownDescriptors()
}

func (s *State) shutdownDescriptors() {
	if s.inotifyFD >= 0 {
		unix.Close(s.inotifyFD)
		s.inotifyFD = -1
	}
	if s.signalFD >= 0 {
		unix.Close(s.signalFD)
		s.signalFD = -1
	}
}
