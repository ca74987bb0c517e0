// Package weather drives the NOAA two-step weather lookup
// (points/{lat},{lon} -> forecastHourly URL -> hourly periods) as a
// non-blocking subprocess state machine, so the single-threaded
// reactor never blocks on network I/O: a child process does the
// HTTPS fetch, and the reactor polls its stdout pipe like any other
// watched descriptor.
package weather

import (
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"github.com/wllclngn/ABRAXAS/internal/config"
)

// Phase is the fetch state machine's current step.
type Phase int

const (
	Idle Phase = iota
	ReadingPoints
	ReadingForecast
)

const maxBodyBytes = 1 << 20

// State is the weather fetch state machine. Invariant: phase == Idle
// iff pipeFD < 0 and cmd is nil.
type State struct {
	phase  Phase
	cmd    *exec.Cmd
	pipeFD int
	buf    []byte
	lat    float64
	lon    float64
}

// New returns an idle fetch state.
func New() *State {
	return &State{phase: Idle, pipeFD: -1}
}

// Phase reports the current state.
func (s *State) Phase() Phase { return s.phase }

// PipeFD returns the descriptor the reactor should poll for
// readability, or -1 when idle.
func (s *State) PipeFD() int { return s.pipeFD }

func spawnFetch(url string) (*exec.Cmd, int, error) {
	cmd := exec.Command("curl", "-s", "-m", "5",
		"-H", "Accept: application/geo+json",
		"-H", "User-Agent: abraxas/1.0 (weather color temp daemon)", url)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, -1, fmt.Errorf("weather: stdout pipe: %w", err)
	}
	cmd.Stderr = nil

	if err := cmd.Start(); err != nil {
		return nil, -1, fmt.Errorf("weather: start fetcher: %w", err)
	}

	fder, ok := stdout.(interface{ Fd() uintptr })
	if !ok {
		cmd.Process.Kill()
		return nil, -1, fmt.Errorf("weather: stdout pipe has no fd")
	}
	fd := int(fder.Fd())
	if err := unix.SetNonblock(fd, true); err != nil {
		cmd.Process.Kill()
		return nil, -1, fmt.Errorf("weather: set nonblocking: %w", err)
	}

	return cmd, fd, nil
}

// Start begins a fetch of the NOAA grid-point discovery endpoint. Only
// valid from Idle. Returns the pipe descriptor for the reactor to arm
// a poll interest on.
func (s *State) Start(lat, lon float64) (int, error) {
	if s.phase != Idle {
		return -1, fmt.Errorf("weather: Start called outside Idle phase")
	}

	url := fmt.Sprintf("https://api.weather.gov/points/%.4f,%.4f", lat, lon)
	cmd, fd, err := spawnFetch(url)
	if err != nil {
		return -1, err
	}

	s.cmd = cmd
	s.pipeFD = fd
	s.buf = s.buf[:0]
	s.lat, s.lon = lat, lon
	s.phase = ReadingPoints
	return fd, nil
}

// drain reads everything currently available on the pipe without
// blocking, reporting eof when the child has closed its end.
func (s *State) drain() (eof bool, err error) {
	chunk := make([]byte, 4096)
	for {
		n, rerr := unix.Read(s.pipeFD, chunk)
		if n > 0 {
			if len(s.buf)+n > maxBodyBytes {
				return false, fmt.Errorf("weather: response exceeds size ceiling")
			}
			s.buf = append(s.buf, chunk[:n]...)
		}
		if rerr == unix.EAGAIN {
			return false, nil
		}
		if n == 0 || rerr != nil {
			return true, nil
		}
	}
}

// reap waits for the child after EOF on its stdout pipe. Wait closes
// the pipe itself once the child has exited, so the fd is not closed
// again here.
func (s *State) reap() {
	if s.cmd != nil {
		s.cmd.Wait()
	}
	s.cmd = nil
	s.pipeFD = -1
}

type pointsResponse struct {
	Properties struct {
		ForecastHourly string `json:"forecastHourly"`
	} `json:"properties"`
}

type forecastResponse struct {
	Properties struct {
		Periods []struct {
			ShortForecast string  `json:"shortForecast"`
			Temperature   float64 `json:"temperature"`
			IsDaytime     bool    `json:"isDaytime"`
		} `json:"periods"`
	} `json:"properties"`
}

// Pump advances the state machine by one reactor tick: drains the
// pipe, and on EOF either transitions ReadingPoints -> ReadingForecast
// (returning the new pipe fd to re-arm) or completes ReadingForecast
// with a final snapshot. done is true once a terminal snapshot (either
// success or error) has been produced and the machine has returned to
// Idle.
func (s *State) Pump() (newPipeFD int, snapshot config.WeatherData, done bool, err error) {
	if s.phase == Idle {
		return -1, config.WeatherData{}, false, fmt.Errorf("weather: Pump called while Idle")
	}

	eof, derr := s.drain()
	if derr != nil {
		s.abortTo(Idle)
		return -1, errorSnapshot(), true, nil
	}
	if !eof {
		return s.pipeFD, config.WeatherData{}, false, nil
	}

	body := s.buf
	s.reap()

	switch s.phase {
	case ReadingPoints:
		var resp pointsResponse
		if err := json.Unmarshal(body, &resp); err != nil || resp.Properties.ForecastHourly == "" {
			s.phase = Idle
			return -1, errorSnapshot(), true, nil
		}
		cmd, fd, serr := spawnFetch(resp.Properties.ForecastHourly)
		if serr != nil {
			s.phase = Idle
			return -1, errorSnapshot(), true, nil
		}
		s.cmd = cmd
		s.pipeFD = fd
		s.buf = s.buf[:0]
		s.phase = ReadingForecast
		return fd, config.WeatherData{}, false, nil

	case ReadingForecast:
		var resp forecastResponse
		if err := json.Unmarshal(body, &resp); err != nil || len(resp.Properties.Periods) == 0 {
			s.phase = Idle
			return -1, errorSnapshot(), true, nil
		}
		period := resp.Properties.Periods[0]
		s.phase = Idle
		return -1, config.WeatherData{
			CloudCover:  cloudCoverFromForecast(period.ShortForecast),
			Forecast:    period.ShortForecast,
			Temperature: period.Temperature,
			IsDay:       period.IsDaytime,
			FetchedAt:   time.Now(),
			HasError:    false,
		}, true, nil
	}

	return -1, config.WeatherData{}, false, fmt.Errorf("weather: unreachable phase %v", s.phase)
}

// Abort kills any in-flight child process and resets to Idle.
func (s *State) Abort() {
	s.abortTo(Idle)
}

func (s *State) abortTo(p Phase) {
	if s.cmd != nil && s.cmd.Process != nil {
		s.cmd.Process.Kill()
		s.cmd.Wait()
	}
	s.cmd = nil
	s.pipeFD = -1
	s.buf = nil
	s.phase = p
}

func errorSnapshot() config.WeatherData {
	return config.WeatherData{
		Forecast:  "Unknown",
		IsDay:     true,
		FetchedAt: time.Now(),
		HasError:  true,
	}
}

// cloudCoverFromForecast classifies a short forecast string into an
// approximate cloud-cover percentage, checked in a fixed precedence
// order: precipitation keywords always mean heavy cloud regardless of
// any other word present.
func cloudCoverFromForecast(forecast string) int {
	lower := strings.ToLower(forecast)

	for _, kw := range []string{"rain", "storm", "snow", "drizzle", "showers"} {
		if strings.Contains(lower, kw) {
			return 95
		}
	}

	if strings.Contains(lower, "overcast") {
		return 90
	}
	if strings.Contains(lower, "mostly cloudy") {
		return 75
	}
	if strings.Contains(lower, "cloudy") {
		return 90
	}
	if strings.Contains(lower, "partly") {
		return 50
	}
	if strings.Contains(lower, "mostly sunny") || strings.Contains(lower, "mostly clear") {
		return 25
	}
	if strings.Contains(lower, "sunny") || strings.Contains(lower, "clear") {
		return 10
	}
	return 0
}
