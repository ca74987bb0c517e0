package weather

import "testing"

func TestCloudCoverFromForecastPrecedence(t *testing.T) {
	cases := []struct {
		forecast string
		want     int
	}{
		{"Chance Showers And Thunderstorms", 95},
		{"Rain Likely", 95},
		{"Overcast", 90},
		{"Mostly Cloudy", 75},
		{"Cloudy", 90},
		{"Partly Sunny", 50},
		{"Mostly Sunny", 25},
		{"Mostly Clear", 25},
		{"Sunny", 10},
		{"Clear", 10},
		{"Windy", 0},
	}
	for _, c := range cases {
		if got := cloudCoverFromForecast(c.forecast); got != c.want {
			t.Errorf("cloudCoverFromForecast(%q) = %d, want %d", c.forecast, got, c.want)
		}
	}
}

func TestCloudCoverPrecipitationBeatsClear(t *testing.T) {
	got := cloudCoverFromForecast("Sunny with a Chance of Showers")
	if got != 95 {
		t.Errorf("precipitation keyword should win over 'sunny', got %d", got)
	}
}

func TestNewStateStartsIdle(t *testing.T) {
	s := New()
	if s.Phase() != Idle {
		t.Errorf("Phase() = %v, want Idle", s.Phase())
	}
	if s.PipeFD() != -1 {
		t.Errorf("PipeFD() = %d, want -1 before Start", s.PipeFD())
	}
}

func TestPumpWhileIdleErrors(t *testing.T) {
	s := New()
	if _, _, _, err := s.Pump(); err == nil {
		t.Error("expected Pump to error when called on an Idle state machine")
	}
}
