package calendar

// Config holds Google Calendar connector configuration.
type Config struct {
	// CalendarID is the calendar to sync. Defaults to "primary".
	CalendarID string
	// MaxResults is the page size for API requests.
	MaxResults int64
	// SingleEvents expands recurring events into instances.
	SingleEvents bool
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		CalendarID:   "primary",
		MaxResults:   100,
		SingleEvents: true, // Expand recurring events so each instance classifies on its own
	}
}
