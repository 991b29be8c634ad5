package iso

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// CAISO uses Pacific Time
	ptLocation = func() *time.Location {
		loc, err := time.LoadLocation("America/Los_Angeles")
		if err != nil {
			panic(fmt.Errorf("failed to load pacific time location: %w", err))
		}
		return loc
	}()
)

var (
	// ErrBadTimeFormat is returned when a clock value is not two
	// colon-separated integers.
	ErrBadTimeFormat = errors.New("time must be HH:MM")

	// ErrInvalidTime is returned when the hour or minute is out of range.
	ErrInvalidTime = errors.New("hour or minute out of range")
)

// makeTimestamp combines a bare "HH:MM" clock value with the calendar fields
// of date into a timestamp in loc.
func makeTimestamp(clock string, date time.Time, loc *time.Location) (time.Time, error) {
	parts := strings.Split(clock, ":")
	if len(parts) != 2 {
		return time.Time{}, fmt.Errorf("%w, got %q", ErrBadTimeFormat, clock)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w, got %q", ErrBadTimeFormat, clock)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w, got %q", ErrBadTimeFormat, clock)
	}
	// time.Date would silently normalize 24:00 into the next day
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return time.Time{}, fmt.Errorf("%w, got %q", ErrInvalidTime, clock)
	}
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, loc), nil
}
