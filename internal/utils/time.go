package utils

import (
	"fmt"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// ParseRideDate parses a ride date in the service timezone.
func ParseRideDate(value string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", value)
	}
	return t, nil
}

// WithinBookingHorizon reports whether date falls between today and
// BookingHorizonDays ahead, inclusive. Comparison is by calendar day, not by
// elapsed hours, so a ride later today always qualifies.
func WithinBookingHorizon(date, now time.Time) bool {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, now.Location())
	diff := int(day.Sub(today).Hours() / 24)
	return diff >= 0 && diff <= BookingHorizonDays
}

// BookingWindow returns the list of bookable dates starting today, used as
// the default listing filter.
func BookingWindow(now time.Time) []string {
	dates := make([]string, 0, BookingHorizonDays+1)
	for i := 0; i <= BookingHorizonDays; i++ {
		dates = append(dates, now.AddDate(0, 0, i).Format(DateLayout))
	}
	return dates
}
