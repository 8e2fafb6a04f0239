package common

import (
	"fmt"
	"strings"
	"time"
)

// German month names and the abbreviations that appear in bank documents,
// mapped to English so the stdlib layouts can parse them. "Mrz" is an
// abbreviation some banks still print although Java-era locales dropped
// it; it is mapped like "Mär".
var germanMonths = strings.NewReplacer(
	"Januar", "January", "Februar", "February", "März", "March",
	"April", "April", "Mai", "May", "Juni", "June", "Juli", "July",
	"August", "August", "September", "September", "Oktober", "October",
	"November", "November", "Dezember", "December",
	"Jan.", "Jan", "Feb.", "Feb", "Mär", "Mar", "Mrz", "Mar",
	"Apr.", "Apr", "Jun.", "Jun", "Jul.", "Jul", "Aug.", "Aug",
	"Sep.", "Sep", "Okt", "Oct", "Nov.", "Nov", "Dez", "Dec",
)

var dateLayouts = []string{
	"02.01.2006",
	"2.1.2006",
	"02.01.06",
	"2.1.06",
	"2006-01-02",
	"02-01-2006",
	"2-1-2006",
	"02/01/2006",
	"2/1/2006",
	"2 January 2006",
	"2. January 2006",
	"2 Jan 2006",
	"2. Jan 2006",
	"2 Jan 06",
	"Jan 2, 2006",
	"January 2, 2006",
}

var dateTimeLayouts = []string{
	"02.01.2006 15:04",
	"02.01.2006 15:04:05",
	"2.1.2006 15:04",
	"02-01-2006 15:04",
	"02-01-2006 15:04:05",
	"2006-01-02 15:04:05",
	"02.01.2006 15.04.05",
	"02/01/2006 15:04:05",
}

// ParseDate parses a document date, trying German layouts first, then
// ISO and anglophone variants. Month names are translated before
// parsing so "15. März 2021" and "15. Mrz 2021" both work.
func ParseDate(raw string) (time.Time, error) {
	value := germanMonths.Replace(strings.TrimSpace(raw))
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("not a valid date: %q", raw)
}

// ParseDateTime parses a date plus a time-of-day string.
func ParseDateTime(date, clock string) (time.Time, error) {
	value := germanMonths.Replace(strings.TrimSpace(date) + " " + strings.TrimSpace(clock))
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	// Fall back to the plain date if the clock part is unparseable.
	return ParseDate(date)
}
