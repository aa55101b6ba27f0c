package normalize

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/finproc/statement-processor/internal/models"
)

// Layouts tried in order. Month-day-year interpretations come before
// day-month-year, so an ambiguous 03/04/2025 reads as March 4.
var monthFirstLayouts = []string{
	"1/2/2006",
	"1-2-2006",
	"1.2.2006",
	"1/2/06",
	"1-2-06",
	"2006-1-2",
	"2006/1/2",
	"2006.1.2",
	"Jan 2, 2006",
	"Jan 2 2006",
	"January 2, 2006",
	"January 2 2006",
}

var dayFirstLayouts = []string{
	"2/1/2006",
	"2-1-2006",
	"2.1.2006",
	"2/1/06",
	"2-1-06",
	"2 Jan 2006",
	"2 January 2006",
	"2-Jan-2006",
}

var trailingJunk = regexp.MustCompile(`[^\w\s/\-.]+$`)

// ParseDate parses a date string into a calendar date, attempting
// month/day/year interpretations before day/month/year. It returns nil
// when no interpretation yields a possible calendar date.
func ParseDate(dateStr string) *time.Time {
	dateStr = strings.TrimSpace(dateStr)
	if dateStr == "" {
		return nil
	}
	dateStr = trailingJunk.ReplaceAllString(dateStr, "")

	for _, layout := range monthFirstLayouts {
		if t, err := time.Parse(layout, dateStr); err == nil {
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &d
		}
	}
	for _, layout := range dayFirstLayouts {
		if t, err := time.Parse(layout, dateStr); err == nil {
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &d
		}
	}
	return nil
}

// FormatDate renders a date using one of the two supported tokens. Any
// other token is an error, never a silent default.
func FormatDate(t time.Time, format models.DateFormat) (string, error) {
	switch format {
	case models.DateFormatMDY:
		return t.Format("01/02/2006"), nil
	case models.DateFormatDMY:
		return t.Format("02/01/2006"), nil
	default:
		return "", fmt.Errorf("unsupported date format: %q", format)
	}
}
