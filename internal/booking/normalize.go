package booking

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	datePattern = regexp.MustCompile(`^(\d{2})/?(\d{2})/?(\d{4})$`)
	timePattern = regexp.MustCompile(`^\d{2}:\d{2}$`)
)

// NormalizeDate parses a free-form date input into the canonical DD/MM/YYYY
// form. Digits may be entered with or without slashes. Calendrically invalid
// combinations and dates earlier than today (day granularity, in the supplied
// location) are rejected. The function is pure given the reference time.
func NormalizeDate(input string, now time.Time, loc *time.Location) (string, bool) {
	if loc == nil {
		loc = time.Local
	}
	cleaned := stripSpaces(input)
	match := datePattern.FindStringSubmatch(cleaned)
	if match == nil {
		return "", false
	}
	day, _ := strconv.Atoi(match[1])
	month, _ := strconv.Atoi(match[2])
	year, _ := strconv.Atoi(match[3])
	if day < 1 || day > 31 || month < 1 || month > 12 || year < 2024 || year > 2099 {
		return "", false
	}

	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	// time.Date normalizes day 31 of a 30-day month into the next month, so a
	// round-trip mismatch means the calendar date does not exist.
	if date.Day() != day || date.Month() != time.Month(month) || date.Year() != year {
		return "", false
	}

	today := now.In(loc)
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, loc)
	if date.Before(today) {
		return "", false
	}

	return date.Format("02/01/2006"), true
}

// NormalizeTimeRange parses a free-form start-end time input into the
// canonical HH:MM-HH:MM form. A side without a colon is read as a whole hour
// ("9" becomes "09:00"). The end must be strictly after the start; ranges
// never wrap past midnight.
func NormalizeTimeRange(input string) (string, bool) {
	cleaned := stripSpaces(input)
	parts := strings.Split(cleaned, "-")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", false
	}
	start := expandWholeHour(parts[0])
	end := expandWholeHour(parts[1])
	if !timePattern.MatchString(start) || !timePattern.MatchString(end) {
		return "", false
	}
	if minuteOfDay(end) <= minuteOfDay(start) {
		return "", false
	}
	return start + "-" + end, true
}

// RangeMinutes splits a canonical HH:MM-HH:MM range into minutes since
// midnight. Only call it with normalized input.
func RangeMinutes(timeRange string) (start, end int) {
	parts := strings.SplitN(timeRange, "-", 2)
	if len(parts) != 2 {
		return 0, 0
	}
	return minuteOfDay(parts[0]), minuteOfDay(parts[1])
}

// MeetingStart combines a canonical date and time range into the meeting's
// starting instant in the organization's timezone.
func MeetingStart(date, timeRange string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}
	dateParts := strings.Split(date, "/")
	if len(dateParts) != 3 {
		return time.Time{}, false
	}
	day, err1 := strconv.Atoi(dateParts[0])
	month, err2 := strconv.Atoi(dateParts[1])
	year, err3 := strconv.Atoi(dateParts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, false
	}
	startPart := strings.SplitN(timeRange, "-", 2)[0]
	clock := strings.SplitN(startPart, ":", 2)
	if len(clock) != 2 {
		return time.Time{}, false
	}
	hour, err4 := strconv.Atoi(clock[0])
	minute, err5 := strconv.Atoi(clock[1])
	if err4 != nil || err5 != nil {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, hour, minute, 0, 0, loc), true
}

func expandWholeHour(value string) string {
	if strings.Contains(value, ":") {
		return value
	}
	for len(value) < 2 {
		value = "0" + value
	}
	return value + ":00"
}

func minuteOfDay(hhmm string) int {
	parts := strings.SplitN(hhmm, ":", 2)
	hour, _ := strconv.Atoi(parts[0])
	minute := 0
	if len(parts) == 2 {
		minute, _ = strconv.Atoi(parts[1])
	}
	return hour*60 + minute
}

func stripSpaces(value string) string {
	return strings.Join(strings.Fields(value), "")
}
