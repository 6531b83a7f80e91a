package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"dialysis-scheduler/internal/apperr"
	"dialysis-scheduler/internal/clock"
	"dialysis-scheduler/internal/model"
)

var (
	dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timeRe = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::(\d{2}))?$`)
)

// Date validates a civil date in YYYY-MM-DD form.
func Date(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if !dateRe.MatchString(s) {
		return "", apperr.Validation(fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", raw))
	}
	if _, err := time.Parse(clock.DateLayout, s); err != nil {
		return "", apperr.Validation(fmt.Sprintf("invalid date %q", raw))
	}
	return s, nil
}

// Period accepts "morning" or "afternoon" in any case.
func Period(raw string) (model.Period, error) {
	switch p := model.Period(strings.ToLower(strings.TrimSpace(raw))); p {
	case model.PeriodMorning, model.PeriodAfternoon:
		return p, nil
	}
	return "", apperr.Validation(fmt.Sprintf("invalid time period %q", raw))
}

// SlotNumber checks n lies in [1..max].
func SlotNumber(n, max int) (int, error) {
	if n < 1 || n > max {
		return 0, apperr.Validation(fmt.Sprintf("slot number %d out of range 1..%d", n, max))
	}
	return n, nil
}

// AttendanceStatus accepts "present" or "absent".
func AttendanceStatus(raw string) (model.AttendanceStatus, error) {
	switch s := model.AttendanceStatus(strings.ToLower(strings.TrimSpace(raw))); s {
	case model.AttendancePresent, model.AttendanceAbsent:
		return s, nil
	}
	return "", apperr.Validation(fmt.Sprintf("invalid attendance status %q", raw))
}

// RescheduleStatus accepts pending, approved or denied. Empty means no filter.
func RescheduleStatus(raw string) (model.RescheduleStatus, error) {
	switch s := model.RescheduleStatus(strings.ToLower(strings.TrimSpace(raw))); s {
	case "", model.RescheduleStatusPending, model.RescheduleStatusApproved, model.RescheduleStatusDenied:
		return s, nil
	}
	return "", apperr.Validation(fmt.Sprintf("invalid reschedule status %q", raw))
}

// WeekdaySet accepts MWF or TTS.
func WeekdaySet(raw string) (model.WeekdaySet, error) {
	switch s := model.WeekdaySet(strings.ToUpper(strings.TrimSpace(raw))); s {
	case model.ScheduleMWF, model.ScheduleTTS:
		return s, nil
	}
	return "", apperr.Validation(fmt.Sprintf("invalid weekday set %q", raw))
}

// TimeOfDay normalizes "H:MM", "HH:MM" or "HH:MM:SS" to HH:MM:SS.
func TimeOfDay(raw string) (string, error) {
	m := timeRe.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return "", apperr.Validation(fmt.Sprintf("invalid time %q, expected HH:MM[:SS]", raw))
	}
	h, _ := strconv.Atoi(m[1])
	mins, _ := strconv.Atoi(m[2])
	sec := 0
	if m[3] != "" {
		sec, _ = strconv.Atoi(m[3])
	}
	if h > 23 || mins > 59 || sec > 59 {
		return "", apperr.Validation(fmt.Sprintf("invalid time %q", raw))
	}
	return fmt.Sprintf("%02d:%02d:%02d", h, mins, sec), nil
}
