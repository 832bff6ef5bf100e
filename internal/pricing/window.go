// Package pricing implements the café's tariff classification and the
// session price calculator.  Everything here is pure: prices are a
// deterministic function of duration, headcount, device allocation and
// the tariff window in effect at a session's start time.
package pricing

import "time"

// Window is the time-of-day pricing regime.  It is derived from a
// timestamp and never persisted; the session ledger recomputes it from
// the session's start time on every mutation.
type Window int

const (
	HappyHour Window = iota
	NormalHour
	FunNight
	Fallback
)

// String returns the window name used in logs, events and reports.
func (w Window) String() string {
	switch w {
	case HappyHour:
		return "happy_hour"
	case NormalHour:
		return "normal_hour"
	case FunNight:
		return "fun_night"
	default:
		return "fallback"
	}
}

// ClassifyWindow maps a timestamp to its tariff window.  The four
// windows are evaluated as an ordered decision list; the boundary
// conditions are asymmetric (HappyHour owns :00 of the transition
// hour, NormalHour starts at :01), so the evaluation order matters and
// must not be reshuffled.
//
//	HappyHour  – from 09:00 until 14:00 inclusive on weekdays,
//	             until 12:00 inclusive on weekends.
//	NormalHour – from 14:01 (weekday) / 12:01 (weekend) until 20:59.
//	FunNight   – 21:00 through 05:59.
//	Fallback   – whatever remains (06:00–08:59 every day).
func ClassifyWindow(t time.Time) Window {
	switch {
	case isHappyHour(t):
		return HappyHour
	case isNormalHour(t):
		return NormalHour
	case isFunNight(t):
		return FunNight
	default:
		return Fallback
	}
}

func isWeekend(t time.Time) bool {
	d := t.Weekday()
	return d == time.Saturday || d == time.Sunday
}

func isHappyHour(t time.Time) bool {
	hour, minute := t.Hour(), t.Minute()
	if hour < 9 {
		return false
	}
	if isWeekend(t) {
		// Sat-Sun: 09:00 - 12:00
		if hour < 12 {
			return true
		}
		return hour == 12 && minute == 0
	}
	// Mon-Fri: 09:00 - 14:00
	if hour < 14 {
		return true
	}
	return hour == 14 && minute == 0
}

func isNormalHour(t time.Time) bool {
	hour, minute := t.Hour(), t.Minute()
	if hour >= 21 {
		return false
	}
	if isWeekend(t) {
		if hour == 12 {
			return minute >= 1
		}
		return hour > 12
	}
	if hour == 14 {
		return minute >= 1
	}
	return hour > 14
}

func isFunNight(t time.Time) bool {
	hour := t.Hour()
	return hour >= 21 || hour < 6
}
