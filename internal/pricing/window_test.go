package pricing

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// at builds a timestamp on a fixed week: 2025-06-02 is a Monday,
// 2025-06-07 a Saturday.
func at(day time.Weekday, hour, minute int) time.Time {
	base := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC) // Monday
	offset := (int(day) - int(time.Monday) + 7) % 7
	return base.AddDate(0, 0, offset).Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func TestClassifyWindowBoundaries(t *testing.T) {
	cases := []struct {
		name   string
		ts     time.Time
		expect Window
	}{
		{"weekday morning opens happy", at(time.Monday, 9, 0), HappyHour},
		{"weekday happy midday", at(time.Wednesday, 13, 59), HappyHour},
		{"weekday happy owns 14:00", at(time.Monday, 14, 0), HappyHour},
		{"weekday normal starts 14:01", at(time.Monday, 14, 1), NormalHour},
		{"weekend happy until 12:00", at(time.Saturday, 12, 0), HappyHour},
		{"weekend normal starts 12:01", at(time.Saturday, 12, 1), NormalHour},
		{"sunday counts as weekend", at(time.Sunday, 13, 0), NormalHour},
		{"weekday 13:00 still happy", at(time.Friday, 13, 0), HappyHour},
		{"normal runs to 20:59", at(time.Tuesday, 20, 59), NormalHour},
		{"fun night from 21:00", at(time.Tuesday, 21, 0), FunNight},
		{"fun night past midnight", at(time.Saturday, 2, 30), FunNight},
		{"fun night ends 05:59", at(time.Thursday, 5, 59), FunNight},
		{"early gap is fallback", at(time.Thursday, 6, 0), Fallback},
		{"fallback until 08:59", at(time.Sunday, 8, 59), Fallback},
		{"weekend happy at 09:00", at(time.Sunday, 9, 0), HappyHour},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, ClassifyWindow(tc.ts), "at %s", tc.ts)
		})
	}
}

// Every minute of the week maps to exactly one window: the decision
// list has no gap, and the 06:00-08:59 interval falls through to
// Fallback on every day.
func TestClassifyWindowTotal(t *testing.T) {
	known := map[Window]bool{HappyHour: true, NormalHour: true, FunNight: true, Fallback: true}
	for day := 0; day < 7; day++ {
		for hour := 0; hour < 24; hour++ {
			for minute := 0; minute < 60; minute++ {
				ts := at(time.Weekday(day), hour, minute)
				w := ClassifyWindow(ts)
				if !known[w] {
					t.Fatalf("unknown window %v at %s", w, ts)
				}
				if hour >= 6 && hour < 9 {
					assert.Equal(t, Fallback, w, "gap hours belong to fallback, got %v at %s", w, ts)
				}
			}
		}
	}
}

func TestWindowString(t *testing.T) {
	for w, name := range map[Window]string{
		HappyHour:  "happy_hour",
		NormalHour: "normal_hour",
		FunNight:   "fun_night",
		Fallback:   "fallback",
	} {
		assert.Equal(t, name, w.String())
		assert.Equal(t, name, fmt.Sprint(w))
	}
}
