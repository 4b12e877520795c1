// Package clock provides the wall-clock source for transaction stamps.
//
// Date and time stamps are rendered without zero padding (2025-1-5, 9:4:7).
// The daily withdrawal total is computed by string equality against stamps
// written earlier, so writers and readers must share this exact format.
package clock

import (
	"strconv"
	"time"
)

// Clock yields the current local time. Abstracted so tests can pin a moment.
type Clock interface {
	Now() time.Time
}

// System reads the real local wall clock.
type System struct{}

func (System) Now() time.Time { return time.Now() }

// Fixed always reports the same moment. Test helper.
type Fixed struct {
	Moment time.Time
}

func (f Fixed) Now() time.Time { return f.Moment }

// DateStamp renders t as YYYY-M-D without zero padding.
func DateStamp(t time.Time) string {
	return strconv.Itoa(t.Year()) + "-" +
		strconv.Itoa(int(t.Month())) + "-" +
		strconv.Itoa(t.Day())
}

// TimeStamp renders t as H:M:S without zero padding.
func TimeStamp(t time.Time) string {
	return strconv.Itoa(t.Hour()) + ":" +
		strconv.Itoa(t.Minute()) + ":" +
		strconv.Itoa(t.Second())
}
