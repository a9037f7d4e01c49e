package timingutils

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// GetDeferrableTimingLogger creates a logger function that starts a timer when called and ends the timer when the calling function ends and logs (at debug level) the time diff.
func GetDeferrableTimingLogger(message string) func() {
	if !log.IsLevelEnabled(log.DebugLevel) {
		return func() {}
	}

	start := time.Now()
	return func() {
		log.Debugf("%v: %v", message, time.Since(start))
	}
}

// FormatJSDateString formats the time in the layout of JavaScript's `Date.prototype.toString()`, e.g. "Tue Mar 08 2022 10:31:05 GMT+0800 (CST)".
// The parenthesized part is the zone abbreviation of the location ("CST"), or the offset ("+0800") if the zone has no name. JavaScript prints the long name there ("China Standard Time").
func FormatJSDateString(t time.Time) string {
	return t.Format("Mon Jan 02 2006 15:04:05 GMT-0700 (MST)")
}
