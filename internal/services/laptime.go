package services

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// LapTimeToSeconds converts a formatted lap time ("MM:SS.mmm") to seconds.
// The parse is deliberately lenient: a string without a colon, or one that
// does not yield three numeric parts, converts to 0 rather than an error,
// matching how the dashboard treats missing or sentinel lap times.
func LapTimeToSeconds(lapTime string) float64 {
	if !strings.Contains(lapTime, ":") {
		return 0
	}
	parts := strings.FieldsFunc(lapTime, func(r rune) bool {
		return r == ':' || r == '.'
	})
	if len(parts) < 3 {
		return 0
	}
	minutes, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0
	}
	seconds, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0
	}
	millis, err := strconv.Atoi(parts[2])
	if err != nil {
		return 0
	}
	return float64(minutes)*60 + float64(seconds) + float64(millis)/1000
}

// SecondsToLapTime formats seconds as "MM:SS.mmm" with zero-padded fields.
// SecondsToLapTime(LapTimeToSeconds(x)) == x for any well-formed x.
func SecondsToLapTime(seconds float64) string {
	minutes := int(seconds) / 60
	secs := int(seconds) % 60
	millis := int(math.Round((seconds - math.Floor(seconds)) * 1000))
	if millis >= 1000 {
		millis -= 1000
		secs++
		if secs >= 60 {
			secs -= 60
			minutes++
		}
	}
	return fmt.Sprintf("%02d:%02d.%03d", minutes, secs, millis)
}

// SafetyRatingDisplay formats a raw safety rating value for display. Upstream
// stores safety ratings at 100x the displayed decimal value.
func SafetyRatingDisplay(raw float64) string {
	return fmt.Sprintf("%.2f", raw/100)
}
