package scraper

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var isoDurationRe = regexp.MustCompile(`(?i)^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+(?:\.\d+)?)S)?)?$`)

// formatDuration renders an ISO-8601 duration such as "PT1H30M" as "1h 30m",
// "1h" or "45 min". Values that are not ISO durations are returned trimmed but
// otherwise unchanged. A zero duration renders as "".
func formatDuration(raw string) string {
	s := strings.TrimSpace(raw)
	m := isoDurationRe.FindStringSubmatch(s)
	if m == nil || s == "P" || strings.EqualFold(s, "PT") {
		return s
	}
	days := atoi(m[1])
	hours := atoi(m[2])
	minutes := atoi(m[3])
	if m[4] != "" && days == 0 && hours == 0 && minutes == 0 {
		if secs, err := strconv.ParseFloat(m[4], 64); err == nil && secs >= 30 {
			minutes = 1
		}
	}

	total := days*24*60 + hours*60 + minutes
	h, min := total/60, total%60
	switch {
	case h > 0 && min > 0:
		return fmt.Sprintf("%dh %dm", h, min)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	case min > 0:
		return fmt.Sprintf("%d min", min)
	default:
		return ""
	}
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
