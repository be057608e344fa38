// Package timecode parses and formats user-facing time offsets.
// Inputs are accepted as plain seconds ("90", "12.5"), MM:SS ("1:30"),
// or HH:MM:SS ("1:02:03"). All values are offsets in seconds from the
// start of the source video.
package timecode

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var secondsPattern = regexp.MustCompile(`^\d+(\.\d+)?$`)

// Parse converts a user-entered time string into seconds. The second
// return value is false when no value could be derived: empty input,
// non-numeric parts, or an unsupported number of ":" fields.
//
// Parse does no range checking; bounds against the video duration are
// the caller's responsibility.
func Parse(input string) (float64, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return 0, false
	}

	if secondsPattern.MatchString(input) {
		v, err := strconv.ParseFloat(input, 64)
		if err != nil {
			return 0, false
		}
		return v, true
	}

	parts := strings.Split(input, ":")
	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0, false
		}
		nums[i] = n
	}

	switch len(nums) {
	case 2:
		return float64(nums[0]*60 + nums[1]), true
	case 3:
		return float64(nums[0]*3600 + nums[1]*60 + nums[2]), true
	default:
		return 0, false
	}
}

// Format renders seconds as a display label: HH:MM:SS when the value
// reaches an hour, MM:SS otherwise. Fractional seconds are truncated.
func Format(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60

	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
