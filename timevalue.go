package downdrag

import (
	"fmt"
	"strconv"
	"strings"
)

// Default time rule thresholds.
const (
	DefaultEarlyAM  = 5
	DefaultBareHour = 10
)

// TimeRules holds the heuristics used to normalize listing time tokens into
// 24-hour "HH:MM" strings. Zero thresholds mean the defaults.
//
// Hours are not wrapped: a token may normalize past "23:59" when it belongs to
// the early hours of the following day, so "2AM" yields "26:00".
type TimeRules struct {
	// EarlyAM is the hour below which an AM token is pushed into the next day.
	EarlyAM int `yaml:"early_am" validate:"gte=0,lte=12"`

	// BareHour is the hour below which a token without meridiem is read as PM.
	BareHour int `yaml:"bare_hour" validate:"gte=0,lte=24"`

	// PMAnyHour drops the hour<12 guard on the PM adjustment.
	PMAnyHour bool `yaml:"pm_any_hour"`
}

func (r TimeRules) earlyAM() int {
	if r.EarlyAM == 0 {
		return DefaultEarlyAM
	}
	return r.EarlyAM
}

func (r TimeRules) bareHour() int {
	if r.BareHour == 0 {
		return DefaultBareHour
	}
	return r.BareHour
}

// Parse normalizes token into "HH:MM". Tokens with seconds keep them, so
// "9:30:15PM" yields "21:30:15". When threshold is a previously parsed
// "HH:MM" string and the parsed hour is earlier than its hour, the result is
// pushed twelve hours later. Tokens whose hour is not a number fail.
func (r TimeRules) Parse(token, threshold string) (string, error) {
	token = strings.ToUpper(strings.TrimSpace(token))
	sep := ":"
	if !strings.Contains(token, sep) {
		sep = "H"
	}
	parts := strings.Split(token, sep)
	last := len(parts) - 1

	hourPart, minute := parts[0], ""
	if last > 0 {
		minute = parts[last]
	}

	var hour int
	if strings.Contains(parts[last], "M") {
		period := suffix(parts[last], 2)
		if strings.Contains(hourPart, "M") {
			hourPart = trimSuffix(hourPart, 2)
		}
		h, err := atoi(hourPart, token)
		if err != nil {
			return "", err
		}
		hour = r.meridiem(h, period)
		if last > 0 {
			minute = trimSuffix(minute, 2)
		}
	} else {
		h, err := atoi(hourPart, token)
		if err != nil {
			return "", err
		}
		hour = h
		if hour < r.bareHour() {
			hour += 12
		}
	}

	minute = strings.TrimSpace(minute)
	if minute == "" {
		minute = "00"
	}

	if threshold != "" {
		th, err := atoi(strings.SplitN(threshold, ":", 2)[0], threshold)
		if err != nil {
			return "", err
		}
		if hour < th {
			hour += 12
		}
	}
	fields := append([]string{fmt.Sprintf("%02d", hour)}, parts[1:max(last, 1)]...)
	return strings.Join(append(fields, minute), ":"), nil
}

func (r TimeRules) meridiem(hour int, period string) int {
	pm := period == "PM"
	switch {
	case hour == 0:
		return 24
	case period == "AM" && hour < r.earlyAM():
		return hour + 24
	case pm != (hour == 12) && (r.PMAnyHour || hour < 12):
		return hour + 12
	}
	return hour
}

func atoi(s, token string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("malformed time value %q", token)
	}
	return n, nil
}

func suffix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

func trimSuffix(s string, n int) string {
	if len(s) <= n {
		return ""
	}
	return s[:len(s)-n]
}
