package extract

import (
	"github.com/CodeBeast357/downdrag"
)

// ExtractSchedule searches text for a time range. The first capture group is
// the start token and the second the end token; both are normalized with
// rules, the end relative to the start. No match yields two empty strings and
// a missing second group an empty end.
func ExtractSchedule(pattern downdrag.Pattern, text string, rules downdrag.TimeRules) (start, end string, err error) {
	groups, ok, err := pattern.Search(text)
	if err != nil || !ok {
		return "", "", err
	}
	if len(groups) == 0 {
		return "", "", downdrag.Errorf(downdrag.EINVALID, "schedule pattern %q has no capture groups", pattern.String())
	}
	if start, err = rules.Parse(groups[0], ""); err != nil {
		return "", "", err
	}
	if len(groups) > 1 && groups[1] != "" {
		if end, err = rules.Parse(groups[1], start); err != nil {
			return "", "", err
		}
	}
	return start, end, nil
}
