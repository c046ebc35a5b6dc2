// config/duration.go
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var errNonPositive = errors.New("duration must be >0")

// parseDurationFlexible accepts duration strings ("90s", "2m"), plain seconds
// as numbers or numeric strings, and time.Duration values.
// Unknown types and empty strings yield def with no error; invalid or
// non-positive values yield def and an error.
func parseDurationFlexible(raw any, def time.Duration) (time.Duration, error) {
	var d time.Duration
	switch t := raw.(type) {
	case time.Duration:
		d = t
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return def, nil
		}
		if pd, err := time.ParseDuration(s); err == nil {
			d = pd
		} else if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			d = time.Duration(n) * time.Second
		} else {
			return def, fmt.Errorf("cannot parse duration %q", s)
		}
	case int:
		d = time.Duration(t) * time.Second
	case int32:
		d = time.Duration(t) * time.Second
	case int64:
		d = time.Duration(t) * time.Second
	case float64:
		d = time.Duration(t * float64(time.Second))
	default:
		return def, nil
	}
	if d <= 0 {
		return def, errNonPositive
	}
	return d, nil
}
