// Package timex holds time helpers shared by the config loaders and the
// wire mapping of entry timestamps.
package timex

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Duration wraps time.Duration so JSON config files may say either "90s"
// or a number of nanoseconds.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
		return nil
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value, err)
		}
		d.Duration = parsed
		return nil
	default:
		return errors.New("invalid duration")
	}
}

// UnixMilli converts t to milliseconds since the epoch.
func UnixMilli(t time.Time) int64 {
	return t.UnixMilli()
}

// FromUnixMilli is the inverse of UnixMilli, always in UTC.
func FromUnixMilli(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// WireLayout is the layout of timestamps carried in entry rows.
const WireLayout = time.RFC3339Nano

// FormatMilli renders epoch milliseconds as a UTC wire timestamp.
func FormatMilli(ms int64) string {
	return FromUnixMilli(ms).Format(WireLayout)
}

// ParseMilli parses a wire timestamp into epoch milliseconds. Any RFC 3339
// offset is accepted.
func ParseMilli(s string) (int64, error) {
	t, err := time.Parse(WireLayout, s)
	if err != nil {
		return 0, err
	}
	return UnixMilli(t), nil
}
