package ranking

import (
	"time"
)

const (
	DefaultLayout       = "2006/01/02 15:04:05"
	DefaultNotSubmitted = "未提出"
)

// TimeFormat renders stored millisecond timestamps.
type TimeFormat struct {
	Layout       string
	Location     *time.Location
	NotSubmitted string
}

func DefaultTimeFormat() TimeFormat {
	return TimeFormat{
		Layout:       DefaultLayout,
		Location:     time.Local,
		NotSubmitted: DefaultNotSubmitted,
	}
}

// Format renders ms in the configured zone; zero or negative timestamps
// render as the not-submitted marker.
func (f TimeFormat) Format(ms int64) string {
	if ms <= 0 {
		return f.marker()
	}
	loc := f.Location
	if loc == nil {
		loc = time.Local
	}
	layout := f.Layout
	if layout == "" {
		layout = DefaultLayout
	}
	return time.UnixMilli(ms).In(loc).Format(layout)
}

func (f TimeFormat) marker() string {
	if f.NotSubmitted == "" {
		return DefaultNotSubmitted
	}
	return f.NotSubmitted
}
