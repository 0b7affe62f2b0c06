package event

import (
	"errors"
	"fmt"
	"time"
)

// Record is one adverse-event report as handed to the analysis core. Text
// fields may be empty; problem lists may be nil. Dates are calendar dates.
type Record struct {
	ReportID        string
	DateReceived    time.Time
	Manufacturer    string
	Brand           string
	ProductProblems []string
	PatientProblems []string
}

// ErrDataFormat marks structural input errors, e.g. a date_received value no
// supported layout can parse.
var ErrDataFormat = errors.New("data format error")

// DatePolicy controls what happens when a record's date cannot be parsed.
type DatePolicy string

const (
	// DateFail aborts the load identifying the offending record.
	DateFail DatePolicy = "fail"
	// DateSkip drops the record and counts it as rejected.
	DateSkip DatePolicy = "skip"
)

// LoadResult is a batch of parsed records plus the count of records rejected
// under DateSkip. Rejected is always zero under DateFail.
type LoadResult struct {
	Records  []Record
	Rejected int
}

var dateLayouts = []string{"20060102", "2006-01-02", "2006/01/02"}

// ParseDate parses a date_received value in any supported layout.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unparseable date_received %q", ErrDataFormat, s)
}
