package models

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar date carried in payloads as "YYYY-MM-DD".
type Date struct {
	time.Time
}

// NewDate builds a Date from year, month, day in UTC.
func NewDate(year int, month time.Month, day int) *Date {
	return &Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

// MarshalJSON renders the date as a quoted YYYY-MM-DD string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

// UnmarshalJSON accepts a quoted YYYY-MM-DD string.
func (d *Date) UnmarshalJSON(data []byte) error {
	value := strings.Trim(string(data), `"`)
	if value == "" || value == "null" {
		return nil
	}

	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", value, err)
	}

	d.Time = parsed

	return nil
}

// MarshalYAML renders the date as YYYY-MM-DD for YAML output.
func (d Date) MarshalYAML() (any, error) {
	return d.Format(dateLayout), nil
}
