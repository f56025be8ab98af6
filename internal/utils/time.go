package utils

import (
	"strings"
	"time"
)

const (
	layoutDate = "2006-01-02"
	layoutTime = "15:04"
)

// ValidDate reports whether s is a well-formed YYYY-MM-DD value.
func ValidDate(s string) bool {
	_, err := time.Parse(layoutDate, strings.TrimSpace(s))
	return err == nil
}

// ValidTimeOfDay reports whether s is a well-formed HH:MM value.
func ValidTimeOfDay(s string) bool {
	_, err := time.Parse(layoutTime, strings.TrimSpace(s))
	return err == nil
}
