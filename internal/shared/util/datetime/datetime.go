// Copyright (c) 2025 Justin Cranford
//
//

// Package datetime converts between time.Time and the ISO 8601 string
// representation used in wire formats and logs.
package datetime

import (
	"fmt"
	"time"
)

const utcFormat = time.RFC3339Nano

// ISO8601Time2String formats t as an ISO 8601 string, returning nil if t is
// nil.
func ISO8601Time2String(t *time.Time) *string {
	if t == nil {
		return nil
	}

	s := t.Format(utcFormat)

	return &s
}

// ISO8601String2Time parses an ISO 8601 string into a time.Time, returning
// nil if s is nil.
func ISO8601String2Time(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}

	t, err := time.Parse(utcFormat, *s)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ISO 8601 time: %w", err)
	}

	return &t, nil
}
