// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "fmt"

// AccessLevel is the strength of a grant on a file. Levels are totally
// ordered: a higher level implies every permission of the lower ones.
type AccessLevel int

const (
	AccessNone AccessLevel = iota
	AccessRead
	AccessReadWrite
	AccessManage
	AccessFull
)

// String implements fmt.Stringer.
func (l AccessLevel) String() string {
	switch l {
	case AccessNone:
		return "none"
	case AccessRead:
		return "read"
	case AccessReadWrite:
		return "read_write"
	case AccessManage:
		return "manage"
	case AccessFull:
		return "full"
	default:
		return fmt.Sprintf("access_level(%d)", int(l))
	}
}

// Valid reports whether l is one of the declared levels.
func (l AccessLevel) Valid() bool {
	return l >= AccessNone && l <= AccessFull
}

// AtLeast reports whether l grants everything min grants.
func (l AccessLevel) AtLeast(min AccessLevel) bool {
	return l >= min
}
