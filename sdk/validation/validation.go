// Package validation holds small conversion and pointer helpers shared by
// the bridge marshalling layer.
package validation

import "time"

func StringPtr(s string) *string {
	return &s
}

func TimePtr(t time.Time) *time.Time {
	return &t
}
