package common

import (
	"strconv"
	"time"

	"github.com/leapstack-labs/goadmin/pkg/core"
)

// Itoa converts an unsigned id to a string.
func Itoa[T ~int | ~int64 | ~uint](n T) string {
	return strconv.FormatInt(int64(n), 10)
}

// StatusLabel returns a human-readable label for an account status.
func StatusLabel(s core.Status) string {
	switch s {
	case core.StatusNormal:
		return "Enabled"
	case core.StatusDisabled:
		return "Disabled"
	default:
		return "-"
	}
}

// TimeLabel formats a timestamp the way the backend does.
func TimeLabel(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04:05")
}

// LenStr returns the length of a NavNode slice as a formatted string like "(5)".
func LenStr(nodes []NavNode) string {
	return "(" + Itoa(len(nodes)) + ")"
}
