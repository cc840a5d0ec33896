package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/leapstack-labs/goadmin/pkg/core"
)

// parseID parses a single positive resource id.
func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(s), 10, 0)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return uint(id), nil
}

// parseIDs parses ids given as separate args and/or comma lists.
// No args yields an empty, non-nil slice.
func parseIDs(args []string) ([]uint, error) {
	ids := []uint{}
	for _, arg := range args {
		for _, part := range strings.Split(arg, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			id, err := parseID(part)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// parseStatus accepts "normal"/"disabled" or the backend codes 1/2.
// An empty string means unset.
func parseStatus(s string) (core.Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return 0, nil
	case "1", "normal", "enabled":
		return core.StatusNormal, nil
	case "2", "disabled":
		return core.StatusDisabled, nil
	default:
		return 0, fmt.Errorf("invalid status %q (want normal|disabled)", s)
	}
}

func uintsToStrings(ids []uint) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = strconv.FormatUint(uint64(id), 10)
	}
	return out
}

func itoa(n uint) string {
	return strconv.FormatUint(uint64(n), 10)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}
