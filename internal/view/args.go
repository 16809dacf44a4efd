package view

import (
	"strconv"
	"strings"

	util "github.com/spec-kit/support-api/pkg/util"
)

// ParseLimit validates the `limit` query value as a positive integer cap.
func ParseLimit(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, util.NewInvalidArgument("invalid <limit> kwarg: must be a positive integer", nil)
	}
	return limit, nil
}

// ResolveOrdering applies the `order` query value against the resource's
// default ordering: the named field is promoted to primary sort key, the
// rest keep their relative order. A leading `-` is accepted as the promote
// marker and does not reverse direction.
func ResolveOrdering(raw string, defaults []string) ([]string, error) {
	if raw == "" {
		return defaults, nil
	}
	field := strings.TrimPrefix(raw, "-")

	ordering := make([]string, len(defaults))
	copy(ordering, defaults)
	for i, candidate := range ordering {
		if candidate == field {
			ordering[0], ordering[i] = ordering[i], ordering[0]
			return ordering, nil
		}
	}
	return nil, util.NewInvalidChoice("order", raw, defaults)
}
