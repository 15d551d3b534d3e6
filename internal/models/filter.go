package models

import (
	"fmt"
	"strings"
)

// SortKey selects the ordering applied by the catalog engine.
type SortKey int

const (
	SortRecent    SortKey = iota // most recently updated first (default)
	SortName                     // name ascending, locale-aware
	SortItemCount                // item count descending
	SortCreated                  // creation time descending
	SortUpdated                  // update time descending
)

var sortKeyNames = []string{"recent", "name", "items", "created", "updated"}

func (k SortKey) String() string {
	if int(k) < 0 || int(k) >= len(sortKeyNames) {
		return ""
	}
	return sortKeyNames[k]
}

// Next cycles through the sort orders.
func (k SortKey) Next() SortKey {
	return SortKey((int(k) + 1) % len(sortKeyNames))
}

// ParseSortKey maps a name such as "name" or "items" to a [SortKey]. Empty input yields [SortRecent].
func ParseSortKey(s string) (SortKey, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return SortRecent, nil
	}
	for i, name := range sortKeyNames {
		if name == s {
			return SortKey(i), nil
		}
	}
	return SortRecent, fmt.Errorf("unknown sort key %q (want one of %s)", s, strings.Join(sortKeyNames, ", "))
}

// Filter parameterizes the catalog engine.
//
// Zero values disable each stage: empty Search, nil Visibility and empty Tags keep every list.
type Filter struct {
	Search     string
	Visibility *bool
	Tags       []string
	Sort       SortKey
}
