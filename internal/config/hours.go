package config

import (
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// HourList is a normalized set of hours 0-23, kept sorted. In YAML it
// accepts an int, a comma/semicolon-delimited string, or a list of either.
// Malformed tokens are dropped silently: a fully malformed list therefore
// ends up empty, which downstream means "always active". That masking is
// the documented behavior, not an accident to fix here.
type HourList []int

// Contains reports whether hour is in the list. An empty list matches
// every hour.
func (h HourList) Contains(hour int) bool {
	if len(h) == 0 {
		return true
	}
	for _, v := range h {
		if v == hour {
			return true
		}
	}
	return false
}

// Empty reports whether no hour is configured.
func (h HourList) Empty() bool { return len(h) == 0 }

func (h *HourList) UnmarshalYAML(value *yaml.Node) error {
	*h = parseHoursNode(value)
	return nil
}

func parseHoursNode(node *yaml.Node) HourList {
	if node == nil {
		return nil
	}
	seen := make(map[int]bool)
	var collect func(n *yaml.Node)
	collect = func(n *yaml.Node) {
		switch n.Kind {
		case yaml.ScalarNode:
			for _, hour := range parseHourString(n.Value) {
				seen[hour] = true
			}
		case yaml.SequenceNode:
			for _, child := range n.Content {
				collect(child)
			}
		case yaml.AliasNode:
			if n.Alias != nil {
				collect(n.Alias)
			}
		}
	}
	collect(node)
	return sortedHours(seen)
}

// parseHourString splits a raw token on commas and semicolons and keeps
// every piece that parses to an hour 0-23.
func parseHourString(raw string) []int {
	var hours []int
	for _, part := range strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';'
	}) {
		part = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(part), "h"))
		if part == "" {
			continue
		}
		hour, err := strconv.Atoi(part)
		if err != nil || hour < 0 || hour > 23 {
			continue
		}
		hours = append(hours, hour)
	}
	return hours
}

func sortedHours(seen map[int]bool) HourList {
	if len(seen) == 0 {
		return nil
	}
	hours := make(HourList, 0, len(seen))
	for hour := range seen {
		hours = append(hours, hour)
	}
	sort.Ints(hours)
	return hours
}

// TimeframeList is a deduplicated, sorted list of positive chart
// timeframes in hours. Accepts the same YAML shapes as HourList; invalid
// or non-positive entries are dropped silently.
type TimeframeList []int

func (t *TimeframeList) UnmarshalYAML(value *yaml.Node) error {
	*t = parseTimeframesNode(value)
	return nil
}

func parseTimeframesNode(node *yaml.Node) TimeframeList {
	if node == nil {
		return nil
	}
	seen := make(map[int]bool)
	var collect func(n *yaml.Node)
	collect = func(n *yaml.Node) {
		switch n.Kind {
		case yaml.ScalarNode:
			for _, part := range strings.FieldsFunc(n.Value, func(r rune) bool {
				return r == ',' || r == ';'
			}) {
				part = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(part), "h"))
				if part == "" {
					continue
				}
				tf, err := strconv.Atoi(part)
				if err != nil || tf <= 0 {
					continue
				}
				seen[tf] = true
			}
		case yaml.SequenceNode:
			for _, child := range n.Content {
				collect(child)
			}
		case yaml.AliasNode:
			if n.Alias != nil {
				collect(n.Alias)
			}
		}
	}
	collect(node)
	if len(seen) == 0 {
		return nil
	}
	tfs := make(TimeframeList, 0, len(seen))
	for tf := range seen {
		tfs = append(tfs, tf)
	}
	sort.Ints(tfs)
	return tfs
}
