package core

import "strings"

// UnknownKey is the group key for absent, null or blank values.
const UnknownKey = "Unknown"

// GroupCount is the number of rows sharing one group key.
type GroupCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// GroupResult lists group counts in first-seen key order.
type GroupResult []GroupCount

// Total returns the sum of all counts.
func (g GroupResult) Total() int {
	n := 0
	for _, gc := range g {
		n += gc.Count
	}
	return n
}

// GroupKey normalizes the value of field in row to a group key.
// Only the emptiness check trims; the returned key is the raw value.
func GroupKey(row Row, field string) string {
	c, ok := row.Lookup(field)
	if !ok || !c.Valid || strings.TrimSpace(c.Value) == "" {
		return UnknownKey
	}
	return c.Value
}

// GroupBy counts rows of t by the normalized value of field.
// Every row lands in exactly one group.
func GroupBy(t Table, field string) GroupResult {
	out := make(GroupResult, 0)
	index := make(map[string]int)
	for _, row := range t {
		key := GroupKey(row, field)
		if i, ok := index[key]; ok {
			out[i].Count++
			continue
		}
		index[key] = len(out)
		out = append(out, GroupCount{Key: key, Count: 1})
	}
	return out
}
