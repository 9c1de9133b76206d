package builtin

import (
	"sort"
	"strings"

	"salesetl/pkg/records"
)

// DeDup collapses duplicate rows by a configured key and chooses a winner
// according to a policy:
//
//   - "keep-first"   : keep the earliest occurrence
//   - "keep-last"    : keep the latest occurrence (default)
//   - "most-complete": keep the row that has the most non-empty fields;
//     ties break by "keep-last"
//
// A row's key is the concatenation of its key fields rendered as strings
// (nil -> "\x00"), so nil keys collapse together. When a key field does not
// exist in the Set, no row can be keyed and the input passes through.
type DeDup struct {
	// Keys are the field names that form the business key, e.g. ["customer_id"].
	Keys []string

	// Policy selects the winner among duplicates: "keep-first", "keep-last",
	// or "most-complete".
	Policy string
}

// Apply returns a new Set holding only the winning row for each key, in the
// original relative order of the winners, and the number of rows removed.
func (d DeDup) Apply(in *records.Set) (*records.Set, int) {
	if in.Len() == 0 || len(d.Keys) == 0 {
		return in.Clone(), 0
	}
	idx := make([]int, len(d.Keys))
	for i, k := range d.Keys {
		idx[i] = in.Index(k)
		if idx[i] < 0 {
			return in.Clone(), 0
		}
	}

	policy := strings.ToLower(strings.TrimSpace(d.Policy))
	if policy == "" {
		policy = "keep-last"
	}

	type slot struct {
		index int
		score int
	}
	rows := in.Rows()
	winners := make(map[string]slot, len(rows))

	keyOf := func(row []any) string {
		var b strings.Builder
		for i, c := range idx {
			if i > 0 {
				b.WriteByte('\x1f')
			}
			if row[c] == nil {
				b.WriteByte('\x00')
				continue
			}
			b.WriteString(records.String(row[c]))
		}
		return b.String()
	}
	scoreOf := func(row []any) int {
		score := 0
		for _, v := range row {
			if !records.IsMissing(v) {
				score++
			}
		}
		return score
	}

	for i, row := range rows {
		key := keyOf(row)
		switch policy {
		case "keep-first":
			if _, exists := winners[key]; !exists {
				winners[key] = slot{index: i}
			}
		case "most-complete":
			s := slot{index: i, score: scoreOf(row)}
			if prev, exists := winners[key]; !exists || s.score >= prev.score {
				winners[key] = s
			}
		default:
			winners[key] = slot{index: i}
		}
	}

	keep := make([]int, 0, len(winners))
	for _, s := range winners {
		keep = append(keep, s.index)
	}
	sort.Ints(keep)
	want := make(map[int]struct{}, len(keep))
	for _, i := range keep {
		want[i] = struct{}{}
	}
	out := in.Filter(func(row int) bool {
		_, ok := want[row]
		return ok
	})
	return out, in.Len() - out.Len()
}
