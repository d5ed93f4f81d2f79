package analysis

import (
	"math"
	"sort"

	"github.com/KaramelBytes/loomstat/internal/dataset"
)

// RankEntry is one ranked row.
type RankEntry struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
	Row   int     `json:"row"` // 1-based data row
}

// Rank returns the n highest and n lowest rows by valueCol, dropping rows
// missing either column. Equal values keep row order in both lists.
func Rank(t *dataset.Table, keyCol, valueCol string, n int) (top, bottom []RankEntry, err error) {
	if err := dataset.RequirePositive("n", n); err != nil {
		return nil, nil, err
	}
	keys, err := t.Strings(keyCol)
	if err != nil {
		return nil, nil, err
	}
	vals, err := t.Floats(valueCol)
	if err != nil {
		return nil, nil, err
	}
	var rows []RankEntry
	for i, v := range vals {
		if keys[i] == "" || math.IsNaN(v) {
			continue
		}
		rows = append(rows, RankEntry{Key: keys[i], Value: v, Row: i + 1})
	}

	top = append([]RankEntry(nil), rows...)
	sort.SliceStable(top, func(i, j int) bool { return top[i].Value > top[j].Value })
	bottom = append([]RankEntry(nil), rows...)
	sort.SliceStable(bottom, func(i, j int) bool { return bottom[i].Value < bottom[j].Value })
	if len(rows) > n {
		top, bottom = top[:n], bottom[:n]
	}
	return top, bottom, nil
}
