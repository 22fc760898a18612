package footprint

import "sort"

type Scored struct {
	UserUID string
	Score   float64
	Rank    int
}

// Rank sorts entries by descending score and assigns competition ranks
// (1, 1, 3). Ties are ordered by user uid.
func Rank(entries []Scored) []Scored {
	out := make([]Scored, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].UserUID < out[j].UserUID
	})
	for i := range out {
		if i > 0 && out[i].Score == out[i-1].Score {
			out[i].Rank = out[i-1].Rank
			continue
		}
		out[i].Rank = i + 1
	}
	return out
}
