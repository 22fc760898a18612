// Package footprint reduces persisted activity records into the totals,
// category shares, averages and streak counters shown on the dashboard.
package footprint

import (
	"math"
	"sort"
	"time"

	"github.com/shinyyama/trace-green-backend/internal/emission"
)

// Record is the slice of an activity record the reducers need.
type Record struct {
	Category emission.Category
	CarbonKg float64
	LoggedAt time.Time
}

type CategoryShare struct {
	Category emission.Category `json:"category"`
	TotalKg  float64           `json:"totalKg"`
	Percent  float64           `json:"percent"`
}

type Summary struct {
	Days           int             `json:"days"`
	Count          int             `json:"count"`
	TotalKg        float64         `json:"totalKg"`
	DailyAverageKg float64         `json:"dailyAverageKg"`
	Shares         []CategoryShare `json:"shares"`
}

// Summarize totals records already filtered to a window of the given number of
// days. Categories without activity are left out of Shares.
func Summarize(records []Record, days int) Summary {
	if days < 1 {
		days = 1
	}
	// records carry values rounded to cents; summing integer cents keeps the
	// result exact and independent of record order
	cents := make(map[emission.Category]int64)
	var totalCents int64
	for _, r := range records {
		c := int64(math.Round(r.CarbonKg * 100))
		cents[r.Category] += c
		totalCents += c
	}
	total := float64(totalCents) / 100

	s := Summary{
		Days:           days,
		Count:          len(records),
		TotalKg:        emission.Round2(total),
		DailyAverageKg: emission.Round2(total / float64(days)),
		Shares:         shares(cents, totalCents),
	}
	return s
}

func shares(cents map[emission.Category]int64, totalCents int64) []CategoryShare {
	out := make([]CategoryShare, 0, len(cents))
	if totalCents <= 0 {
		return out
	}
	for c, v := range cents {
		if v == 0 {
			continue
		}
		out = append(out, CategoryShare{
			Category: c,
			TotalKg:  float64(v) / 100,
			Percent:  math.Round(float64(v)/float64(totalCents)*1000) / 10,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalKg != out[j].TotalKg {
			return out[i].TotalKg > out[j].TotalKg
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// GoalProgress is the percentage of a carbon budget already used.
func GoalProgress(totalKg, goalKg float64) float64 {
	if goalKg <= 0 {
		return 0
	}
	return math.Round(totalKg/goalKg*1000) / 10
}

// TopCategory returns the category with the largest share, if any.
func (s Summary) TopCategory() (emission.Category, bool) {
	if len(s.Shares) == 0 {
		return "", false
	}
	return s.Shares[0].Category, true
}
