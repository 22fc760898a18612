package footprint

import "time"

// StreakState mirrors the stored streak counter of a user.
type StreakState struct {
	Current int
	Longest int
	LastDay *time.Time
}

// AdvanceStreak applies one logged activity on the given day.
func AdvanceStreak(s StreakState, at time.Time) StreakState {
	day := Day(at)
	if s.LastDay == nil {
		s.Current = 1
	} else {
		last := Day(*s.LastDay)
		switch {
		case !day.After(last):
			// same day or a backdated entry
			return s
		case day.Equal(last.AddDate(0, 0, 1)):
			s.Current++
		default:
			s.Current = 1
		}
	}
	s.LastDay = &day
	if s.Current > s.Longest {
		s.Longest = s.Current
	}
	return s
}

// EffectiveStreak is the streak as displayed on the given day: a counter whose
// last day is older than yesterday has lapsed.
func EffectiveStreak(s StreakState, today time.Time) int {
	if s.LastDay == nil {
		return 0
	}
	if Day(*s.LastDay).Before(Day(today).AddDate(0, 0, -1)) {
		return 0
	}
	return s.Current
}
