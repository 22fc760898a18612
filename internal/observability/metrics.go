package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	activitiesLogged = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trace_green",
		Subsystem: "activities",
		Name:      "logged_total",
		Help:      "Activities logged, by category.",
	}, []string{"category"})
	carbonLogged = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trace_green",
		Subsystem: "activities",
		Name:      "carbon_kg_total",
		Help:      "Carbon-equivalent kilograms logged, by category.",
	}, []string{"category"})
	badgesUnlocked = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "trace_green",
		Subsystem: "gamification",
		Name:      "badges_unlocked_total",
		Help:      "Badges unlocked by users.",
	})
	challengesCompleted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "trace_green",
		Subsystem: "gamification",
		Name:      "challenges_completed_total",
		Help:      "Challenge participations completed.",
	})
	redemptions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trace_green",
		Subsystem: "rewards",
		Name:      "redemptions_total",
		Help:      "Reward redemption state changes, by status.",
	}, []string{"status"})
	sideEffectFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trace_green",
		Subsystem: "side_effects",
		Name:      "failures_total",
		Help:      "Best-effort side effects that failed, by kind.",
	}, []string{"kind"})
)

func init() {
	prometheus.MustRegister(
		activitiesLogged,
		carbonLogged,
		badgesUnlocked,
		challengesCompleted,
		redemptions,
		sideEffectFailures,
	)
}

func RecordActivity(category string, carbonKg float64) {
	activitiesLogged.WithLabelValues(category).Inc()
	if carbonKg > 0 {
		carbonLogged.WithLabelValues(category).Add(carbonKg)
	}
}

func RecordBadgeUnlocked() {
	badgesUnlocked.Inc()
}

func RecordChallengeCompleted() {
	challengesCompleted.Inc()
}

func RecordRedemption(status string) {
	redemptions.WithLabelValues(status).Inc()
}

// RecordSideEffectFailure counts a failed best-effort step such as "event",
// "notification" or "badge".
func RecordSideEffectFailure(kind string) {
	sideEffectFailures.WithLabelValues(kind).Inc()
}
