package storage

import (
	"math"
	"sort"

	"narrative-radar/internal/domain"
)

// Velocity trend thresholds, in percent.
const (
	velocityAccelerating = 20
	velocityDecelerating = -20
)

// ComputeTopicVelocity derives a topic's growth profile from its daily
// signal counts. Fewer than two data points is insufficient data. Velocity
// compares the sum of the second half of the (date-ordered) window against
// the first half, as a percentage of the first half; a zero first half with
// activity in the second half reads as 100%.
func ComputeTopicVelocity(daily map[string]int) *domain.TopicVelocity {
	if len(daily) < 2 {
		return &domain.TopicVelocity{
			Trend:       "insufficient_data",
			DataPoints:  len(daily),
			DailyCounts: daily,
		}
	}

	days := make([]string, 0, len(daily))
	for d := range daily {
		days = append(days, d)
	}
	sort.Strings(days)

	firstHalf, secondHalf := 0, 0
	for i, d := range days {
		if i < len(days)/2 {
			firstHalf += daily[d]
		} else {
			secondHalf += daily[d]
		}
	}

	var velocity float64
	switch {
	case firstHalf > 0:
		velocity = float64(secondHalf-firstHalf) / float64(firstHalf) * 100
	case secondHalf > 0:
		velocity = 100
	}
	velocity = math.Round(velocity*10) / 10

	trend := "stable"
	if velocity > velocityAccelerating {
		trend = "accelerating"
	} else if velocity < velocityDecelerating {
		trend = "decelerating"
	}

	return &domain.TopicVelocity{
		Velocity:    velocity,
		Trend:       trend,
		DataPoints:  len(daily),
		DailyCounts: daily,
	}
}
