package scoring

import (
	"strings"
	"time"

	"narrative-radar/internal/domain"
)

// velocity starts from a 50 baseline and layers temporal acceleration over
// source-specific growth proxies. Capped at [0, 100].
func (s *Scorer) velocity(sig *domain.Signal, bc *batchContext) float64 {
	score := 50.0

	// Batch-level acceleration: today's count vs. the mean daily count.
	if len(bc.dayCounts) > 0 {
		total := 0
		for _, c := range bc.dayCounts {
			total += c
		}
		mean := float64(total) / float64(len(bc.dayCounts))
		if mean > 0 {
			ratio := float64(bc.dayCounts[bc.today]) / mean
			switch {
			case ratio > 2.0:
				score += 25
			case ratio > 1.5:
				score += 15
			case ratio < 0.8:
				score -= 10
			}
		}
	}

	// Per-topic acceleration using the signal's best topic.
	if r := bestTopicRatio(sig, bc); r > 2.0 {
		score += 15
	} else if r > 1.5 {
		score += 8
	}

	srcType := domain.NormalizeSource(sig.Source)

	// DeFi TVL swings, either direction.
	if srcType == "defillama" && sig.Change7D != 0 {
		change := sig.Change7D
		if change < 0 {
			change = -change
		}
		switch {
		case change > 50:
			score += 40
		case change > 20:
			score += 25
		case change > 10:
			score += 15
		}
	}

	// On-chain and market trending signal types.
	if strings.Contains(sig.SignalType, "trending") {
		score += 25
	} else if sig.SignalType == "network_activity" {
		score += 10
	}

	// Social engagement.
	switch {
	case sig.Engagement > 100:
		score += 30
	case sig.Engagement > 50:
		score += 20
	case sig.Engagement > 10:
		score += 10
	}
	if sig.SignalType == "kol_tweet" {
		score += 10
	}

	if sig.Source == "defillama_yields" {
		score += 15
	}

	if srcType == "github" {
		switch {
		case sig.Stars > 100:
			score += 20
		case sig.Stars > 50:
			score += 12
		case sig.Stars > 10:
			score += 5
		}
	}

	return clamp100(score)
}

// bestTopicRatio returns the highest (today / mean daily) ratio among the
// signal's topics, or 0 when no topic has bucket data.
func bestTopicRatio(sig *domain.Signal, bc *batchContext) float64 {
	best := 0.0
	for _, t := range sig.Topics {
		days := bc.topicDayCounts[t]
		if len(days) == 0 {
			continue
		}
		total := 0
		for _, c := range days {
			total += c
		}
		mean := float64(total) / float64(len(days))
		if mean == 0 {
			continue
		}
		if r := float64(days[bc.today]) / mean; r > best {
			best = r
		}
	}
	return best
}

// convergence is a step function of the maximum distinct-source count among
// the signal's topics, with a bonus for cross-source entities.
func (s *Scorer) convergence(sig *domain.Signal, bc *batchContext) float64 {
	maxSources := 0
	for _, t := range sig.Topics {
		if n := len(bc.topicSources[t]); n > maxSources {
			maxSources = n
		}
	}

	var score float64
	switch {
	case maxSources >= 4:
		score = 95
	case maxSources == 3:
		score = 75
	case maxSources == 2:
		score = 50
	default:
		score = 20
	}

	if bc.isCrossSourceEntity(sig) {
		score += 20
	}

	return clamp100(score)
}

// novelty scores creation recency, with a bonus for brand-new repos.
func (s *Scorer) novelty(sig *domain.Signal) float64 {
	score := 50.0

	if created, ok := parseTime(sig.CreatedAt); ok {
		daysOld := int(s.clock().Sub(created).Hours() / 24)
		switch {
		case daysOld < 7:
			score = 90
		case daysOld < 14:
			score = 70
		case daysOld < 30:
			score = 50
		default:
			score = 30
		}
	}

	if sig.SignalType == "new_repo" {
		score += 15
	}

	return clamp100(score)
}

// authority maps each source to a credibility score from its own quality
// proxies (stars, engagement, TVL).
func (s *Scorer) authority(sig *domain.Signal) float64 {
	score := 50.0

	switch domain.NormalizeSource(sig.Source) {
	case "github":
		switch {
		case sig.Stars > 500:
			score = 90
		case sig.Stars > 100:
			score = 70
		case sig.Stars > 20:
			score = 60
		}
		if pushed, ok := parseTime(sig.PushedAt); ok {
			age := s.clock().Sub(pushed)
			if age < 7*24*time.Hour {
				score += 15
			} else if age < 30*24*time.Hour {
				score += 5
			}
		}

	case "twitter":
		if sig.EngagementScore > 0 {
			switch {
			case sig.EngagementScore > 500:
				score = 95
			case sig.EngagementScore > 200:
				score = 85
			case sig.EngagementScore > 50:
				score = 70
			default:
				score = 55
			}
		} else if sig.SignalType == "kol_tweet" {
			score = 80
		} else {
			score = 55
		}
		if isKnownKOL(sig.Author) {
			score += 15
		}

	case "reddit":
		switch {
		case sig.Engagement > 100:
			score = 75
		case sig.Engagement > 30:
			score = 60
		}
		if strings.Contains(sig.SignalType, "dev") {
			score += 10
		}

	case "defillama":
		if sig.Source == "defillama_yields" {
			score = 70
		} else {
			switch {
			case sig.TVL > 100_000_000:
				score = 90
			case sig.TVL > 10_000_000:
				score = 70
			}
		}

	case "onchain":
		if sig.Source == "solscan" {
			score = 70
		} else {
			score = 85
		}
	}

	return clamp100(score)
}

// qualityRawMax is the maximum attainable raw quality score before
// normalization to 0-100.
const qualityRawMax = 65.0

// quality is an additive completeness score normalized to 0-100: evidence
// link, engagement data, substantive content, verified source, and
// cross-source corroboration.
func (s *Scorer) quality(sig *domain.Signal, bc *batchContext) float64 {
	raw := 0.0

	if sig.URL != "" {
		raw += 10
	}
	if sig.Engagement > 0 || sig.EngagementScore > 0 {
		raw += 10
	}
	if len(sig.Content) > 100 {
		raw += 10
	}
	if domain.IsVerifiedSource(sig.Source) {
		raw += 15
	} else if domain.NormalizeSource(sig.Source) == "github" {
		raw += 10
	}
	if bc.isCrossSourceEntity(sig) {
		raw += 20
	}

	return clamp100(raw / qualityRawMax * 100)
}

// parseTime parses collector timestamps. RFC3339 first, then a
// bare date. Unparseable values report !ok and contribute nothing.
func parseTime(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
