package detect

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"narrative-radar/internal/domain"
	"narrative-radar/internal/topics"
)

const (
	// minSignalScore filters weak signals out of narrative grouping.
	minSignalScore = 40.0

	// maxNarratives bounds how many proposals one run can produce.
	maxNarratives = 7

	highCountThreshold   = 10
	mediumCountThreshold = 5
)

// RuleBased is the no-LLM detector: it groups scored signals by topic and
// promotes the strongest groups to narrative proposals. Confidence comes
// from group size and source diversity, direction from how the group's
// activity distributes over days.
type RuleBased struct {
	logger *log.Logger
}

var _ NarrativeDetector = (*RuleBased)(nil)

// NewRuleBased creates the fallback detector.
func NewRuleBased() *RuleBased {
	return &RuleBased{
		logger: log.New(os.Stdout, "[detect] ", log.LstdFlags),
	}
}

// WithLogger overrides the default logger.
func (d *RuleBased) WithLogger(logger *log.Logger) *RuleBased {
	d.logger = logger
	return d
}

type topicGroup struct {
	topic   string
	signals []domain.Signal
	sources map[string]bool
}

// Detect groups signals above the score floor by topic and converts the
// largest groups into proposals. Clusters and hints are advisory inputs for
// the LLM detector; the rule-based path derives everything from the signals.
func (d *RuleBased) Detect(_ context.Context, in Input) ([]domain.NarrativeProposal, error) {
	groups := make(map[string]*topicGroup)
	coOccurrences := 0

	for _, s := range in.Signals {
		if s.Score <= minSignalScore {
			continue
		}
		for _, topic := range s.Topics {
			if topic == topics.FallbackTopic {
				continue
			}
			g, ok := groups[topic]
			if !ok {
				g = &topicGroup{topic: topic, sources: make(map[string]bool)}
				groups[topic] = g
			}
			g.signals = append(g.signals, s)
			g.sources[domain.NormalizeSource(s.Source)] = true
		}
		if n := len(s.Topics); n > 1 {
			coOccurrences += n * (n - 1) / 2
		}
	}

	ordered := make([]*topicGroup, 0, len(groups))
	for _, g := range groups {
		ordered = append(ordered, g)
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		if len(ordered[i].signals) != len(ordered[j].signals) {
			return len(ordered[i].signals) > len(ordered[j].signals)
		}
		return ordered[i].topic < ordered[j].topic
	})
	if len(ordered) > maxNarratives {
		ordered = ordered[:maxNarratives]
	}

	proposals := make([]domain.NarrativeProposal, 0, len(ordered))
	for _, g := range ordered {
		proposals = append(proposals, d.propose(g))
	}

	d.logger.Printf("rule-based detection: %d proposals from %d signals (%d topic co-occurrences)",
		len(proposals), len(in.Signals), coOccurrences)
	return proposals, nil
}

func (d *RuleBased) propose(g *topicGroup) domain.NarrativeProposal {
	name := titleCase(g.topic)
	confidence := groupConfidence(len(g.signals), len(g.sources))
	direction := groupDirection(g.signals)

	supporting := make([]domain.SupportingSignal, 0, 5)
	var references []string
	seenRefs := make(map[string]bool)
	for _, s := range g.signals {
		if len(supporting) < 5 {
			supporting = append(supporting, domain.SupportingSignal{
				Text:   signalText(s),
				URL:    s.URL,
				Source: s.Source,
				Score:  s.Score,
			})
		}
		if s.URL != "" && !seenRefs[s.URL] && len(references) < 5 {
			seenRefs[s.URL] = true
			references = append(references, s.URL)
		}
	}

	return domain.NarrativeProposal{
		Name:       name,
		Confidence: confidence,
		Direction:  direction,
		Explanation: fmt.Sprintf("%d signals from %d distinct sources converge on %s in the current window.",
			len(g.signals), len(g.sources), name),
		TrendEvidence:     trendEvidence(g.signals),
		Topics:            []string{g.topic},
		SupportingSignals: supporting,
		Ideas:             ideasForTopic(g.topic),
		References:        references,
	}
}

func groupConfidence(count, diversity int) domain.Confidence {
	switch {
	case count >= highCountThreshold && diversity >= 2:
		return domain.ConfidenceHigh
	case count >= mediumCountThreshold || diversity >= 2:
		return domain.ConfidenceMedium
	default:
		return domain.ConfidenceLow
	}
}

// groupDirection reads the group's day distribution: one active day means
// the narrative just appeared, more signals in the later half of the window
// means it is picking up speed.
func groupDirection(signals []domain.Signal) domain.Direction {
	counts := make(map[string]int)
	for _, s := range signals {
		if day := signalDay(s); day != "" {
			counts[day]++
		}
	}
	if len(counts) <= 1 {
		return domain.DirectionEmerging
	}

	days := make([]string, 0, len(counts))
	for day := range counts {
		days = append(days, day)
	}
	sort.Strings(days)

	mid := len(days) / 2
	earlier, later := 0, 0
	for i, day := range days {
		if i < mid {
			earlier += counts[day]
		} else {
			later += counts[day]
		}
	}
	if later > earlier {
		return domain.DirectionAccelerating
	}
	return domain.DirectionStabilizing
}

func trendEvidence(signals []domain.Signal) string {
	days := make(map[string]bool)
	for _, s := range signals {
		if day := signalDay(s); day != "" {
			days[day] = true
		}
	}
	if len(days) == 0 {
		return fmt.Sprintf("%d signals in the current collection window.", len(signals))
	}
	return fmt.Sprintf("%d signals spread across %d active days.", len(signals), len(days))
}

// signalDay extracts the date prefix of a signal's timestamp, preferring
// collection time over creation time.
func signalDay(s domain.Signal) string {
	for _, ts := range []string{s.CollectedAt, s.CreatedAt} {
		if len(ts) >= 10 {
			return ts[:10]
		}
	}
	return ""
}

func signalText(s domain.Signal) string {
	if s.Name != "" {
		return s.Name
	}
	if s.Content != "" {
		// Truncate on a rune boundary; tweet content is frequently multi-byte.
		if runes := []rune(s.Content); len(runes) > 120 {
			return string(runes[:120])
		}
		return s.Content
	}
	return s.Description
}

// titleCase renders a topic key as a narrative name ("ai_agents" → "Ai Agents").
func titleCase(topic string) string {
	words := strings.Split(topic, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
