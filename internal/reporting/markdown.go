package reporting

import (
	"fmt"
	"strings"
	"time"

	"narrative-radar/internal/domain"
)

const maxSignalsPerSection = 5

// RenderMarkdown renders the digest as a Markdown document.
func RenderMarkdown(d *Digest) string {
	var sb strings.Builder

	sb.WriteString("# Narrative Radar\n\n")
	sb.WriteString(fmt.Sprintf("Generated %s after %d pipeline runs.\n\n",
		d.GeneratedAt.Format(time.RFC3339), d.TotalPipelineRuns))
	if d.Archive != nil {
		sb.WriteString(fmt.Sprintf("Archive: %d signals across %d runs.\n\n",
			d.Archive.TotalSignalsCollected, d.Archive.TotalRuns))
	}

	if len(d.Narratives) == 0 {
		sb.WriteString("No narratives tracked yet.\n")
		return sb.String()
	}

	for _, v := range d.Narratives {
		writeNarrativeSection(&sb, v)
	}
	return sb.String()
}

func writeNarrativeSection(sb *strings.Builder, v domain.NarrativeView) {
	sb.WriteString(fmt.Sprintf("## %s\n\n", v.Name))
	sb.WriteString(fmt.Sprintf("- Status: %s | Confidence: %s | Direction: %s\n",
		v.Status, v.Confidence, v.Direction))
	sb.WriteString(fmt.Sprintf("- Detected %d times (first %s, last %s)\n",
		v.DetectionCount, v.FirstDetected.Format("2006-01-02"), v.LastDetected.Format("2006-01-02")))
	if len(v.Topics) > 0 {
		sb.WriteString(fmt.Sprintf("- Topics: %s\n", strings.Join(v.Topics, ", ")))
	}
	if v.Velocity != nil && v.Velocity.Trend != "insufficient_data" {
		sb.WriteString(fmt.Sprintf("- Velocity: %+.1f%% (%s)\n", v.Velocity.Velocity, v.Velocity.Trend))
	}
	if v.Explanation != "" {
		sb.WriteString(fmt.Sprintf("\n%s\n", v.Explanation))
	}

	if len(v.SupportingSignals) > 0 {
		sb.WriteString("\nTop signals:\n")
		signals := v.SupportingSignals
		if len(signals) > maxSignalsPerSection {
			signals = signals[:maxSignalsPerSection]
		}
		for _, s := range signals {
			if s.URL != "" {
				sb.WriteString(fmt.Sprintf("- [%s](%s) (%.1f)\n", s.Text, s.URL, s.Score))
			} else {
				sb.WriteString(fmt.Sprintf("- %s (%.1f)\n", s.Text, s.Score))
			}
		}
	}

	if len(v.Ideas) > 0 {
		sb.WriteString("\nBuild ideas:\n")
		for _, idea := range v.Ideas {
			sb.WriteString(fmt.Sprintf("- **%s** (%s): %s\n", idea.Name, idea.Complexity, idea.Description))
		}
	}
	sb.WriteString("\n")
}
