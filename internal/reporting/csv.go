package reporting

import (
	"fmt"
	"strings"
)

// RenderCSV renders the digest's narratives as one CSV row each, for
// spreadsheet triage.
func RenderCSV(d *Digest) string {
	var sb strings.Builder

	sb.WriteString("name,status,confidence,direction,detection_count,first_detected,last_detected,topics\n")
	for _, v := range d.Narratives {
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%s,%d,%s,%s,%s\n",
			csvField(v.Name),
			v.Status,
			v.Confidence,
			v.Direction,
			v.DetectionCount,
			v.FirstDetected.Format("2006-01-02"),
			v.LastDetected.Format("2006-01-02"),
			csvField(strings.Join(v.Topics, ";")),
		))
	}
	return sb.String()
}

// csvField quotes a value when it contains a delimiter or quote.
func csvField(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
