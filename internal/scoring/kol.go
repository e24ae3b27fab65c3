package scoring

import "strings"

// knownKOLs is the allow-list of monitored ecosystem voices. Tweets from
// these handles get an authority bonus regardless of measured engagement.
var knownKOLs = map[string]bool{
	"0xmert_":         true,
	"aeyakovenko":     true,
	"rajgokal":        true,
	"armaboronnikov":  true,
	"shaboronnikov":   true,
	"jupiterexchange": true,
	"driftprotocol":   true,
	"heaboronnikov":   true,
	"solaboronnikov":  true,
}

// isKnownKOL reports whether the author handle is in the allow-list.
// Matching is case-insensitive and tolerates a leading @.
func isKnownKOL(author string) bool {
	handle := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(author), "@"))
	return knownKOLs[handle]
}
