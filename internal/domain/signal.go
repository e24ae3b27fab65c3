package domain

// Signal represents one normalized observation from an external source:
// a repo, a tweet, a TVL reading, an on-chain trend. Collectors produce
// Signals with whatever subset of fields their source provides; every
// consumer treats missing fields as zero values.
type Signal struct {
	Source      string `json:"source"`
	SignalType  string `json:"signal_type,omitempty"`
	Name        string `json:"name,omitempty"`
	Content     string `json:"content,omitempty"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	URL         string `json:"url,omitempty"`
	Author      string `json:"author,omitempty"`

	// Source-specific numeric fields (zero when absent).
	Stars           int     `json:"stars,omitempty"`
	TVL             float64 `json:"tvl,omitempty"`
	Change7D        float64 `json:"change_7d,omitempty"`
	Engagement      float64 `json:"engagement,omitempty"`
	EngagementScore float64 `json:"engagement_score,omitempty"`

	// Timestamps as RFC3339 strings, exactly as collectors emit them.
	// Unparseable values fall back to defaults.
	CreatedAt   string `json:"created_at,omitempty"`
	PushedAt    string `json:"pushed_at,omitempty"`
	CollectedAt string `json:"collected_at,omitempty"`

	// Extra carries per-source extension fields that no core component
	// interprets (kept for downstream consumers and archiving).
	Extra map[string]any `json:"extra,omitempty"`

	// Assigned by the scorer. A Signal is scored once and never mutated after.
	Topics         []string        `json:"topics,omitempty"`
	Score          float64         `json:"score,omitempty"`
	ScoreBreakdown *ScoreBreakdown `json:"score_breakdown,omitempty"`
}

// ScoreBreakdown holds the five named sub-scores, each in [0, 100].
type ScoreBreakdown struct {
	Velocity    float64 `json:"velocity"`
	Convergence float64 `json:"convergence"`
	Novelty     float64 `json:"novelty"`
	Authority   float64 `json:"authority"`
	Quality     float64 `json:"quality"`
}

// sourceAliases maps collector-specific source tags to canonical source types.
var sourceAliases = map[string]string{
	"twitter_nitter":      "twitter",
	"twitter_syndication": "twitter",
	"solana_rpc":          "onchain",
	"solscan":             "onchain",
	"defillama_yields":    "defillama",
}

// NormalizeSource collapses known source aliases to their canonical
// source type. Unknown sources pass through unchanged.
func NormalizeSource(source string) string {
	if canonical, ok := sourceAliases[source]; ok {
		return canonical
	}
	return source
}

// verifiedSources are analytics sources whose data is machine-measured
// rather than self-reported. Used by the quality sub-score.
var verifiedSources = map[string]bool{
	"solana_rpc":       true,
	"solscan":          true,
	"defillama":        true,
	"defillama_yields": true,
	"birdeye":          true,
}

// IsVerifiedSource reports whether the raw source tag is a verified
// analytics source.
func IsVerifiedSource(source string) bool {
	return verifiedSources[source]
}
