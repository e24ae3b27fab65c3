// Package topics tags signals with ecosystem topic keywords.
package topics

import (
	"strings"

	"narrative-radar/internal/domain"
)

// topicKeywords is the static tagging table. A topic matches when any of
// its keywords appears as a substring of the signal's searchable text.
// Iteration uses topicOrder so output ordering is deterministic.
var topicKeywords = map[string][]string{
	"ai_agents":      {"ai agent", "agent", "autonomous", "llm", "chatbot", "eliza"},
	"defi":           {"defi", "lending", "borrowing", "yield", "amm", "dex", "swap", "liquidity"},
	"payments":       {"payment", "pay", "transfer", "remittance", "stablecoin"},
	"nft":            {"nft", "collectible", "metaplex", "digital art"},
	"gaming":         {"game", "gaming", "play-to-earn", "gamefi"},
	"depin":          {"depin", "physical", "iot", "sensor", "infrastructure"},
	"social":         {"social", "community", "messaging", "chat"},
	"privacy":        {"privacy", "zero-knowledge", "zk", "confidential"},
	"rwa":            {"rwa", "real world", "tokenized", "real-world asset"},
	"trading":        {"trading", "perp", "perpetual", "futures", "options", "copy-trad"},
	"staking":        {"staking", "stake", "liquid staking", "validator"},
	"bridge":         {"bridge", "cross-chain", "interop", "wormhole"},
	"identity":       {"identity", "did", "credential", "reputation"},
	"memecoins":      {"meme", "memecoin", "pump.fun", "fair launch"},
	"infrastructure": {"infra", "rpc", "indexer", "sdk", "framework", "tooling"},
}

// topicOrder fixes the iteration order of the tagging table.
var topicOrder = []string{
	"ai_agents", "defi", "payments", "nft", "gaming", "depin", "social",
	"privacy", "rwa", "trading", "staking", "bridge", "identity",
	"memecoins", "infrastructure",
}

// FallbackTopic is assigned when no keyword matches.
const FallbackTopic = "other"

// Extract returns the topic tags for a signal, or ["other"] if none match.
// Deterministic and side-effect-free; missing fields contribute nothing.
func Extract(s *domain.Signal) []string {
	text := strings.ToLower(strings.Join([]string{
		s.Name,
		s.Description,
		s.Content,
		s.Category,
		strings.Join(s.Topics, " "),
	}, " "))

	var matched []string
	for _, topic := range topicOrder {
		for _, kw := range topicKeywords[topic] {
			if strings.Contains(text, kw) {
				matched = append(matched, topic)
				break
			}
		}
	}

	if len(matched) == 0 {
		return []string{FallbackTopic}
	}
	return matched
}
