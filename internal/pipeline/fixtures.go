package pipeline

import (
	"fmt"
	"time"

	"narrative-radar/internal/domain"
)

// SampleSignals builds a synthetic batch spanning several sources and
// topics, for demo runs against an empty store. Timestamps are spread
// over the three days before now so the direction and velocity paths
// see real day-to-day variation.
func SampleSignals(now time.Time) []domain.Signal {
	day := func(daysAgo int) string {
		return now.AddDate(0, 0, -daysAgo).UTC().Format(time.RFC3339)
	}

	signals := []domain.Signal{
		{
			Source:      "github",
			SignalType:  "trending_repo",
			Name:        "solana-agent-kit",
			Description: "Toolkit for building autonomous AI agents that trade on Solana",
			URL:         "https://github.com/example/solana-agent-kit",
			Stars:       420,
			CreatedAt:   day(12),
			PushedAt:    day(0),
			CollectedAt: day(0),
		},
		{
			Source:      "github",
			SignalType:  "new_repo",
			Name:        "agent-swarm",
			Description: "Multi-agent LLM framework with onchain execution",
			URL:         "https://github.com/example/agent-swarm",
			Stars:       85,
			CreatedAt:   day(3),
			PushedAt:    day(1),
			CollectedAt: day(1),
		},
		{
			Source:      "defillama",
			SignalType:  "tvl_change",
			Name:        "AgentFi",
			Category:    "AI Agents",
			TVL:         42_000_000,
			Change7D:    180,
			CollectedAt: day(0),
		},
		{
			Source:      "birdeye",
			SignalType:  "token_trending",
			Name:        "AI16Z",
			Content:     "AI agent token trending on Solana DEXes",
			URL:         "https://birdeye.so/token/ai16z",
			CollectedAt: day(1),
		},
		{
			Source:      "defillama",
			SignalType:  "tvl_change",
			Name:        "SolRestake",
			Category:    "Liquid Staking",
			Content:     "Restaking protocol with liquid staking derivatives",
			TVL:         120_000_000,
			Change7D:    65,
			CollectedAt: day(2),
		},
		{
			Source:      "defillama_yields",
			SignalType:  "yield_pool",
			Name:        "SolRestake jitoSOL pool",
			Content:     "Liquid staking yield pool, 14% APY",
			TVL:         18_000_000,
			CollectedAt: day(0),
		},
	}

	// A burst of social chatter around AI agents over the last two days.
	for i := 0; i < 4; i++ {
		signals = append(signals, domain.Signal{
			Source:      "twitter_nitter",
			SignalType:  "kol_tweet",
			Name:        fmt.Sprintf("ai agent thread %d", i+1),
			Content:     "everyone is shipping AI agents on Solana right now, the agent meta is real",
			Author:      "@aeyakovenko",
			URL:         fmt.Sprintf("https://x.com/status/%d", 1000+i),
			Engagement:  float64(200 + 150*i),
			CreatedAt:   day(i % 2),
			CollectedAt: day(i % 2),
		})
	}
	return signals
}
