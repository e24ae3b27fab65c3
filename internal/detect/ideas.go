package detect

import "narrative-radar/internal/domain"

// ideaTemplates are canned build ideas per topic, used when no LLM is
// available to generate narrative-specific ones.
var ideaTemplates = map[string][]domain.Idea{
	"defi": {
		{
			Name:         "Yield Radar",
			Description:  "Dashboard that surfaces newly listed pools with abnormal yield growth",
			TargetUser:   "Yield farmers rotating capital weekly",
			Integrations: []string{"DefiLlama", "Jupiter"},
			Complexity:   "WEEKS",
			WhyItWins:    "Catches pools during the growth phase instead of after",
		},
		{
			Name:         "Pool Health Alerts",
			Description:  "Alerting on TVL drawdowns and liquidity migrations for tracked pools",
			TargetUser:   "LPs with positions across multiple protocols",
			Integrations: []string{"DefiLlama", "Birdeye"},
			Complexity:   "DAYS",
			WhyItWins:    "Reduces time-to-exit when a pool starts bleeding",
		},
	},
	"ai_agents": {
		{
			Name:         "Agent Registry",
			Description:  "Directory of on-chain trading agents with verified performance history",
			TargetUser:   "Traders evaluating automated strategies",
			Integrations: []string{"Birdeye", "Solscan"},
			Complexity:   "WEEKS",
			WhyItWins:    "No trusted performance source exists for agent strategies",
		},
	},
	"trading": {
		{
			Name:         "Momentum Screener",
			Description:  "Screener combining volume spikes with social mention velocity",
			TargetUser:   "Active traders hunting early momentum",
			Integrations: []string{"Birdeye", "Jupiter"},
			Complexity:   "DAYS",
			WhyItWins:    "Combines on-chain and social signals most screeners keep separate",
		},
	},
	"staking": {
		{
			Name:         "Restake Router",
			Description:  "Comparison and routing layer across liquid staking providers",
			TargetUser:   "Holders optimizing staking yield",
			Integrations: []string{"Jupiter", "Sanctum"},
			Complexity:   "WEEKS",
			WhyItWins:    "Yield spread between providers is invisible to most holders",
		},
	},
	"memecoins": {
		{
			Name:         "Launch Survival Tracker",
			Description:  "Tracks which launchpad tokens retain holders past the first week",
			TargetUser:   "Traders filtering launchpad noise",
			Integrations: []string{"Birdeye", "Solscan"},
			Complexity:   "DAYS",
			WhyItWins:    "Survival rate is a better filter than launch volume",
		},
	},
}

// genericIdea covers topics without a template.
var genericIdea = domain.Idea{
	Name:        "Narrative Tracker",
	Description: "Monitoring dashboard for projects and activity inside this narrative",
	TargetUser:  "Builders and investors scouting the trend early",
	Complexity:  "DAYS",
	WhyItWins:   "First-mover information advantage while the narrative is young",
}

func ideasForTopic(topic string) []domain.Idea {
	if ideas, ok := ideaTemplates[topic]; ok {
		return append([]domain.Idea(nil), ideas...)
	}
	return []domain.Idea{genericIdea}
}
