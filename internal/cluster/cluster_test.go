package cluster

import (
	"fmt"
	"testing"

	"narrative-radar/internal/domain"
)

func TestPreCluster_EmptyBatch(t *testing.T) {
	if groups := PreCluster(nil, DefaultThreshold); groups != nil {
		t.Errorf("expected no groups, got %d", len(groups))
	}
}

func TestPreCluster_SmallBatchPassesThrough(t *testing.T) {
	signals := []domain.Signal{
		{Name: "alpha lending platform"},
		{Name: "beta restaking vault"},
		{Name: "gamma oracle feeds"},
	}
	groups := PreCluster(signals, DefaultThreshold)
	if len(groups) != 1 {
		t.Fatalf("expected 1 pass-through group, got %d", len(groups))
	}
	if len(groups[0]) != 3 {
		t.Errorf("expected all 3 signals in one group, got %d", len(groups[0]))
	}
}

func TestPreCluster_IdenticalTextSameGroup(t *testing.T) {
	signals := []domain.Signal{
		{Name: "restaking vault launch", Content: "liquid restaking yields climbing fast"},
		{Name: "restaking vault launch", Content: "liquid restaking yields climbing fast"},
		{Name: "onchain perp exchange", Content: "perpetual futures venue with deep orderbook"},
		{Name: "pixel dungeon game", Content: "roguelike dungeon crawler with collectible heroes"},
	}
	groups := PreCluster(signals, DefaultThreshold)

	groupOf := func(name, content string) int {
		for gi, g := range groups {
			for _, s := range g {
				if s.Name == name && s.Content == content {
					return gi
				}
			}
		}
		t.Fatalf("signal %q not found in any group", name)
		return -1
	}

	first := groupOf("restaking vault launch", "liquid restaking yields climbing fast")
	if len(groups[first]) < 2 {
		t.Errorf("identical signals must share a group, got group of %d", len(groups[first]))
	}
	if groupOf("onchain perp exchange", "perpetual futures venue with deep orderbook") == first {
		t.Errorf("unrelated signal landed in the restaking group")
	}
}

func TestPreCluster_GroupsOrderedByBestScore(t *testing.T) {
	signals := []domain.Signal{
		{Name: "minor meme token chatter", Content: "meme coin chatter on forum threads", Score: 30},
		{Name: "major restaking protocol news", Content: "restaking vault with huge deposits", Score: 90},
		{Name: "pixel dungeon crawler", Content: "roguelike collectible dungeon game", Score: 55},
		{Name: "another unrelated entry", Score: 10},
	}
	groups := PreCluster(signals, DefaultThreshold)
	for i := 1; i < len(groups); i++ {
		if maxScore(groups[i-1]) < maxScore(groups[i]) {
			t.Errorf("groups out of order: %v then %v", maxScore(groups[i-1]), maxScore(groups[i]))
		}
	}
}

func TestPreCluster_PreservesAllSignals(t *testing.T) {
	var signals []domain.Signal
	for i := range 20 {
		signals = append(signals, domain.Signal{Name: fmt.Sprintf("project-%d distinctive words %d", i, i)})
	}
	groups := PreCluster(signals, DefaultThreshold)
	total := 0
	for _, g := range groups {
		total += len(g)
	}
	if total != len(signals) {
		t.Errorf("clustering lost signals: %d in, %d out", len(signals), total)
	}
}

func TestTokenize(t *testing.T) {
	got := tokenize("Solana-based AMM v2, with 10x yield!")
	want := []string{"solana", "based", "amm", "with", "10x", "yield"}
	if len(got) != len(want) {
		t.Fatalf("tokenize = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCosine(t *testing.T) {
	a := map[string]float64{"restaking": 0.5, "vault": 0.5}
	b := map[string]float64{"restaking": 0.5, "vault": 0.5}
	if sim := cosine(a, b); sim < 0.999 {
		t.Errorf("identical vectors: cosine = %v, want ~1", sim)
	}

	c := map[string]float64{"dungeon": 0.7}
	if sim := cosine(a, c); sim != 0 {
		t.Errorf("disjoint vectors: cosine = %v, want 0", sim)
	}

	if sim := cosine(a, map[string]float64{}); sim != 0 {
		t.Errorf("empty vector: cosine = %v, want 0", sim)
	}
}

func TestUnionFind(t *testing.T) {
	uf := newUnionFind(5)
	uf.union(0, 1)
	uf.union(1, 2)
	if uf.find(0) != uf.find(2) {
		t.Errorf("0 and 2 must share a root after chained unions")
	}
	if uf.find(3) == uf.find(0) {
		t.Errorf("3 must remain in its own set")
	}
	uf.union(3, 4)
	if uf.find(3) != uf.find(4) {
		t.Errorf("3 and 4 must share a root")
	}
	if uf.find(4) == uf.find(1) {
		t.Errorf("sets {0,1,2} and {3,4} must stay disjoint")
	}
}
