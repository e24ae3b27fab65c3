package storage

import "testing"

func TestComputeTopicVelocity_InsufficientData(t *testing.T) {
	for _, daily := range []map[string]int{nil, {}, {"2025-06-01": 5}} {
		v := ComputeTopicVelocity(daily)
		if v.Trend != "insufficient_data" {
			t.Errorf("daily=%v: trend = %q, want insufficient_data", daily, v.Trend)
		}
		if v.Velocity != 0 {
			t.Errorf("daily=%v: velocity = %v, want 0", daily, v.Velocity)
		}
		if v.DataPoints != len(daily) {
			t.Errorf("daily=%v: data points = %d, want %d", daily, v.DataPoints, len(daily))
		}
	}
}

func TestComputeTopicVelocity_Accelerating(t *testing.T) {
	v := ComputeTopicVelocity(map[string]int{
		"2025-06-01": 2,
		"2025-06-02": 3,
		"2025-06-03": 6,
		"2025-06-04": 9,
	})
	// First half 5, second half 15: +200%.
	if v.Velocity != 200 {
		t.Errorf("velocity = %v, want 200", v.Velocity)
	}
	if v.Trend != "accelerating" {
		t.Errorf("trend = %q, want accelerating", v.Trend)
	}
	if v.DataPoints != 4 {
		t.Errorf("data points = %d, want 4", v.DataPoints)
	}
}

func TestComputeTopicVelocity_Decelerating(t *testing.T) {
	v := ComputeTopicVelocity(map[string]int{
		"2025-06-01": 10,
		"2025-06-02": 10,
		"2025-06-03": 2,
		"2025-06-04": 2,
	})
	if v.Velocity != -80 {
		t.Errorf("velocity = %v, want -80", v.Velocity)
	}
	if v.Trend != "decelerating" {
		t.Errorf("trend = %q, want decelerating", v.Trend)
	}
}

func TestComputeTopicVelocity_Stable(t *testing.T) {
	v := ComputeTopicVelocity(map[string]int{
		"2025-06-01": 5,
		"2025-06-02": 6,
	})
	if v.Trend != "stable" {
		t.Errorf("trend = %q, want stable (velocity %v)", v.Trend, v.Velocity)
	}
}

func TestComputeTopicVelocity_ZeroFirstHalf(t *testing.T) {
	v := ComputeTopicVelocity(map[string]int{
		"2025-06-01": 0,
		"2025-06-02": 7,
	})
	if v.Velocity != 100 {
		t.Errorf("velocity = %v, want 100 when activity starts from nothing", v.Velocity)
	}
	if v.Trend != "accelerating" {
		t.Errorf("trend = %q, want accelerating", v.Trend)
	}
}

func TestComputeTopicVelocity_OddWindowSplits(t *testing.T) {
	// Five days: first half is the first two, second half the last three.
	v := ComputeTopicVelocity(map[string]int{
		"2025-06-01": 4,
		"2025-06-02": 4,
		"2025-06-03": 2,
		"2025-06-04": 2,
		"2025-06-05": 2,
	})
	if v.Velocity != -25 {
		t.Errorf("velocity = %v, want -25", v.Velocity)
	}
	if v.Trend != "decelerating" {
		t.Errorf("trend = %q, want decelerating", v.Trend)
	}
}

func TestComputeTopicVelocity_Rounds(t *testing.T) {
	// First half 3, second half 4: +33.333...% rounds to 33.3.
	v := ComputeTopicVelocity(map[string]int{
		"2025-06-01": 3,
		"2025-06-02": 4,
	})
	if v.Velocity != 33.3 {
		t.Errorf("velocity = %v, want 33.3", v.Velocity)
	}
}
