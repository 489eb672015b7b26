package cache

import "testing"

func TestStatsHitRate(t *testing.T) {
	s := newStats()
	if got := s.snapshot().HitRate(); got != 0.0 {
		t.Errorf("fresh stats HitRate() = %v, want 0.0", got)
	}

	s.recordHit()
	s.recordHit()
	s.recordMiss()

	snap := s.snapshot()
	if snap.Hits != 2 || snap.Misses != 1 {
		t.Fatalf("snapshot = %+v, want hits=2 misses=1", snap)
	}
	if got, want := snap.HitRate(), 0.6667; got != want {
		t.Errorf("HitRate() = %v, want %v", got, want)
	}
}

func TestStatsSavedCost(t *testing.T) {
	s := newStats()
	s.addSavedCost(1.5)
	s.addSavedCost(2.25)
	if got := s.snapshot().SavedCost; got != 3.75 {
		t.Errorf("SavedCost = %v, want 3.75", got)
	}
}

func TestStatsReset(t *testing.T) {
	s := newStats()
	s.recordHit()
	s.recordMiss()
	s.addSavedCost(5)
	s.reset()

	snap := s.snapshot()
	if snap.Hits != 0 || snap.Misses != 0 || snap.SavedCost != 0 {
		t.Errorf("after reset, snapshot = %+v, want all zero", snap)
	}
}

func TestRoundTo(t *testing.T) {
	cases := []struct {
		v      float64
		places int
		want   float64
	}{
		{0.66666666, 4, 0.6667},
		{0.5, 4, 0.5},
		{1.0, 4, 1.0},
		{0.12345, 2, 0.12},
	}
	for _, tc := range cases {
		if got := roundTo(tc.v, tc.places); got != tc.want {
			t.Errorf("roundTo(%v, %d) = %v, want %v", tc.v, tc.places, got, tc.want)
		}
	}
}
