package catalog

import (
	"testing"

	"github.com/linkscribe/backend/internal/domain"
)

func intPtr(v int) *int { return &v }

func TestScoreProduct(t *testing.T) {
	t.Run("counts distinct keyword words found in title", func(t *testing.T) {
		got := ScoreProduct("Wireless Security Camera", "security camera")
		if got != 2 {
			t.Errorf("ScoreProduct() = %d, want 2", got)
		}
	})

	t.Run("is deterministic", func(t *testing.T) {
		first := ScoreProduct("Wireless Security Camera 1080p", "security camera outdoor")
		for i := 0; i < 10; i++ {
			if got := ScoreProduct("Wireless Security Camera 1080p", "security camera outdoor"); got != first {
				t.Fatalf("ScoreProduct() returned %d, previously %d", got, first)
			}
		}
	})

	t.Run("repeated keyword words count once", func(t *testing.T) {
		got := ScoreProduct("Security Camera", "camera camera camera")
		if got != 1 {
			t.Errorf("ScoreProduct() = %d, want 1", got)
		}
	})

	t.Run("is case insensitive", func(t *testing.T) {
		got := ScoreProduct("WIRELESS SECURITY CAMERA", "Security CAMERA")
		if got != 2 {
			t.Errorf("ScoreProduct() = %d, want 2", got)
		}
	})

	t.Run("returns zero for no overlap", func(t *testing.T) {
		got := ScoreProduct("Kitchen Blender", "security camera")
		if got != 0 {
			t.Errorf("ScoreProduct() = %d, want 0", got)
		}
	})
}

func TestIsMainProduct(t *testing.T) {
	t.Run("accessory title is not main for a device search", func(t *testing.T) {
		if IsMainProduct("Camera Wall Mount", "security camera") {
			t.Error("IsMainProduct() = true, want false for accessory title")
		}
	})

	t.Run("accessory title is main when keyword wants an accessory", func(t *testing.T) {
		if !IsMainProduct("Camera Wall Mount", "camera mount") {
			t.Error("IsMainProduct() = false, want true when keyword signals accessory intent")
		}
	})

	t.Run("clean title is main", func(t *testing.T) {
		if !IsMainProduct("Wireless Security Camera", "security camera") {
			t.Error("IsMainProduct() = false, want true for non-accessory title")
		}
	})
}

// eligibleCandidate builds a candidate passing every criterion
func eligibleCandidate() domain.ScoredCandidate {
	return domain.ScoredCandidate{
		ProductDetail: domain.ProductDetail{
			ID:               "E1",
			Title:            "Wireless Security Camera",
			IsBuyBoxWinner:   true,
			IsPrimeEligible:  true,
			Condition:        "new",
			AvailabilityType: "NOW",
			SalesRank:        intPtr(500),
		},
		Score:  2,
		IsMain: true,
	}
}

func TestEligibilityReasons_StrictAND(t *testing.T) {
	t.Run("fully eligible candidate has no reasons", func(t *testing.T) {
		if reasons := EligibilityReasons(eligibleCandidate()); len(reasons) != 0 {
			t.Errorf("EligibilityReasons() = %v, want empty", reasons)
		}
	})

	// Each case flips exactly one field from passing to failing; the
	// candidate must be rejected for that reason alone.
	cases := []struct {
		name   string
		mutate func(*domain.ScoredCandidate)
		reason string
	}{
		{"zero score", func(c *domain.ScoredCandidate) { c.Score = 0 }, "no keyword overlap"},
		{"accessory", func(c *domain.ScoredCandidate) { c.IsMain = false }, "accessory title"},
		{"lost buy box", func(c *domain.ScoredCandidate) { c.IsBuyBoxWinner = false }, "not buy box winner"},
		{"used condition", func(c *domain.ScoredCandidate) { c.Condition = "used" }, "condition not new"},
		{"no sales rank", func(c *domain.ScoredCandidate) { c.SalesRank = nil }, "no sales rank"},
		{"rank at threshold", func(c *domain.ScoredCandidate) { c.SalesRank = intPtr(10000) }, "sales rank too high"},
		{"backorder", func(c *domain.ScoredCandidate) { c.AvailabilityType = "BACKORDER" }, "not available now"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := eligibleCandidate()
			tc.mutate(&c)

			reasons := EligibilityReasons(c)
			if len(reasons) != 1 {
				t.Fatalf("EligibilityReasons() = %v, want exactly one reason", reasons)
			}
			if reasons[0] != tc.reason {
				t.Errorf("reason = %q, want %q", reasons[0], tc.reason)
			}
		})
	}

	t.Run("rank just under threshold passes", func(t *testing.T) {
		c := eligibleCandidate()
		c.SalesRank = intPtr(9999)
		if reasons := EligibilityReasons(c); len(reasons) != 0 {
			t.Errorf("EligibilityReasons() = %v, want empty for rank 9999", reasons)
		}
	})
}

func TestSortCandidates(t *testing.T) {
	mk := func(id string, score int, rank *int, prime bool) domain.ScoredCandidate {
		c := eligibleCandidate()
		c.ID = id
		c.Score = score
		c.SalesRank = rank
		c.IsPrimeEligible = prime
		return c
	}

	ids := func(cs []domain.ScoredCandidate) []string {
		out := make([]string, len(cs))
		for i, c := range cs {
			out[i] = c.ID
		}
		return out
	}

	t.Run("score beats sales rank", func(t *testing.T) {
		cs := []domain.ScoredCandidate{
			mk("low-score-great-rank", 1, intPtr(1), true),
			mk("high-score-poor-rank", 3, intPtr(9000), true),
		}
		SortCandidates(cs)
		if cs[0].ID != "high-score-poor-rank" {
			t.Errorf("order = %v, want score to dominate", ids(cs))
		}
	})

	t.Run("sales rank breaks score ties, absent rank last", func(t *testing.T) {
		cs := []domain.ScoredCandidate{
			mk("unranked", 2, nil, true),
			mk("rank-500", 2, intPtr(500), true),
			mk("rank-200", 2, intPtr(200), true),
		}
		SortCandidates(cs)
		want := []string{"rank-200", "rank-500", "unranked"}
		for i, id := range want {
			if cs[i].ID != id {
				t.Fatalf("order = %v, want %v", ids(cs), want)
			}
		}
	})

	t.Run("prime breaks full ties deterministically", func(t *testing.T) {
		build := func() []domain.ScoredCandidate {
			return []domain.ScoredCandidate{
				mk("no-prime", 2, intPtr(300), false),
				mk("prime", 2, intPtr(300), true),
			}
		}

		first := build()
		SortCandidates(first)
		if first[0].ID != "prime" {
			t.Errorf("order = %v, want prime-eligible first", ids(first))
		}

		// Same input sorted again must give the same order
		for i := 0; i < 5; i++ {
			again := build()
			SortCandidates(again)
			if again[0].ID != first[0].ID || again[1].ID != first[1].ID {
				t.Fatalf("order %v differs from %v across runs", ids(again), ids(first))
			}
		}
	})

	t.Run("fully tied candidates keep input order", func(t *testing.T) {
		cs := []domain.ScoredCandidate{
			mk("first-in", 2, intPtr(300), true),
			mk("second-in", 2, intPtr(300), true),
		}
		SortCandidates(cs)
		if cs[0].ID != "first-in" || cs[1].ID != "second-in" {
			t.Errorf("order = %v, stable sort must keep input order", ids(cs))
		}
	})
}
