package catalog

import (
	"sort"
	"strings"

	"github.com/linkscribe/backend/internal/domain"
)

// Eligibility thresholds
const (
	// maxEligibleSalesRank is the worst sales rank a product may carry and
	// still be recommendable; beyond this the item is too obscure to push.
	maxEligibleSalesRank = 10000

	// primeEligibleFirst controls the final sort tie-break: when two
	// eligible candidates have the same score and sales rank, Prime-eligible
	// items sort first. Flip to prefer non-Prime.
	primeEligibleFirst = true
)

// accessoryIndicators are title substrings that mark a product as an
// accessory rather than the primary item a searcher wants. Lowercase;
// matched against lowercased titles and keywords.
var accessoryIndicators = []string{
	"mount",
	"bracket",
	"case",
	"cover",
	"holder",
	"stand",
	"strap",
	"accessory",
	"accessories",
	"adapter",
	"cable",
	"charger",
	"replacement",
	"installation kit",
}

// ScoreProduct counts how many distinct keyword words appear as substrings
// of the product title. Both sides are lowercased; the keyword is split on
// whitespace. Zero means no lexical overlap at all. Pure and deterministic.
func ScoreProduct(title, keyword string) int {
	titleLower := strings.ToLower(title)
	words := strings.Fields(strings.ToLower(keyword))

	score := 0
	seen := make(map[string]bool, len(words))
	for _, word := range words {
		if seen[word] {
			continue
		}
		seen[word] = true
		if strings.Contains(titleLower, word) {
			score++
		}
	}

	return score
}

// IsMainProduct reports whether a product is the primary item rather than an
// accessory, relative to search intent. If the keyword itself names an
// accessory (e.g. "camera mount") every product counts as main: the searcher
// explicitly wants one. Otherwise a product is main iff its title contains
// none of the accessory indicators.
func IsMainProduct(title, keyword string) bool {
	keywordLower := strings.ToLower(keyword)
	for _, indicator := range accessoryIndicators {
		if strings.Contains(keywordLower, indicator) {
			return true
		}
	}

	titleLower := strings.ToLower(title)
	for _, indicator := range accessoryIndicators {
		if strings.Contains(titleLower, indicator) {
			return false
		}
	}

	return true
}

// EligibilityReasons names every hard criterion the candidate fails. An
// empty result means the candidate is recommendable. The reasons feed the
// exclusion log so "why was X dropped" is always answerable.
func EligibilityReasons(c domain.ScoredCandidate) []string {
	var reasons []string

	if c.Score <= 0 {
		reasons = append(reasons, "no keyword overlap")
	}
	if !c.IsMain {
		reasons = append(reasons, "accessory title")
	}
	if !c.IsBuyBoxWinner {
		reasons = append(reasons, "not buy box winner")
	}
	if c.Condition != "new" {
		reasons = append(reasons, "condition not new")
	}
	if c.SalesRank == nil {
		reasons = append(reasons, "no sales rank")
	} else if *c.SalesRank >= maxEligibleSalesRank {
		reasons = append(reasons, "sales rank too high")
	}
	if !domain.AvailableNowTypes[c.AvailabilityType] {
		reasons = append(reasons, "not available now")
	}

	return reasons
}

// SortCandidates orders candidates best-first: keyword score descending,
// then sales rank ascending (unranked last), then the Prime tie-break.
// The sort is stable so fully-tied candidates keep their input order.
func SortCandidates(candidates []domain.ScoredCandidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]

		if a.Score != b.Score {
			return a.Score > b.Score
		}

		ra, rb := sortRank(a.SalesRank), sortRank(b.SalesRank)
		if ra != rb {
			return ra < rb
		}

		if a.IsPrimeEligible != b.IsPrimeEligible {
			return a.IsPrimeEligible == primeEligibleFirst
		}

		return false
	})
}

// sortRank maps an absent sales rank to a value that sorts after every real
// rank
func sortRank(rank *int) int {
	if rank == nil {
		return int(^uint(0) >> 1) // max int
	}
	return *rank
}
