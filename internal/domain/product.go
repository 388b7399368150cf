package domain

// SearchCandidate is a raw search-result item as returned by one catalog
// search page. It only carries the fields needed for pre-filtering; full
// data comes from the detail lookup.
type SearchCandidate struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	HasPrice         bool   `json:"hasPrice"`
	AvailabilityType string `json:"availabilityType"`
	Condition        string `json:"condition,omitempty"`
}

// ProductDetail is the fully-enriched product representation. Once written
// to the cache it is treated as immutable for the session; the cache TTL is
// the only invalidation.
type ProductDetail struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	Description      string `json:"description"`
	ImageURL         string `json:"imageUrl"`
	Price            string `json:"price,omitempty"` // empty = no offer price
	IsBuyBoxWinner   bool   `json:"isBuyBoxWinner"`
	IsPrimeEligible  bool   `json:"isPrimeEligible"`
	Condition        string `json:"condition"` // normalized lowercase
	AvailabilityType string `json:"availabilityType"`
	SalesRank        *int   `json:"salesRank,omitempty"` // nil = unranked
	AffiliateLink    string `json:"affiliateLink"`
}

// ScoredCandidate is a ProductDetail annotated with the ranking policy's
// verdicts. It exists only within one SearchProducts invocation and is
// never persisted.
type ScoredCandidate struct {
	ProductDetail
	Score  int
	IsMain bool
}

// AvailableNowTypes is the set of availability values that count as
// purchasable right now. Anything else is filtered out before the detail
// fetch even happens.
var AvailableNowTypes = map[string]bool{
	"NOW":      true,
	"IN_STOCK": true,
}
