package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapItemToDetail(t *testing.T) {
	item := buildItem("B0TEST123", "Wireless Earbuds Pro", 1234)

	detail := mapItemToDetail(item, "https://www.example.com/", "linkscribe-20")

	assert.Equal(t, "B0TEST123", detail.ID)
	assert.Equal(t, "Wireless Earbuds Pro", detail.Title)
	assert.Equal(t, "Feature one. Feature two", detail.Description)
	assert.Equal(t, "$29.99", detail.Price)
	assert.True(t, detail.IsBuyBoxWinner)
	assert.True(t, detail.IsPrimeEligible)
	assert.Equal(t, "new", detail.Condition, "condition is normalized to lowercase")
	assert.Equal(t, "NOW", detail.AvailabilityType)
	if assert.NotNil(t, detail.SalesRank) {
		assert.Equal(t, 1234, *detail.SalesRank)
	}
	assert.Equal(t, "https://www.example.com/dp/B0TEST123?tag=linkscribe-20", detail.AffiliateLink)
}

func TestMapItemToDetail_NoOffers(t *testing.T) {
	var item apiItem
	item.ID = "B0EMPTY00"
	item.ItemInfo.Title.DisplayValue = "Listing Without Offers"

	detail := mapItemToDetail(item, "https://www.example.com", "linkscribe-20")

	assert.Empty(t, detail.Price)
	assert.False(t, detail.IsBuyBoxWinner, "missing offer data defaults to non-eligible values")
	assert.False(t, detail.IsPrimeEligible)
	assert.Nil(t, detail.SalesRank)
}

func TestMapItemToCandidate(t *testing.T) {
	item := buildItem("B0CAND456", "Security Camera", 10)

	cand := mapItemToCandidate(item)

	assert.Equal(t, "B0CAND456", cand.ID)
	assert.Equal(t, "Security Camera", cand.Title)
	assert.True(t, cand.HasPrice)
	assert.Equal(t, "NOW", cand.AvailabilityType)
	assert.Equal(t, "new", cand.Condition)
}

func TestMapItemToCandidate_NoListings(t *testing.T) {
	var item apiItem
	item.ID = "B0BARE789"
	item.ItemInfo.Title.DisplayValue = "Bare Item"

	cand := mapItemToCandidate(item)

	assert.False(t, cand.HasPrice)
	assert.Empty(t, cand.AvailabilityType)
}
