package catalog

import (
	"fmt"
	"strings"

	"github.com/linkscribe/backend/internal/domain"
)

// Catalog API operation names
const (
	opSearchItems = "SearchItems"
	opGetItems    = "GetItems"
)

// searchItemsPayload is the request body for the SearchItems operation
type searchItemsPayload struct {
	Keywords    string   `json:"Keywords"`
	ItemPage    int      `json:"ItemPage"`
	ItemCount   int      `json:"ItemCount"`
	PartnerTag  string   `json:"PartnerTag"`
	Marketplace string   `json:"Marketplace,omitempty"`
	Resources   []string `json:"Resources,omitempty"`
}

// getItemsPayload is the request body for the GetItems operation
type getItemsPayload struct {
	ItemIDs     []string `json:"ItemIds"`
	PartnerTag  string   `json:"PartnerTag"`
	Marketplace string   `json:"Marketplace,omitempty"`
	Resources   []string `json:"Resources,omitempty"`
}

// itemResources is the field set requested on every item lookup
var itemResources = []string{
	"ItemInfo.Title",
	"ItemInfo.Features",
	"Images.Primary.Large",
	"Offers.Listings.Price",
	"Offers.Listings.Condition",
	"Offers.Listings.Availability",
	"Offers.Listings.DeliveryInfo",
	"BrowseNodeInfo.WebsiteSalesRank",
}

// apiItem mirrors the catalog provider's nested item shape
type apiItem struct {
	ID       string `json:"ItemId"`
	ItemInfo struct {
		Title struct {
			DisplayValue string `json:"DisplayValue"`
		} `json:"Title"`
		Features struct {
			DisplayValues []string `json:"DisplayValues"`
		} `json:"Features"`
	} `json:"ItemInfo"`
	Images struct {
		Primary struct {
			Large struct {
				URL string `json:"URL"`
			} `json:"Large"`
		} `json:"Primary"`
	} `json:"Images"`
	Offers struct {
		Listings []apiListing `json:"Listings"`
	} `json:"Offers"`
	BrowseNodeInfo struct {
		WebsiteSalesRank struct {
			SalesRank *int `json:"SalesRank"`
		} `json:"WebsiteSalesRank"`
	} `json:"BrowseNodeInfo"`
}

// apiListing is one offer listing attached to an item
type apiListing struct {
	Price struct {
		DisplayAmount string `json:"DisplayAmount"`
	} `json:"Price"`
	IsBuyBoxWinner bool `json:"IsBuyBoxWinner"`
	Condition      struct {
		Value string `json:"Value"`
	} `json:"Condition"`
	Availability struct {
		Type string `json:"Type"`
	} `json:"Availability"`
	DeliveryInfo struct {
		IsPrimeEligible bool `json:"IsPrimeEligible"`
	} `json:"DeliveryInfo"`
}

// searchItemsResponse is the SearchItems response envelope
type searchItemsResponse struct {
	SearchResult struct {
		Items        []apiItem `json:"Items"`
		TotalResults int       `json:"TotalResultCount"`
	} `json:"SearchResult"`
}

// getItemsResponse is the GetItems response envelope
type getItemsResponse struct {
	ItemsResult struct {
		Items []apiItem `json:"Items"`
	} `json:"ItemsResult"`
}

// mapItemToCandidate extracts the few fields the pre-filter needs
func mapItemToCandidate(item apiItem) domain.SearchCandidate {
	c := domain.SearchCandidate{
		ID:    item.ID,
		Title: item.ItemInfo.Title.DisplayValue,
	}

	if len(item.Offers.Listings) > 0 {
		listing := item.Offers.Listings[0]
		c.HasPrice = listing.Price.DisplayAmount != ""
		c.AvailabilityType = listing.Availability.Type
		c.Condition = strings.ToLower(listing.Condition.Value)
	}

	return c
}

// mapItemToDetail converts a raw catalog item into our domain ProductDetail.
// Missing offer data defaults to the non-eligible values so the eligibility
// filter treats it conservatively.
func mapItemToDetail(item apiItem, linkBase, partnerTag string) domain.ProductDetail {
	detail := domain.ProductDetail{
		ID:            item.ID,
		Title:         item.ItemInfo.Title.DisplayValue,
		Description:   strings.Join(item.ItemInfo.Features.DisplayValues, ". "),
		ImageURL:      item.Images.Primary.Large.URL,
		SalesRank:     item.BrowseNodeInfo.WebsiteSalesRank.SalesRank,
		AffiliateLink: buildAffiliateLink(linkBase, item.ID, partnerTag),
	}

	if len(item.Offers.Listings) > 0 {
		listing := item.Offers.Listings[0]
		detail.Price = listing.Price.DisplayAmount
		detail.IsBuyBoxWinner = listing.IsBuyBoxWinner
		detail.IsPrimeEligible = listing.DeliveryInfo.IsPrimeEligible
		detail.Condition = strings.ToLower(listing.Condition.Value)
		detail.AvailabilityType = listing.Availability.Type
	}

	return detail
}

// buildAffiliateLink derives the tagged product URL: base + id + partner tag
func buildAffiliateLink(linkBase, id, partnerTag string) string {
	return fmt.Sprintf("%s/dp/%s?tag=%s", strings.TrimRight(linkBase, "/"), id, partnerTag)
}
