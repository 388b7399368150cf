package domain

import "errors"

var (
	// ErrMissingCredentials is returned when the catalog transport is built
	// without the access key, secret key or partner tag it needs
	ErrMissingCredentials = errors.New("catalog credentials not configured")

	// ErrCatalogAPIFailure is returned when a catalog API request fails
	ErrCatalogAPIFailure = errors.New("catalog API request failed")

	// ErrNoCandidates is returned when a search yields zero raw results
	// across all pages
	ErrNoCandidates = errors.New("no products found for keyword")

	// ErrNoEligibleCandidates is returned when candidates were found but
	// none survived scoring and eligibility filtering
	ErrNoEligibleCandidates = errors.New("no qualifying products for keyword")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrJobNotFound is returned when a keyword job id does not exist
	ErrJobNotFound = errors.New("keyword job not found")

	// ErrGeneratorFailure is returned when the text-generation API fails
	ErrGeneratorFailure = errors.New("text generation request failed")

	// ErrPublishFailure is returned when the CMS publish step fails
	ErrPublishFailure = errors.New("publish to CMS failed")
)
