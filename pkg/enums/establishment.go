package enums

import (
	"fmt"
	"strings"
)

// PriceCategory is the price tier an establishment advertises.
type PriceCategory string

const (
	PriceCategoryAffordable PriceCategory = "affordable"
	PriceCategoryModerate   PriceCategory = "moderate"
	PriceCategoryExpensive  PriceCategory = "expensive"
)

var validPriceCategories = []PriceCategory{
	PriceCategoryAffordable,
	PriceCategoryModerate,
	PriceCategoryExpensive,
}

// String implements fmt.Stringer.
func (p PriceCategory) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PriceCategory.
func (p PriceCategory) IsValid() bool {
	for _, candidate := range validPriceCategories {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePriceCategory converts raw input into a PriceCategory. Matching ignores case.
func ParsePriceCategory(value string) (PriceCategory, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validPriceCategories {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid price category %q", value)
}

// RequestStatus tracks the registration vetting workflow.
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusAccepted RequestStatus = "accepted"
	RequestStatusRejected RequestStatus = "rejected"
)

var validRequestStatuses = []RequestStatus{
	RequestStatusPending,
	RequestStatusAccepted,
	RequestStatusRejected,
}

// String implements fmt.Stringer.
func (s RequestStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known RequestStatus.
func (s RequestStatus) IsValid() bool {
	for _, candidate := range validRequestStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseRequestStatus converts raw input into a RequestStatus. Matching ignores case.
func ParseRequestStatus(value string) (RequestStatus, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validRequestStatuses {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid request status %q", value)
}
