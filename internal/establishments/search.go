package establishments

import (
	"strings"
	"unicode/utf8"

	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/enums"
	pkgerrors "github.com/SamuelGunda/NowAround-Backend-sub000/pkg/errors"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/pagination"
)

const minSearchNameLength = 3

// Coordinates is a latitude/longitude pair in degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// BoundingBox is the map viewport a search is limited to.
type BoundingBox struct {
	NorthWest Coordinates `json:"north_west"`
	SouthEast Coordinates `json:"south_east"`
}

// IsDegenerate reports equal corners or a north-west corner that is not
// strictly north and west of the south-east one.
func (b BoundingBox) IsDegenerate() bool {
	return !(b.NorthWest.Lat > b.SouthEast.Lat && b.NorthWest.Lng < b.SouthEast.Lng)
}

// SearchFilters is the raw filter set received from clients.
type SearchFilters struct {
	Name          *string
	PriceCategory *enums.PriceCategory
	Category      *string
	Tags          []string
	Box           BoundingBox
}

// SearchQuery is a validated filter set. Nil fields do not constrain the result.
type SearchQuery struct {
	Name          *string
	PriceCategory *enums.PriceCategory
	Category      *string
	Tags          []string
	Box           *BoundingBox
}

// BuildSearchQuery validates filters and page. A degenerate box is only
// accepted when another filter narrows the result, and is then ignored.
func BuildSearchQuery(filters SearchFilters, page int) (SearchQuery, error) {
	if err := (pagination.Params{Page: page}).Validate(); err != nil {
		return SearchQuery{}, err
	}

	var query SearchQuery
	if filters.Name != nil {
		name := strings.TrimSpace(*filters.Name)
		if utf8.RuneCountInString(name) < minSearchNameLength {
			return SearchQuery{}, pkgerrors.New(pkgerrors.CodeValidation, "name filter must have at least 3 characters").
				WithDetails(map[string]any{"name": *filters.Name})
		}
		query.Name = &name
	}
	if filters.PriceCategory != nil {
		if !filters.PriceCategory.IsValid() {
			return SearchQuery{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid price category").
				WithDetails(map[string]any{"priceCategory": filters.PriceCategory.String()})
		}
		price := *filters.PriceCategory
		query.PriceCategory = &price
	}
	if filters.Category != nil {
		if category := strings.TrimSpace(*filters.Category); category != "" {
			query.Category = &category
		}
	}
	query.Tags = normalizeNames(filters.Tags)

	hasOtherFilter := query.Name != nil || query.PriceCategory != nil || query.Category != nil || len(query.Tags) > 0
	if filters.Box.IsDegenerate() {
		if !hasOtherFilter {
			return SearchQuery{}, pkgerrors.New(pkgerrors.CodeInvalidSearch, "search requires a valid map area or at least one filter")
		}
		return query, nil
	}
	box := filters.Box
	query.Box = &box
	return query, nil
}

// normalizeNames trims, drops blanks and dedupes while keeping order.
func normalizeNames(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
