package pagination

import (
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/config"
	pkgerrors "github.com/SamuelGunda/NowAround-Backend-sub000/pkg/errors"
)

// Params holds zero-based page pagination inputs from controllers or services.
type Params struct {
	Page int
	Size int
}

// NormalizeSize enforces the configured default and maximum page sizes.
func NormalizeSize(size int) int {
	if size <= 0 {
		return config.DefaultSearchPageSize
	}
	if size > config.MaxSearchPageSize {
		return config.MaxSearchPageSize
	}
	return size
}

// Validate rejects negative pages.
func (p Params) Validate() error {
	if p.Page < 0 {
		return pkgerrors.New(pkgerrors.CodeInvalidSearch, "page must not be negative").
			WithDetails(map[string]any{"page": p.Page})
	}
	return nil
}

// Offset returns the row offset for the page.
func (p Params) Offset() int {
	return p.Page * NormalizeSize(p.Size)
}

// Limit returns the normalized page size.
func (p Params) Limit() int {
	return NormalizeSize(p.Size)
}
