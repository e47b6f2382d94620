// Package discount validates restaurant discount codes against catalogue
// files loaded from the local file system or S3.
package discount

import (
	"context"

	"orderdesk/internal/model"

	"github.com/google/uuid"
)

// Validator defines the interface for discount code validation.
type Validator interface {
	// Validate returns the discount for code at restaurantID. Unknown,
	// expired or malformed codes yield model.ErrInvalidDiscountCode.
	Validate(ctx context.Context, restaurantID uuid.UUID, code string) (*model.DiscountCode, error)

	// Close releases resources held by the validator.
	Close() error
}

// Catalog is a lookup table of discount codes per restaurant.
type Catalog interface {
	// Lookup returns the entry for a normalised code.
	Lookup(restaurantID uuid.UUID, code string) (Entry, bool)

	// Size returns the number of entries in the catalog.
	Size() int
}

// Loader defines the interface for loading catalogue files.
type Loader interface {
	// Load reads a gzipped catalogue file and returns a Catalog.
	Load(ctx context.Context, filePath string) (Catalog, error)
}
