package discount

import (
	"fmt"
	"strings"
	"time"

	"orderdesk/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Entry is a catalogued discount with its optional expiry.
type Entry struct {
	RestaurantID uuid.UUID
	Discount     model.DiscountCode
	ValidUntil   *time.Time
}

// Expired reports whether the entry is no longer valid at now.
func (e Entry) Expired(now time.Time) bool {
	return e.ValidUntil != nil && now.After(*e.ValidUntil)
}

type catalogKey struct {
	restaurantID uuid.UUID
	code         string
}

// mapCatalog implements Catalog using a map for O(1) lookups.
type mapCatalog struct {
	entries map[catalogKey]Entry
}

// newMapCatalog creates an empty catalog sized for capacity entries.
func newMapCatalog(capacity int) *mapCatalog {
	return &mapCatalog{
		entries: make(map[catalogKey]Entry, capacity),
	}
}

// Lookup returns the entry for a normalised code.
func (c *mapCatalog) Lookup(restaurantID uuid.UUID, code string) (Entry, bool) {
	e, ok := c.entries[catalogKey{restaurantID: restaurantID, code: code}]
	return e, ok
}

// Size returns the number of entries in the catalog.
func (c *mapCatalog) Size() int {
	return len(c.entries)
}

// Add stores e, replacing any earlier entry with the same restaurant and code.
func (c *mapCatalog) Add(e Entry) {
	c.entries[catalogKey{restaurantID: e.RestaurantID, code: e.Discount.Code}] = e
}

// merge copies every entry of other into c.
func (c *mapCatalog) merge(other *mapCatalog) {
	for k, v := range other.entries {
		c.entries[k] = v
	}
}

// ParseEntry parses one catalogue line:
//
//	restaurant_id,code,percentage|fixed,value,minimum_order_value[,valid_until]
//
// valid_until is an RFC 3339 timestamp or a YYYY-MM-DD date (end of day UTC).
func ParseEntry(line string) (Entry, error) {
	fields := strings.Split(line, ",")
	if len(fields) < 5 || len(fields) > 6 {
		return Entry{}, fmt.Errorf("expected 5 or 6 fields, got %d", len(fields))
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	restaurantID, err := uuid.Parse(fields[0])
	if err != nil {
		return Entry{}, fmt.Errorf("invalid restaurant id %q: %w", fields[0], err)
	}

	code := model.NormalizeDiscountCode(fields[1])
	if code == "" {
		return Entry{}, fmt.Errorf("empty discount code")
	}

	discountType := model.DiscountType(strings.ToLower(fields[2]))
	if discountType != model.DiscountPercentage && discountType != model.DiscountFixed {
		return Entry{}, fmt.Errorf("invalid discount type %q", fields[2])
	}

	value, err := decimal.NewFromString(fields[3])
	if err != nil || !value.IsPositive() {
		return Entry{}, fmt.Errorf("invalid discount value %q", fields[3])
	}
	if discountType == model.DiscountPercentage && value.GreaterThan(decimal.NewFromInt(100)) {
		return Entry{}, fmt.Errorf("percentage discount above 100: %s", fields[3])
	}

	minimum := decimal.Zero
	if fields[4] != "" {
		minimum, err = decimal.NewFromString(fields[4])
		if err != nil || minimum.IsNegative() {
			return Entry{}, fmt.Errorf("invalid minimum order value %q", fields[4])
		}
	}

	entry := Entry{
		RestaurantID: restaurantID,
		Discount: model.DiscountCode{
			Code:              code,
			Type:              discountType,
			Value:             value,
			MinimumOrderValue: minimum,
		},
	}

	if len(fields) == 6 && fields[5] != "" {
		until, err := parseValidUntil(fields[5])
		if err != nil {
			return Entry{}, err
		}
		entry.ValidUntil = &until
	}

	return entry, nil
}

func parseValidUntil(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	day, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid valid_until %q", s)
	}
	return day.Add(24*time.Hour - time.Nanosecond), nil
}
