package discount

import (
	"testing"
	"time"

	"orderdesk/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRestaurant = uuid.MustParse("6f1c2b1e-0d2a-4c47-9c51-3f1f8b0b1a01")

func TestParseEntry(t *testing.T) {
	tests := []struct {
		name         string
		line         string
		expectError  bool
		expectedCode string
		expectedType model.DiscountType
		expectedMin  string
		expectExpiry bool
	}{
		{
			name:         "Percentage with minimum",
			line:         testRestaurant.String() + ",sommer20,percentage,20,10.00",
			expectedCode: "SOMMER20",
			expectedType: model.DiscountPercentage,
			expectedMin:  "10.00",
		},
		{
			name:         "Fixed without minimum",
			line:         testRestaurant.String() + ", FLAT5 , FIXED , 5 ,",
			expectedCode: "FLAT5",
			expectedType: model.DiscountFixed,
			expectedMin:  "0.00",
		},
		{
			name:         "With date expiry",
			line:         testRestaurant.String() + ",WINTER,fixed,3,0,2026-12-31",
			expectedCode: "WINTER",
			expectedType: model.DiscountFixed,
			expectedMin:  "0.00",
			expectExpiry: true,
		},
		{name: "Too few fields", line: testRestaurant.String() + ",CODE,fixed,5", expectError: true},
		{name: "Bad restaurant id", line: "not-a-uuid,CODE,fixed,5,0", expectError: true},
		{name: "Unknown type", line: testRestaurant.String() + ",CODE,bogo,5,0", expectError: true},
		{name: "Zero value", line: testRestaurant.String() + ",CODE,fixed,0,0", expectError: true},
		{name: "Percentage above 100", line: testRestaurant.String() + ",CODE,percentage,150,0", expectError: true},
		{name: "Negative minimum", line: testRestaurant.String() + ",CODE,fixed,5,-1", expectError: true},
		{name: "Bad expiry", line: testRestaurant.String() + ",CODE,fixed,5,0,tomorrow", expectError: true},
		{name: "Empty code", line: testRestaurant.String() + ", ,fixed,5,0", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, err := ParseEntry(tt.line)

			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testRestaurant, entry.RestaurantID)
			assert.Equal(t, tt.expectedCode, entry.Discount.Code)
			assert.Equal(t, tt.expectedType, entry.Discount.Type)
			assert.Equal(t, tt.expectedMin, entry.Discount.MinimumOrderValue.StringFixed(2))
			assert.Equal(t, tt.expectExpiry, entry.ValidUntil != nil)
		})
	}
}

func TestEntry_Expired(t *testing.T) {
	entry, err := ParseEntry(testRestaurant.String() + ",WINTER,fixed,3,0,2026-12-31")
	require.NoError(t, err)

	assert.False(t, entry.Expired(time.Date(2026, time.December, 31, 23, 0, 0, 0, time.UTC)))
	assert.True(t, entry.Expired(time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC)))

	noExpiry := Entry{}
	assert.False(t, noExpiry.Expired(time.Now()))
}

func TestMapCatalog_AddAndLookup(t *testing.T) {
	catalog := newMapCatalog(10)
	var _ Catalog = catalog
	other := uuid.New()

	entry, err := ParseEntry(testRestaurant.String() + ",SOMMER20,percentage,20,10")
	require.NoError(t, err)
	catalog.Add(entry)

	found, ok := catalog.Lookup(testRestaurant, "SOMMER20")
	assert.True(t, ok)
	assert.Equal(t, "SOMMER20", found.Discount.Code)

	_, ok = catalog.Lookup(other, "SOMMER20")
	assert.False(t, ok, "codes are scoped to their restaurant")

	// Replacing an entry keeps the size stable
	catalog.Add(entry)
	assert.Equal(t, 1, catalog.Size())
}
