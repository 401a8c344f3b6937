package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestProperty_Validate(t *testing.T) {
	tests := []struct {
		name    string
		p       Property
		wantErr string
	}{
		{
			name: "valid minimal",
			p:    Property{PropertyName: "Lake View", AddressLine1: "12 MG Road"},
		},
		{
			name: "client supplied uuid",
			p:    Property{ID: "11111111-2222-3333-4444-555555555555", PropertyName: "Lake View", AddressLine1: "12 MG Road"},
		},
		{
			name:    "id is not a uuid",
			p:       Property{ID: "../other-owner", PropertyName: "Lake View", AddressLine1: "12 MG Road"},
			wantErr: "Field: ID",
		},
		{
			name:    "missing name",
			p:       Property{AddressLine1: "12 MG Road"},
			wantErr: "PropertyName",
		},
		{
			name:    "missing address",
			p:       Property{PropertyName: "Lake View"},
			wantErr: "AddressLine1",
		},
		{
			name:    "negative bedrooms",
			p:       Property{PropertyName: "Lake View", AddressLine1: "12 MG Road", Bedrooms: intPtr(-1)},
			wantErr: "Bedrooms",
		},
		{
			name:    "unknown listing type",
			p:       Property{PropertyName: "Lake View", AddressLine1: "12 MG Road", ListingType: "swap"},
			wantErr: "ListingType",
		},
		{
			name:    "unknown status",
			p:       Property{PropertyName: "Lake View", AddressLine1: "12 MG Road", Status: "haunted"},
			wantErr: "Status",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestProperty_ApplyDefaults(t *testing.T) {
	p := Property{}
	p.ApplyDefaults()

	assert.Equal(t, StatusVacant, p.Status)
	assert.Equal(t, DefaultCurrency, p.Currency)
	assert.NotNil(t, p.ImageURLs)
	assert.NotNil(t, p.ImagePaths)

	p = Property{Status: StatusOccupied, Currency: "USD"}
	p.ApplyDefaults()
	assert.Equal(t, StatusOccupied, p.Status)
	assert.Equal(t, "USD", p.Currency)
	assert.True(t, p.IsOccupied())
}

func TestProperty_DisplayAddress(t *testing.T) {
	p := Property{AddressLine1: "12 MG Road", AddressLine2: "Flat 4B", City: "Bengaluru", State: "KA", Pincode: "560001"}
	assert.Equal(t, "12 MG Road, Flat 4B, Bengaluru, KA 560001", p.DisplayAddress())

	p = Property{AddressLine1: "1 Main St"}
	assert.Equal(t, "1 Main St", p.DisplayAddress())
}

func TestStringList_ScanAndValue(t *testing.T) {
	var l StringList
	require.NoError(t, l.Scan([]byte(`["a/1.png","a/2.png"]`)))
	assert.Equal(t, StringList{"a/1.png", "a/2.png"}, l)

	require.NoError(t, l.Scan(nil))
	assert.Equal(t, StringList{}, l)

	require.NoError(t, l.Scan("null"))
	assert.Equal(t, StringList{}, l)

	assert.Error(t, l.Scan(42))
	assert.Error(t, l.Scan("not json"))

	v, err := StringList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	v, err = StringList{"x"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `["x"]`, v)
}

func TestTenant_LeaseActive(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	tenant := Tenant{LeaseStart: &start, LeaseEnd: &end}

	assert.True(t, tenant.LeaseActive(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, tenant.LeaseActive(time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, tenant.LeaseActive(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, (&Tenant{}).LeaseActive(time.Now()))
}

func TestStatus_Valid(t *testing.T) {
	assert.True(t, StatusVacant.Valid())
	assert.True(t, StatusMaintenance.Valid())
	assert.False(t, Status("removed").Valid())
	assert.False(t, Status("").Valid())
}
