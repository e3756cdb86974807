package gateway_test

import (
	"testing"

	"lipa/pkg/gateway"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		country gateway.Country
		want    string
	}{
		{
			name:    "leading zero replaced with DRC prefix",
			raw:     "0812345678",
			country: gateway.CountryDRC,
			want:    "+243812345678",
		},
		{
			name:    "spaces stripped before normalizing",
			raw:     "081 234 5678",
			country: gateway.CountryDRC,
			want:    "+243812345678",
		},
		{
			name:    "already international passes through",
			raw:     "+243812345678",
			country: gateway.CountryDRC,
			want:    "+243812345678",
		},
		{
			name:    "no leading zero gets prefix prepended",
			raw:     "812345678",
			country: gateway.CountryDRC,
			want:    "+243812345678",
		},
		{
			name:    "kenyan local number",
			raw:     "0712 345 678",
			country: gateway.CountryKE,
			want:    "+254712345678",
		},
		{
			name:    "ugandan number with dashes",
			raw:     "0772-123-456",
			country: gateway.CountryUG,
			want:    "+256772123456",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := gateway.NormalizePhone(tt.raw, tt.country)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizePhoneRejectsBadInput(t *testing.T) {
	_, err := gateway.NormalizePhone("", gateway.CountryDRC)
	assert.ErrorIs(t, err, gateway.ErrEmptyPhone)

	_, err = gateway.NormalizePhone("   ", gateway.CountryDRC)
	assert.ErrorIs(t, err, gateway.ErrEmptyPhone)

	_, err = gateway.NormalizePhone("081234abcd", gateway.CountryDRC)
	assert.Error(t, err)
}

func TestNormalizeAmount(t *testing.T) {
	tests := []struct {
		in   float64
		want int64
	}{
		{15000, 15000},
		{150.6, 151},
		{99.4, 100},
		{100, 100},
		{5, 100},
		{0, 100},
		{-20, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, gateway.NormalizeAmount(tt.in), "amount %v", tt.in)
	}
}
