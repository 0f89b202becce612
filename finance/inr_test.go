package finance

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatINR(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "₹0"},
		{500, "₹500"},
		{1000, "₹1,000"},
		{100000, "₹1,00,000"},
		{1234567, "₹12,34,567"},
		{12345678, "₹1,23,45,678"},
		{2124.7, "₹2,125"},
		{-14400, "-₹14,400"},
	}
	for _, c := range cases {
		require.Equal(t, c.want, FormatINR(c.in), "amount %v", c.in)
	}
}
