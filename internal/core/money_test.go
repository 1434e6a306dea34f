package core

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"1.23", "1.23", true},
		{"1,23", "1.23", true},
		{"0.01", "0.01", true},
		{"1.005", "1.01", true}, // half-up rounding
		{" 2.50 ", "2.5", true},
		{"500", "500", true},
		{"0", "", false},
		{"-1", "", false},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil {
				t.Fatalf("%q expected ok, got %v", tc.in, err)
			}
			want, _ := decimal.NewFromString(tc.out)
			if !got.Equal(want) {
				t.Fatalf("%q expected %s, got %s", tc.in, tc.out, got)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("%q expected ErrInvalidAmount, got %v", tc.in, err)
		}
	}
}

func TestValidateAmount(t *testing.T) {
	if err := ValidateAmount(decimal.NewFromInt(1)); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	for _, d := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-10)} {
		if err := ValidateAmount(d); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("%s expected ErrInvalidAmount, got %v", d, err)
		}
	}
}
