package moneypkg

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		want    decimal.Decimal
		wantErr error
	}{
		{name: "Integer", input: "5000", want: decimal.NewFromInt(5000)},
		{name: "TwoDecimals", input: "12.34", want: decimal.New(1234, -2)},
		{name: "TrailingZeros", input: "1.500", want: decimal.New(15, -1)},
		{name: "Spaces", input: "  7.5 ", want: decimal.New(75, -1)},
		{name: "Negative", input: "-3", want: decimal.NewFromInt(-3)},
		{name: "Empty", input: "", wantErr: ErrMalformedAmount},
		{name: "Garbage", input: "!@#$", wantErr: ErrMalformedAmount},
		{name: "TooPrecise", input: "0.001", wantErr: ErrMalformedAmount},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := Parse(tc.input)
			if err != tc.wantErr {
				t.Fatalf("Parse(%q) returned error %v, want %v", tc.input, err, tc.wantErr)
			}

			if !got.Equal(tc.want) {
				t.Errorf("Parse(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

func TestIsPositive(t *testing.T) {
	testCases := []struct {
		amount decimal.Decimal
		want   bool
	}{
		{amount: decimal.NewFromInt(1), want: true},
		{amount: decimal.New(1, -2), want: true},
		{amount: decimal.New(1, -3), want: false},
		{amount: decimal.Zero, want: false},
		{amount: decimal.NewFromInt(-10), want: false},
	}

	for _, tc := range testCases {
		if got := IsPositive(tc.amount); got != tc.want {
			t.Errorf("IsPositive(%v) = %v, want %v", tc.amount, got, tc.want)
		}
	}
}

func TestFormat(t *testing.T) {
	if got := Format(MustParse("3000")); got != "3000.00" {
		t.Errorf(`Format(3000) = %q, want "3000.00"`, got)
	}

	if got := Format(MustParse("0.5")); got != "0.50" {
		t.Errorf(`Format(0.5) = %q, want "0.50"`, got)
	}
}
