package locale

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{name: "european thousands and decimal comma", in: "1.234,56", want: "1234.56"},
		{name: "us thousands and decimal point", in: "1,234.56", want: "1234.56"},
		{name: "plain integer text", in: "1200", want: "1200"},
		{name: "decimal comma only", in: "12,5", want: "12.5"},
		{name: "negative with currency symbol", in: "-$ 1.500,00", want: "-1500"},
		{name: "spaces inside digits", in: "1 234 567,89", want: "1234567.89"},
		{name: "non breaking space", in: "2\u00a0000", want: "2000"},
		{name: "float cell", in: 1500.25, want: "1500.25"},
		{name: "int cell", in: 42, want: "42"},
		{name: "decimal passthrough", in: decimal.RequireFromString("9.99"), want: "9.99"},
		{name: "long european", in: "1.234.567,89", want: "1234567.89"},
		{name: "long us", in: "1,234,567.89", want: "1234567.89"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if err != nil {
				t.Fatalf("ParseAmount(%v) error: %v", tt.in, err)
			}
			want := decimal.RequireFromString(tt.want)
			if !got.Equal(want) {
				t.Errorf("ParseAmount(%v) = %s, want %s", tt.in, got, want)
			}
		})
	}
}

func TestParseAmountFailures(t *testing.T) {
	tests := []struct {
		name      string
		in        any
		wantEmpty bool
	}{
		{name: "empty string", in: "", wantEmpty: true},
		{name: "whitespace", in: "   ", wantEmpty: true},
		{name: "nil", in: nil, wantEmpty: true},
		{name: "letters only", in: "n/a"},
		{name: "lone minus", in: "-"},
		{name: "several commas", in: "1,234,567"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAmount(tt.in)
			if err == nil {
				t.Fatalf("ParseAmount(%v) expected error", tt.in)
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("error %v is not a *ParseError", err)
			}
			if got := errors.Is(err, ErrEmpty); got != tt.wantEmpty {
				t.Errorf("errors.Is(err, ErrEmpty) = %v, want %v", got, tt.wantEmpty)
			}
		})
	}
}
