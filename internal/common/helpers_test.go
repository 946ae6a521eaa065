package common

import "testing"

func TestPluralizeComments(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "комментариев"},
		{1, "комментарий"},
		{2, "комментария"},
		{4, "комментария"},
		{5, "комментариев"},
		{11, "комментариев"},
		{12, "комментариев"},
		{14, "комментариев"},
		{21, "комментарий"},
		{22, "комментария"},
		{100, "комментариев"},
		{101, "комментарий"},
		{111, "комментариев"},
		{-3, "комментария"},
	}
	for _, tt := range tests {
		if got := PluralizeComments(tt.n); got != tt.want {
			t.Errorf("PluralizeComments(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestPluralizeRubles(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{1, "рубль"},
		{2, "рубля"},
		{5, "рублей"},
		{11, "рублей"},
		{21, "рубль"},
		{150, "рублей"},
	}
	for _, tt := range tests {
		if got := PluralizeRubles(tt.n); got != tt.want {
			t.Errorf("PluralizeRubles(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestFormatMoneyDelta(t *testing.T) {
	if got := FormatMoneyDelta(100); got != "+100 рублей" {
		t.Errorf("FormatMoneyDelta(100) = %q", got)
	}
	if got := FormatMoneyDelta(-50); got != "-50 рублей" {
		t.Errorf("FormatMoneyDelta(-50) = %q", got)
	}
	if got := FormatMoneyDelta(1); got != "+1 рубль" {
		t.Errorf("FormatMoneyDelta(1) = %q", got)
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1 000"},
		{2350, "2 350"},
		{1234567, "1 234 567"},
		{-2350, "-2 350"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.n); got != tt.want {
			t.Errorf("FormatNumber(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
