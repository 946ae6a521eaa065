package withdraw

import "testing"

func TestNormalizeCard(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		want  string
		valid bool
	}{
		{"слитно", "1234567890123456", "1234567890123456", true},
		{"с пробелами", "1234 5678 9012 3456", "1234567890123456", true},
		{"с дефисами", "1234-5678-9012-3456", "1234567890123456", true},
		{"15 цифр", "123456789012345", "123456789012345", false},
		{"17 цифр", "12345678901234567", "12345678901234567", false},
		{"буквы вперемешку", "1234abcd5678", "12345678", false},
		{"пусто", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, valid := NormalizeCard(tt.in)
			if got != tt.want || valid != tt.valid {
				t.Errorf("NormalizeCard(%q) = (%q, %v), want (%q, %v)", tt.in, got, valid, tt.want, tt.valid)
			}
		})
	}
}

func TestValidPhone(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"+7 900 123-45-67", true},
		{"89001234567", true},
		{"900", true},
		{"нет цифр", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := ValidPhone(tt.in); got != tt.want {
			t.Errorf("ValidPhone(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
